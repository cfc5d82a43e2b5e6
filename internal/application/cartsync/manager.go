// internal/application/cartsync/manager.go
package cartsync

import (
	"errors"

	cartdom "costtracker/internal/domain/cart"
	productdom "costtracker/internal/domain/product"
)

// Manager hands out sessions that share the process-wide catalog mirror.
// One session per connected consumer (e.g. one per cart stream connection).
type Manager struct {
	catalog  *CatalogMirror
	carts    cartdom.Watcher
	products productdom.Repository
}

func NewManager(catalog *CatalogMirror, carts cartdom.Watcher, products productdom.Repository) (*Manager, error) {
	if catalog == nil || carts == nil || products == nil {
		return nil, errors.New("cartsync: manager dependencies are nil")
	}
	return &Manager{catalog: catalog, carts: carts, products: products}, nil
}

// Catalog exposes the shared mirror (read-only consumers).
func (m *Manager) Catalog() *CatalogMirror { return m.catalog }

// OpenSession starts a signed-out session; callers SetUser it and must
// Close it when done.
func (m *Manager) OpenSession() (*Session, error) {
	return NewSession(m.catalog, m.carts, m.products)
}
