// internal/application/cartsync/catalog_mirror.go
package cartsync

import (
	"context"
	"errors"
	"log"
	"sync"

	productdom "costtracker/internal/domain/product"
)

// CatalogMirror keeps an in-memory replica of the products collection,
// fed by one live subscription for the mirror's whole lifetime.
//
//   - Each emission replaces the snapshot atomically; readers only ever see
//     whole snapshots (no partial updates leak upward).
//   - On subscription error the last good snapshot is retained, the error is
//     logged once per failure, and Err() reports it until the next good
//     emission clears it.
//   - Multiple consumers may read concurrently; the subscription callback is
//     the only writer.
type CatalogMirror struct {
	watcher productdom.Watcher

	mu       sync.RWMutex
	snapshot productdom.Snapshot
	state    State
	err      error

	subsMu sync.Mutex
	subs   map[int]chan struct{}
	nextID int

	cancel func()
}

func NewCatalogMirror(watcher productdom.Watcher) *CatalogMirror {
	return &CatalogMirror{
		watcher:  watcher,
		snapshot: productdom.Snapshot{},
		state:    StateLoading,
		subs:     map[int]chan struct{}{},
	}
}

// Start opens the catalog subscription. Call once; Close releases it.
func (m *CatalogMirror) Start(ctx context.Context) error {
	if m == nil || m.watcher == nil {
		return errors.New("catalog_mirror: watcher is nil")
	}

	cancel, err := m.watcher.Watch(ctx, m.onSnapshot, m.onError)
	if err != nil {
		return &SubscriptionError{Scope: "catalog", Err: err}
	}
	m.cancel = cancel
	return nil
}

// Close cancels the subscription. Safe to call more than once.
func (m *CatalogMirror) Close() {
	if m == nil || m.cancel == nil {
		return
	}
	m.cancel()
}

// Snapshot returns the current catalog replica. The returned map must not
// be mutated by callers; the mirror never mutates an emitted snapshot
// either, so handing out the reference is safe.
func (m *CatalogMirror) Snapshot() productdom.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// State reports loading / error / empty / populated for the catalog.
func (m *CatalogMirror) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Err returns the pending subscription error, or nil. It auto-clears on
// the next successful emission.
func (m *CatalogMirror) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Subscribe registers a change notification channel (latest-wins, buffered
// by one). The returned func removes the registration.
func (m *CatalogMirror) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	m.subsMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.subsMu.Unlock()

	return ch, func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

func (m *CatalogMirror) onSnapshot(snap productdom.Snapshot) {
	if snap == nil {
		snap = productdom.Snapshot{}
	}

	m.mu.Lock()
	m.snapshot = snap
	m.err = nil
	if len(snap) == 0 {
		m.state = StateEmpty
	} else {
		m.state = StatePopulated
	}
	m.mu.Unlock()

	m.notify()
}

func (m *CatalogMirror) onError(err error) {
	serr := &SubscriptionError{Scope: "catalog", Err: err}

	m.mu.Lock()
	alreadyReported := m.err != nil
	m.err = serr
	m.state = StateError
	m.mu.Unlock()

	// one log line per failure, not per consumer read
	if !alreadyReported {
		log.Printf("[catalog_mirror] subscription error (last good snapshot retained): %v", err)
	}

	m.notify()
}

func (m *CatalogMirror) notify() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
