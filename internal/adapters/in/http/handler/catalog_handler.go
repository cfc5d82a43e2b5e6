// internal/adapters/in/http/handler/catalog_handler.go
package handler

import (
	"net/http"

	"costtracker/internal/application/query"
)

// CatalogHandler serves the catalog listing from the in-memory mirror.
type CatalogHandler struct {
	Query *query.CatalogQuery
}

func NewCatalogHandler(q *query.CatalogQuery) *CatalogHandler {
	return &CatalogHandler{Query: q}
}

// List handles GET /api/products.
// The mirror's display state rides along, so a client can tell
// loading / error / empty / populated apart; with an error state the last
// good snapshot is still in the payload.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Query == nil {
		writeErr(w, http.StatusServiceUnavailable, "catalog handler is not configured")
		return
	}

	writeJSON(w, http.StatusOK, h.Query.List(r.Context()))
}
