// internal/application/query/catalog_query.go
package query

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"costtracker/internal/application/cartsync"
)

// ImageURLResolver turns a stored image object name into a fetchable URL.
// Best-effort dependency: when absent (or failing), products are served
// without an image URL.
type ImageURLResolver interface {
	ResolveURL(ctx context.Context, objectName string) (string, error)
}

// ProductDTO is one catalog row as served to clients.
type ProductDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// CatalogDTO is the catalog listing plus the mirror's display state.
// State and Error come straight from the mirror: loading / error / empty /
// populated, with the last good snapshot still served alongside an error.
type CatalogDTO struct {
	State    string       `json:"state"`
	Products []ProductDTO `json:"products"`
	Error    string       `json:"error,omitempty"`
}

// CatalogQuery serves catalog reads from the in-memory mirror. It never
// hits the store directly; the mirror's subscription is the data path.
type CatalogQuery struct {
	Mirror *cartsync.CatalogMirror
	Images ImageURLResolver
}

func NewCatalogQuery(mirror *cartsync.CatalogMirror, images ImageURLResolver) (*CatalogQuery, error) {
	if mirror == nil {
		return nil, errors.New("catalog_query: mirror is nil")
	}
	return &CatalogQuery{Mirror: mirror, Images: images}, nil
}

// List returns the current catalog snapshot, name-sorted for stable output,
// with best-effort image URL resolution.
func (q *CatalogQuery) List(ctx context.Context) CatalogDTO {
	if q == nil || q.Mirror == nil {
		return CatalogDTO{State: string(cartsync.StateError), Error: "catalog query is not configured"}
	}

	snap := q.Mirror.Snapshot()

	out := CatalogDTO{
		State:    string(q.Mirror.State()),
		Products: make([]ProductDTO, 0, len(snap)),
	}
	if err := q.Mirror.Err(); err != nil {
		out.Error = err.Error()
	}

	for _, p := range snap {
		dto := ProductDTO{
			ID:          p.ID,
			Name:        p.Name,
			UnitCost:    p.UnitCost,
			Description: p.Description,
		}

		if ref := strings.TrimSpace(p.ImageRef); ref != "" && q.Images != nil {
			u, err := q.Images.ResolveURL(ctx, ref)
			if err != nil {
				// best-effort: serve the product without an image
				log.Printf("[catalog_query] image url resolve failed productId=%q ref=%q: %v", p.ID, ref, err)
			} else {
				dto.ImageURL = u
			}
		}

		out.Products = append(out.Products, dto)
	}

	sort.Slice(out.Products, func(i, j int) bool {
		if out.Products[i].Name != out.Products[j].Name {
			return out.Products[i].Name < out.Products[j].Name
		}
		return out.Products[i].ID < out.Products[j].ID
	})

	return out
}
