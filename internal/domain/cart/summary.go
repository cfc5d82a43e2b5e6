// internal/domain/cart/summary.go
package cart

import (
	"github.com/shopspring/decimal"

	"costtracker/internal/domain/product"
)

// Line is one resolved cart line: the entry plus its product.
type Line struct {
	Entry    Entry           `json:"entry"`
	Product  product.Product `json:"product"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Summary is the derived view of a cart against a set of resolved products.
//   - Total: sum of unitCost × quantity over resolvable lines only
//   - Lines: resolvable entries, in the same order as the input entries
//   - Unavailable: entries whose product could not be resolved (deleted
//     product or failed fetch). They contribute nothing to Total but are
//     kept so the caller can still render "item unavailable".
type Summary struct {
	Total       decimal.Decimal `json:"total"`
	Lines       []Line          `json:"lines"`
	Unavailable []Entry         `json:"unavailable,omitempty"`
}

// Summarize recomputes the summary from scratch.
//
// Pure function: no clock, no store, no hidden state. Resolution is whatever
// the caller passed in `products` (nil value = tombstoned/unresolved id, a
// missing key counts the same). Order of `entries` determines line order;
// full recompute per call is deliberate — carts are small and determinism
// beats delta bookkeeping here.
func Summarize(entries []Entry, products map[string]*product.Product) Summary {
	out := Summary{
		Total: decimal.Zero,
		Lines: make([]Line, 0, len(entries)),
	}

	for _, e := range entries {
		p, ok := products[e.ProductID]
		if !ok || p == nil {
			out.Unavailable = append(out.Unavailable, e)
			continue
		}

		sub := p.Subtotal(e.Quantity)
		out.Lines = append(out.Lines, Line{
			Entry:    e,
			Product:  *p,
			Subtotal: sub,
		})
		out.Total = out.Total.Add(sub)
	}

	return out
}
