// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("product: not found")
	ErrInvalidProduct = errors.New("product: invalid")
)

// Product represents one purchasable catalog item.
//   - docId = productId (Firestore "products" collection)
//   - UnitCost is the cost per unit. The store persists it as a number;
//     the adapter converts to decimal so totals never go through float math.
//   - ImageRef is a GCS object name (optional); resolved to a URL at query time.
//
// Products are read-only from this service's point of view: catalog authoring
// happens elsewhere, we only mirror and fetch.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	Description string          `json:"description"`
	ImageRef    string          `json:"imageRef,omitempty"`
}

// Validate checks the invariants a product must satisfy before it is
// allowed into a mirror snapshot.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidProduct
	}
	if p.UnitCost.IsNegative() {
		return ErrInvalidProduct
	}
	return nil
}

// Subtotal returns UnitCost × qty.
func (p Product) Subtotal(qty int) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	return p.UnitCost.Mul(decimal.NewFromInt(int64(qty)))
}
