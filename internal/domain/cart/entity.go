// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidEntry = errors.New("cart: invalid entry")

	// ErrInvalidQuantity is the validation failure for quantity < 1.
	// It must be returned before any store write happens; an entry with
	// quantity < 1 is never persisted.
	ErrInvalidQuantity = errors.New("cart: quantity must be >= 1")

	// ErrEntryExists is returned by the write port when a conditional
	// create hits an already existing entry.
	ErrEntryExists = errors.New("cart: entry already exists")
)

// Entry represents one line of a user's cart.
//   - docId = entry id (Firestore users/{ownerId}/cartItems/{id})
//   - The entry id is deterministic: one entry per product per user,
//     id = productId. Adding the same product again increments quantity
//     instead of creating a second doc.
//   - ProductID may dangle: the referenced product can be deleted while the
//     entry survives. Consumers must resolve it and handle absence.
type Entry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// NewEntry builds the initial entry for a first add-to-cart.
func NewEntry(ownerID, productID string, now time.Time) (Entry, error) {
	oid := strings.TrimSpace(ownerID)
	pid := strings.TrimSpace(productID)
	if oid == "" || pid == "" {
		return Entry{}, ErrInvalidEntry
	}

	e := Entry{
		ID:        EntryID(pid),
		OwnerID:   oid,
		ProductID: pid,
		Quantity:  1,
		AddedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// EntryID derives the deterministic cart doc id for a product.
// Keeping it a named function (instead of using productID inline everywhere)
// so the one-entry-per-product rule has a single home.
func EntryID(productID string) string {
	return strings.TrimSpace(productID)
}

// Validate checks entry invariants (quantity >= 1, ids present).
func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.OwnerID) == "" || strings.TrimSpace(e.ProductID) == "" {
		return ErrInvalidEntry
	}
	if e.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}
