// internal/domain/cart/repository_port.go
package cart

import (
	"context"
	"time"
)

// Repository is the write port for cart entries.
//
// Storage (Firestore):
// - collection: users/{ownerId}/cartItems
// - docId: entry id (= productId, deterministic)
// - fields: productId, quantity, addedAt
//
// Every method is a single logical document write. Failures are returned
// to the caller as-is (wrapped at the adapter boundary); nothing retries
// here and nothing touches in-memory state — the owner's cart subscription
// is what reconciles readers after a successful write.
type Repository interface {
	// Create writes a brand-new entry. Returns ErrEntryExists when the
	// doc id is already taken (conditional create, not an overwrite).
	Create(ctx context.Context, e Entry) error

	// IncrementQuantity atomically adds delta to the stored quantity using
	// the store's increment primitive (no client-side read-modify-write)
	// and refreshes addedAt.
	IncrementQuantity(ctx context.Context, ownerID, entryID string, delta int, now time.Time) error

	// SetQuantity overwrites the stored quantity. Callers must have
	// validated quantity >= 1 already.
	SetQuantity(ctx context.Context, ownerID, entryID string, quantity int) error

	// Delete removes the entry. Deleting an absent id is not an error.
	Delete(ctx context.Context, ownerID, entryID string) error
}

// Watcher is a streaming port over one user's cartItems subcollection.
//
// Contract:
//   - onSnapshot receives the complete ordered entry list for ownerID,
//     ordered by addedAt (doc id as tiebreak), most recent store state only.
//   - onError receives stream failures; the consumer decides how to surface
//     them (terminal error state vs. retained data).
//   - cancel releases the subscription; required on teardown and on every
//     owner change, safe to call more than once.
type Watcher interface {
	WatchByOwner(ctx context.Context, ownerID string, onSnapshot func([]Entry), onError func(error)) (cancel func(), err error)
}
