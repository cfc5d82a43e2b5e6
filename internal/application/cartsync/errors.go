// internal/application/cartsync/errors.go
package cartsync

import "fmt"

// SubscriptionError marks a streaming subscription failure (setup or
// ongoing). It is a persistent state on the owning mirror until the next
// successful emission clears it.
type SubscriptionError struct {
	Scope string // "catalog" or "cart:<ownerId>"
	Err   error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("cartsync: subscription %s failed: %v", e.Scope, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// FetchError marks a single product point-read failure. It degrades that
// one product id (tombstone) and never propagates to sibling ids or to
// the running total.
type FetchError struct {
	ProductID string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cartsync: fetch product %s failed: %v", e.ProductID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
