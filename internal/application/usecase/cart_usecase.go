// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	cartdom "costtracker/internal/domain/cart"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CartUsecase is the mutation gateway: every operation is a single logical
// document write against the store. Operations report success/failure
// independently to their caller; nothing retries and nothing mutates the
// in-memory mirrors — the owner's cart subscription reconciles readers
// after the store applies the write.
type CartUsecase struct {
	repo  cartdom.Repository
	clock Clock
}

func NewCartUsecase(repo cartdom.Repository) *CartUsecase {
	return &CartUsecase{repo: repo, clock: systemClock{}}
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, clock Clock) *CartUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CartUsecase{repo: repo, clock: clock}
}

// AddToCart is create-or-increment with the deterministic entry id
// (one entry per product per user, id = productId):
//
//  1. try a conditional Create of {productId, quantity: 1, addedAt: now};
//  2. on ErrEntryExists, atomically increment quantity by 1 and refresh
//     addedAt using the store's increment primitive.
//
// The conditional create (instead of read-then-decide) is what makes two
// rapid calls land as one entry with quantity 2: the loser of the create
// race falls through to the increment path, and increments themselves are
// applied server-side, never from a client-cached value.
func (uc *CartUsecase) AddToCart(ctx context.Context, userID, productID string) error {
	uid := strings.TrimSpace(userID)
	pid := strings.TrimSpace(productID)
	if uid == "" || pid == "" {
		return ErrCartInvalidArgument
	}

	now := uc.clock.Now()

	e, err := cartdom.NewEntry(uid, pid, now)
	if err != nil {
		return err
	}

	err = uc.repo.Create(ctx, e)
	if err == nil {
		return nil
	}
	if !errors.Is(err, cartdom.ErrEntryExists) {
		return err
	}

	return uc.repo.IncrementQuantity(ctx, uid, e.ID, 1, now)
}

// SetQuantity overwrites the stored quantity.
// quantity < 1 is rejected here, before any write happens.
func (uc *CartUsecase) SetQuantity(ctx context.Context, userID, entryID string, quantity int) error {
	uid := strings.TrimSpace(userID)
	eid := strings.TrimSpace(entryID)
	if uid == "" || eid == "" {
		return ErrCartInvalidArgument
	}
	if quantity < 1 {
		return cartdom.ErrInvalidQuantity
	}

	return uc.repo.SetQuantity(ctx, uid, eid, quantity)
}

// Remove deletes the entry. Removing an id that is already gone is not an
// error from the caller's perspective.
func (uc *CartUsecase) Remove(ctx context.Context, userID, entryID string) error {
	uid := strings.TrimSpace(userID)
	eid := strings.TrimSpace(entryID)
	if uid == "" || eid == "" {
		return ErrCartInvalidArgument
	}

	return uc.repo.Delete(ctx, uid, eid)
}
