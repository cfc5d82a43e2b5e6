// internal/application/usecase/cart_usecase_test.go
package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costtracker/internal/application/usecase"
	cartdom "costtracker/internal/domain/cart"
)

// fakeCartRepo is an in-memory cart store keyed ownerID/entryID. It mimics
// the store's write primitives: conditional create and server-side increment.
type fakeCartRepo struct {
	mu      sync.Mutex
	entries map[string]cartdom.Entry // key: ownerID + "/" + entryID
	writes  int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{entries: make(map[string]cartdom.Entry)}
}

func (r *fakeCartRepo) key(ownerID, entryID string) string { return ownerID + "/" + entryID }

func (r *fakeCartRepo) Create(_ context.Context, e cartdom.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(e.OwnerID, e.ID)
	if _, ok := r.entries[k]; ok {
		return cartdom.ErrEntryExists
	}
	r.entries[k] = e
	r.writes++
	return nil
}

func (r *fakeCartRepo) IncrementQuantity(_ context.Context, ownerID, entryID string, delta int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(ownerID, entryID)
	e, ok := r.entries[k]
	if !ok {
		// the real store would create the field on a missing doc; for these
		// tests a missing doc on the increment path is a bug
		return cartdom.ErrInvalidEntry
	}
	e.Quantity += delta
	e.AddedAt = now
	r.entries[k] = e
	r.writes++
	return nil
}

func (r *fakeCartRepo) SetQuantity(_ context.Context, ownerID, entryID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(ownerID, entryID)
	e, ok := r.entries[k]
	if !ok {
		return cartdom.ErrInvalidEntry
	}
	e.Quantity = quantity
	r.entries[k] = e
	r.writes++
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, ownerID, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, r.key(ownerID, entryID))
	r.writes++
	return nil
}

func (r *fakeCartRepo) get(t *testing.T, ownerID, entryID string) cartdom.Entry {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[r.key(ownerID, entryID)]
	require.Truef(t, ok, "entry %s/%s not found", ownerID, entryID)
	return e
}

func (r *fakeCartRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *fakeCartRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestAddToCartCreatesFirstEntry(t *testing.T) {
	repo := newFakeCartRepo()
	clock := &fixedClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	uc := usecase.NewCartUsecaseWithClock(repo, clock)

	require.NoError(t, uc.AddToCart(context.Background(), "u1", "p1"))

	e := repo.get(t, "u1", "p1")
	assert.Equal(t, 1, e.Quantity)
	assert.Equal(t, "p1", e.ProductID)
	assert.Equal(t, clock.Now(), e.AddedAt)
}

func TestAddToCartTwiceIncrementsSameEntry(t *testing.T) {
	repo := newFakeCartRepo()
	clock := &fixedClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	uc := usecase.NewCartUsecaseWithClock(repo, clock)

	require.NoError(t, uc.AddToCart(context.Background(), "u1", "p1"))
	clock.advance(time.Minute)
	require.NoError(t, uc.AddToCart(context.Background(), "u1", "p1"))

	require.Equal(t, 1, repo.count(), "same product must land in one entry")
	e := repo.get(t, "u1", "p1")
	assert.Equal(t, 2, e.Quantity)
	assert.Equal(t, clock.Now(), e.AddedAt, "second add refreshes addedAt")
}

func TestAddToCartSeparatesOwners(t *testing.T) {
	repo := newFakeCartRepo()
	uc := usecase.NewCartUsecase(repo)

	require.NoError(t, uc.AddToCart(context.Background(), "u1", "p1"))
	require.NoError(t, uc.AddToCart(context.Background(), "u2", "p1"))

	assert.Equal(t, 2, repo.count())
	assert.Equal(t, 1, repo.get(t, "u1", "p1").Quantity)
	assert.Equal(t, 1, repo.get(t, "u2", "p1").Quantity)
}

func TestAddToCartRejectsBlankArguments(t *testing.T) {
	repo := newFakeCartRepo()
	uc := usecase.NewCartUsecase(repo)

	assert.ErrorIs(t, uc.AddToCart(context.Background(), "", "p1"), usecase.ErrCartInvalidArgument)
	assert.ErrorIs(t, uc.AddToCart(context.Background(), "u1", "  "), usecase.ErrCartInvalidArgument)
	assert.Equal(t, 0, repo.writeCount(), "rejected calls must not write")
}

func TestSetQuantity(t *testing.T) {
	repo := newFakeCartRepo()
	uc := usecase.NewCartUsecase(repo)
	require.NoError(t, uc.AddToCart(context.Background(), "u1", "p1"))

	require.NoError(t, uc.SetQuantity(context.Background(), "u1", "p1", 7))
	assert.Equal(t, 7, repo.get(t, "u1", "p1").Quantity)
}

func TestSetQuantityRejectsLessThanOne(t *testing.T) {
	repo := newFakeCartRepo()
	uc := usecase.NewCartUsecase(repo)
	require.NoError(t, uc.AddToCart(context.Background(), "u1", "p1"))
	writesBefore := repo.writeCount()

	assert.ErrorIs(t, uc.SetQuantity(context.Background(), "u1", "p1", 0), cartdom.ErrInvalidQuantity)
	assert.ErrorIs(t, uc.SetQuantity(context.Background(), "u1", "p1", -4), cartdom.ErrInvalidQuantity)

	assert.Equal(t, writesBefore, repo.writeCount(), "invalid quantity must be rejected before the write")
	assert.Equal(t, 1, repo.get(t, "u1", "p1").Quantity)
}

func TestRemove(t *testing.T) {
	repo := newFakeCartRepo()
	uc := usecase.NewCartUsecase(repo)
	require.NoError(t, uc.AddToCart(context.Background(), "u1", "p1"))

	require.NoError(t, uc.Remove(context.Background(), "u1", "p1"))
	assert.Equal(t, 0, repo.count())

	// removing an id that is already gone is not an error
	assert.NoError(t, uc.Remove(context.Background(), "u1", "p1"))
}

func TestRemoveRejectsBlankArguments(t *testing.T) {
	repo := newFakeCartRepo()
	uc := usecase.NewCartUsecase(repo)

	assert.ErrorIs(t, uc.Remove(context.Background(), "", "p1"), usecase.ErrCartInvalidArgument)
	assert.ErrorIs(t, uc.Remove(context.Background(), "u1", ""), usecase.ErrCartInvalidArgument)
}
