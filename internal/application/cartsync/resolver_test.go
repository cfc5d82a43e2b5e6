// internal/application/cartsync/resolver_test.go
package cartsync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	cartdom "costtracker/internal/domain/cart"
	productdom "costtracker/internal/domain/product"
)

func TestResolverMissing(t *testing.T) {
	r := newResolver()
	entries := []cartdom.Entry{
		cartEntry("p1", 1),
		cartEntry("p2", 1),
		cartEntry("p2", 2), // duplicate reference, one fetch
	}
	snap := productdom.Snapshot{"p1": fakeProduct("p1", "1.00")}

	got := r.missing(entries, snap)
	assert.Equal(t, []string{"p2"}, got)
	assert.Equal(t, 1, r.pendingFetches())

	// marked in-flight: a second pass does not re-request
	assert.Empty(t, r.missing(entries, snap))
}

func TestResolverTombstoneNotRefetched(t *testing.T) {
	r := newResolver()
	entries := []cartdom.Entry{cartEntry("gone", 1)}

	assert.Equal(t, []string{"gone"}, r.missing(entries, nil))
	r.apply("gone", nil) // fetch came back not-found

	assert.Zero(t, r.pendingFetches())
	assert.Empty(t, r.missing(entries, nil), "tombstoned id must not be fetched again")

	m := r.merged(entries, nil)
	p, ok := m["gone"]
	assert.True(t, ok)
	assert.Nil(t, p, "tombstone resolves to nil, i.e. unavailable")
}

func TestResolverCatalogSupersedesTombstone(t *testing.T) {
	r := newResolver()
	entries := []cartdom.Entry{cartEntry("p1", 1)}
	r.apply("p1", nil)

	snap := productdom.Snapshot{"p1": fakeProduct("p1", "5.00")}
	m := r.merged(entries, snap)

	if assert.NotNil(t, m["p1"]) {
		assert.Equal(t, "p1", m["p1"].ID)
	}
}

func TestResolverPrune(t *testing.T) {
	r := newResolver()
	p := fakeProduct("p1", "1.00")
	r.apply("p1", &p)
	r.apply("p2", nil)

	// p2 no longer referenced; its tombstone goes away
	r.prune([]cartdom.Entry{cartEntry("p1", 1)})

	assert.Empty(t, r.missing([]cartdom.Entry{cartEntry("p1", 1)}, nil))
	assert.Equal(t, []string{"p2"}, r.missing([]cartdom.Entry{cartEntry("p1", 1), cartEntry("p2", 1)}, nil),
		"pruned id must be fetched again on re-add")
}

func TestResolverInvalidateAll(t *testing.T) {
	r := newResolver()
	p := fakeProduct("p1", "1.00")
	r.apply("p1", &p)
	r.missing([]cartdom.Entry{cartEntry("p2", 1)}, nil)

	r.invalidateAll()

	assert.Zero(t, r.pendingFetches())
	assert.Empty(t, r.merged([]cartdom.Entry{cartEntry("p1", 1)}, nil))
}
