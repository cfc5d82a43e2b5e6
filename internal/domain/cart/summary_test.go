// internal/domain/cart/summary_test.go
package cart_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "costtracker/internal/domain/cart"
	productdom "costtracker/internal/domain/product"
)

func product(id string, cost string) *productdom.Product {
	c, _ := decimal.NewFromString(cost)
	return &productdom.Product{ID: id, Name: "product " + id, UnitCost: c}
}

func entry(id, productID string, qty int) cartdom.Entry {
	return cartdom.Entry{
		ID:        id,
		OwnerID:   "u1",
		ProductID: productID,
		Quantity:  qty,
		AddedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name            string
		entries         []cartdom.Entry
		products        map[string]*productdom.Product
		wantTotal       string
		wantLineIDs     []string
		wantUnavailable []string
	}{
		{
			name:      "empty cart",
			entries:   nil,
			products:  nil,
			wantTotal: "0",
		},
		{
			name: "all entries resolve",
			entries: []cartdom.Entry{
				entry("p1", "p1", 2),
				entry("p2", "p2", 1),
			},
			products: map[string]*productdom.Product{
				"p1": product("p1", "10.00"),
				"p2": product("p2", "2.50"),
			},
			wantTotal:   "22.5",
			wantLineIDs: []string{"p1", "p2"},
		},
		{
			name: "dangling reference contributes nothing",
			entries: []cartdom.Entry{
				entry("p1", "p1", 2),
				entry("p2", "p2", 1),
				entry("p3", "p3", 5), // product deleted
			},
			products: map[string]*productdom.Product{
				"p1": product("p1", "10.00"),
				"p2": product("p2", "2.50"),
				"p3": nil, // tombstone
			},
			wantTotal:       "22.5",
			wantLineIDs:     []string{"p1", "p2"},
			wantUnavailable: []string{"p3"},
		},
		{
			name: "missing key counts the same as tombstone",
			entries: []cartdom.Entry{
				entry("p9", "p9", 3),
			},
			products:        map[string]*productdom.Product{},
			wantTotal:       "0",
			wantUnavailable: []string{"p9"},
		},
		{
			name: "line order follows entry order",
			entries: []cartdom.Entry{
				entry("pb", "pb", 1),
				entry("pa", "pa", 1),
			},
			products: map[string]*productdom.Product{
				"pa": product("pa", "1.00"),
				"pb": product("pb", "2.00"),
			},
			wantTotal:   "3",
			wantLineIDs: []string{"pb", "pa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cartdom.Summarize(tt.entries, tt.products)

			wantTotal, err := decimal.NewFromString(tt.wantTotal)
			require.NoError(t, err)
			assert.Truef(t, got.Total.Equal(wantTotal), "total = %s, want %s", got.Total, wantTotal)

			gotLineIDs := make([]string, 0, len(got.Lines))
			for _, l := range got.Lines {
				gotLineIDs = append(gotLineIDs, l.Entry.ID)
			}
			if diff := cmp.Diff(tt.wantLineIDs, gotLineIDs, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("line ids mismatch (-want +got):\n%s", diff)
			}

			gotUnavailable := make([]string, 0, len(got.Unavailable))
			for _, e := range got.Unavailable {
				gotUnavailable = append(gotUnavailable, e.ID)
			}
			if diff := cmp.Diff(tt.wantUnavailable, gotUnavailable, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("unavailable ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSummarizeSubtotals(t *testing.T) {
	got := cartdom.Summarize(
		[]cartdom.Entry{entry("p1", "p1", 4)},
		map[string]*productdom.Product{"p1": product("p1", "2.50")},
	)

	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].Subtotal.Equal(decimal.RequireFromString("10")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("10")))
}

// float-free arithmetic: 0.1 + 0.2 style inputs must stay exact
func TestSummarizeDecimalExactness(t *testing.T) {
	got := cartdom.Summarize(
		[]cartdom.Entry{
			entry("a", "a", 1),
			entry("b", "b", 1),
		},
		map[string]*productdom.Product{
			"a": product("a", "0.1"),
			"b": product("b", "0.2"),
		},
	)

	assert.True(t, got.Total.Equal(decimal.RequireFromString("0.3")), "total = %s", got.Total)
}
