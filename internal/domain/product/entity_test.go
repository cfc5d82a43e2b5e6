// internal/domain/product/entity_test.go
package product_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	productdom "costtracker/internal/domain/product"
)

func TestProductValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       productdom.Product
		wantErr bool
	}{
		{"valid", productdom.Product{ID: "p1", Name: "n", UnitCost: decimal.RequireFromString("1.50")}, false},
		{"free product is valid", productdom.Product{ID: "p1", UnitCost: decimal.Zero}, false},
		{"blank id", productdom.Product{ID: "  ", UnitCost: decimal.Zero}, true},
		{"negative cost", productdom.Product{ID: "p1", UnitCost: decimal.RequireFromString("-0.01")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, productdom.ErrInvalidProduct)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductSubtotal(t *testing.T) {
	p := productdom.Product{ID: "p1", UnitCost: decimal.RequireFromString("2.50")}

	assert.True(t, p.Subtotal(4).Equal(decimal.RequireFromString("10")))
	assert.True(t, p.Subtotal(1).Equal(decimal.RequireFromString("2.50")))
	assert.True(t, p.Subtotal(0).IsZero())
	assert.True(t, p.Subtotal(-2).IsZero())
}
