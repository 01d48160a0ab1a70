package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidding/internal/pricing"
	"bidding/models"
)

func TestCalculate(t *testing.T) {
	t.Run("Default rate", func(t *testing.T) {
		b, err := pricing.Calculate(decimal.NewFromInt(1000), 10)
		require.NoError(t, err)

		assert.True(t, b.SupplyPrice.Equal(decimal.NewFromInt(10000)), b.SupplyPrice.String())
		assert.True(t, b.Tax.Equal(decimal.NewFromInt(1000)), b.Tax.String())
		assert.True(t, b.Total.Equal(decimal.NewFromInt(11000)), b.Total.String())
	})

	t.Run("Idempotent", func(t *testing.T) {
		first, err := pricing.Calculate(decimal.RequireFromString("1234.56"), 7)
		require.NoError(t, err)
		second, err := pricing.Calculate(decimal.RequireFromString("1234.56"), 7)
		require.NoError(t, err)

		assert.True(t, first.SupplyPrice.Equal(second.SupplyPrice))
		assert.True(t, first.Tax.Equal(second.Tax))
		assert.True(t, first.Total.Equal(second.Total))
	})

	t.Run("Half-up rounding", func(t *testing.T) {
		// 12.5 * 3 = 37.5 -> 38; 38 * 0.1 = 3.8 -> 4
		b, err := pricing.Calculate(decimal.RequireFromString("12.5"), 3)
		require.NoError(t, err)
		assert.Equal(t, "38", b.SupplyPrice.String())
		assert.Equal(t, "4", b.Tax.String())
		assert.Equal(t, "42", b.Total.String())

		// 25 * 0.1 = 2.5 -> 3
		b, err = pricing.Calculate(decimal.NewFromInt(25), 1)
		require.NoError(t, err)
		assert.Equal(t, "3", b.Tax.String())
	})

	t.Run("Trailing zeros", func(t *testing.T) {
		b, err := pricing.Calculate(decimal.RequireFromString("0.500"), 4)
		require.NoError(t, err)
		assert.Equal(t, "2", b.SupplyPrice.String())
	})

	t.Run("Custom rate", func(t *testing.T) {
		b, err := pricing.CalculateWithRate(decimal.NewFromInt(100), 3, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "300", b.Total.String())
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := pricing.Calculate(decimal.NewFromInt(-1), 1)
		assert.ErrorIs(t, err, pricing.ErrNegativeUnitPrice)

		_, err = pricing.Calculate(decimal.NewFromInt(1), 0)
		assert.ErrorIs(t, err, pricing.ErrInvalidQuantity)

		// 0.004 не помещается в NUMERIC(18, 2)
		_, err = pricing.Calculate(decimal.RequireFromString("0.004"), 1000)
		assert.ErrorIs(t, err, pricing.ErrUnitPricePlaces)

		_, err = pricing.CalculateWithRate(decimal.NewFromInt(1), 1, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, pricing.ErrNegativeTaxRate)
	})
}

func TestReprice(t *testing.T) {
	var p models.Price
	require.NoError(t, pricing.Reprice(&p, decimal.NewFromInt(500), 4))

	assert.Equal(t, "500", p.UnitPrice.String())
	assert.Equal(t, "2000", p.SupplyPrice.String())
	assert.Equal(t, "200", p.Tax.String())
	assert.Equal(t, "2200", p.TotalPrice.String())
}
