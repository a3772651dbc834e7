package accounting

import (
	"testing"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTrade_FirstBuy(t *testing.T) {
	position, err := ApplyTrade(Position{}, domain.Buy, decimal.NewFromInt(10), decimal.NewFromInt(1000))

	require.NoError(t, err)
	assert.True(t, position.Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, position.AvgPrice.Equal(decimal.NewFromInt(1000)))
}

func TestApplyTrade_BuyRaisesWeightedAverage(t *testing.T) {
	position, err := ApplyTrade(Position{}, domain.Buy, decimal.NewFromInt(10), decimal.NewFromInt(1000))
	require.NoError(t, err)

	position, err = ApplyTrade(position, domain.Buy, decimal.NewFromInt(10), decimal.NewFromInt(2000))
	require.NoError(t, err)

	assert.True(t, position.Quantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, position.AvgPrice.Equal(decimal.NewFromInt(1500)), "avg %s", position.AvgPrice)
}

func TestApplyTrade_SellLeavesAverageUntouched(t *testing.T) {
	position := Position{Quantity: decimal.NewFromInt(20), AvgPrice: decimal.NewFromInt(1500)}

	position, err := ApplyTrade(position, domain.Sell, decimal.NewFromInt(5), decimal.NewFromInt(2200))
	require.NoError(t, err)

	assert.True(t, position.Quantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, position.AvgPrice.Equal(decimal.NewFromInt(1500)), "sell price must not move the average")
}

func TestApplyTrade_FractionalAverage(t *testing.T) {
	position := Position{Quantity: decimal.NewFromInt(3), AvgPrice: decimal.NewFromInt(100)}

	position, err := ApplyTrade(position, domain.Buy, decimal.NewFromInt(1), decimal.NewFromInt(150))
	require.NoError(t, err)

	assert.True(t, position.AvgPrice.Equal(decimal.RequireFromString("112.5")), "avg %s", position.AvgPrice)
}

func TestApplyTrade_SellExceedsHolding(t *testing.T) {
	position := Position{Quantity: decimal.NewFromInt(5), AvgPrice: decimal.NewFromInt(100)}

	_, err := ApplyTrade(position, domain.Sell, decimal.NewFromInt(6), decimal.NewFromInt(100))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApplyTrade_SellEntirePosition(t *testing.T) {
	position := Position{Quantity: decimal.NewFromInt(5), AvgPrice: decimal.NewFromInt(100)}

	position, err := ApplyTrade(position, domain.Sell, decimal.NewFromInt(5), decimal.NewFromInt(120))
	require.NoError(t, err)

	assert.True(t, position.Quantity.IsZero())
}

func TestApplyTrade_UnknownType(t *testing.T) {
	_, err := ApplyTrade(Position{}, domain.TradeType("SHORT"), decimal.NewFromInt(1), decimal.NewFromInt(1))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
