package accounting

import (
	"fmt"

	"github.com/hearthsoft/household_ledger_app/internal/apperrors"
	"github.com/hearthsoft/household_ledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AvgPriceScale is the precision kept for weighted-average cost per unit.
const AvgPriceScale = 8

// Position is a holding's quantity and weighted-average cost per unit.
type Position struct {
	Quantity decimal.Decimal
	AvgPrice decimal.Decimal
}

// ApplyTrade returns the position after a buy or sell.
// A buy recomputes the weighted average over quantity and price only; the fee
// belongs on the cash line, not in the cost basis. A sell reduces quantity and
// leaves the average untouched. Selling more than is held fails validation.
func ApplyTrade(p Position, tradeType domain.TradeType, quantity, price decimal.Decimal) (Position, error) {
	switch tradeType {
	case domain.Buy:
		newQuantity := p.Quantity.Add(quantity)
		cost := p.Quantity.Mul(p.AvgPrice).Add(quantity.Mul(price))
		return Position{
			Quantity: newQuantity,
			AvgPrice: cost.DivRound(newQuantity, AvgPriceScale),
		}, nil
	case domain.Sell:
		if quantity.GreaterThan(p.Quantity) {
			return Position{}, fmt.Errorf("%w: cannot sell %s units, only %s held", apperrors.ErrValidation, quantity, p.Quantity)
		}
		return Position{
			Quantity: p.Quantity.Sub(quantity),
			AvgPrice: p.AvgPrice,
		}, nil
	default:
		return Position{}, fmt.Errorf("%w: unknown trade type %s", apperrors.ErrValidation, tradeType)
	}
}
