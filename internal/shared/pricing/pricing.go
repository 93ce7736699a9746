// Package pricing holds the pure money arithmetic used by the catalog, the
// order engine and analytics. Every division is guarded and yields zero when
// the denominator is not positive.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MaxAmount is the exclusive bound on any stored money value. Money columns
// keep ten integer digits and two decimal places.
var MaxAmount = decimal.New(1, 10)

var (
	ErrTooPrecise = errors.New("amount must have at most 2 decimal places")
	ErrOutOfRange = errors.New("amount must be below 10000000000")
)

// CheckAmount reports whether d is storable without rounding.
func CheckAmount(d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return ErrTooPrecise
	}
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return ErrOutOfRange
	}
	return nil
}

// ProfitPerUnit returns sale minus purchase. The result may be negative.
func ProfitPerUnit(purchasePrice, salePrice decimal.Decimal) decimal.Decimal {
	return salePrice.Sub(purchasePrice)
}

// LineAmount returns unitPrice × quantity.
func LineAmount(unitPrice decimal.Decimal, quantity int64) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// LineProfit returns ProfitPerUnit × quantity.
func LineProfit(purchasePrice, salePrice decimal.Decimal, quantity int64) decimal.Decimal {
	return ProfitPerUnit(purchasePrice, salePrice).Mul(decimal.NewFromInt(quantity))
}

// LineCost returns unitCost × quantity.
func LineCost(unitCost decimal.Decimal, quantity int64) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(quantity))
}

// MarginPercent returns profit / revenue × 100, or zero without revenue.
func MarginPercent(profit, revenue decimal.Decimal) decimal.Decimal {
	return percent(profit, revenue)
}

// ROIPercent returns profit / costBasis × 100, or zero without a cost basis.
func ROIPercent(profit, costBasis decimal.Decimal) decimal.Decimal {
	return percent(profit, costBasis)
}

// SafeDiv returns numerator / denominator, or zero when denominator <= 0.
func SafeDiv(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

// Average returns total / count, or zero when count <= 0.
func Average(total decimal.Decimal, count int64) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count))
}

func percent(numerator, denominator decimal.Decimal) decimal.Decimal {
	return SafeDiv(numerator, denominator).Mul(hundred)
}
