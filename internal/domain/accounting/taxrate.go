package accounting

import "github.com/shopspring/decimal"

// DefaultTaxRate is assumed whenever an order or catalog entry carries no tax
// information of its own.
const DefaultTaxRate = 19

// ReducedTaxRate applies to groceries, including coffee.
const ReducedTaxRate = 7

var (
	sevenPercent    = decimal.NewFromInt(ReducedTaxRate)
	nineteenPercent = decimal.NewFromInt(DefaultTaxRate)
)

// MapTaxRate clamps an arbitrary tax rate to the bands the remote accounting
// system accepts for German VAT: 0, 7 and 19 percent. Any rate above 19 or
// below 0 falls back to the standard rate.
func MapTaxRate(rate decimal.Decimal) int {
	switch {
	case rate.IsZero():
		return 0
	case rate.IsPositive() && rate.LessThanOrEqual(sevenPercent):
		return ReducedTaxRate
	case rate.GreaterThan(sevenPercent) && rate.LessThanOrEqual(nineteenPercent):
		return DefaultTaxRate
	default:
		return DefaultTaxRate
	}
}
