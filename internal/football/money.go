package football

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var million = decimal.NewFromInt(1_000_000)

// Millions converts a value expressed in millions into a currency amount.
func Millions(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Mul(million)
}

// InMillions converts a currency amount into millions as a float.
func InMillions(d decimal.Decimal) float64 {
	f, _ := d.Div(million).Float64()
	return f
}

// FormatMoney renders a currency amount for negotiation status messages.
func FormatMoney(d decimal.Decimal) string {
	return humanize.Comma(d.Round(0).IntPart())
}
