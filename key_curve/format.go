package key_curve

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	cent     = decimal.RequireFromString("0.01")
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// FormatPrice renders a unit price with more decimals the smaller it is.
func FormatPrice(price decimal.Decimal) string {
	switch {
	case price.LessThan(cent):
		return "$" + price.StringFixed(4)
	case price.LessThan(decimal.NewFromInt(1)):
		return "$" + price.StringFixed(3)
	case price.LessThan(decimal.NewFromInt(100)):
		return "$" + price.StringFixed(2)
	default:
		return "$" + groupThousands(price.StringFixed(2))
	}
}

// FormatLargeNumber abbreviates with K, M and B suffixes.
func FormatLargeNumber(n decimal.Decimal) string {
	switch {
	case n.GreaterThanOrEqual(billion):
		return n.Div(billion).StringFixed(2) + "B"
	case n.GreaterThanOrEqual(million):
		return n.Div(million).StringFixed(2) + "M"
	case n.GreaterThanOrEqual(thousand):
		return n.Div(thousand).StringFixed(2) + "K"
	default:
		return n.StringFixed(2)
	}
}

func groupThousands(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
