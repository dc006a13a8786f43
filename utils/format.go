package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FmtMoney renders "$1,234.56" with thousands grouping.
func FmtMoney(d decimal.Decimal) string {
	return "$" + groupThousands(d.Abs().StringFixed(2))
}

// FmtSignedMoney renders "+$70.00" / "-$70.00".
func FmtSignedMoney(d decimal.Decimal) string {
	sign := "+"
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + groupThousands(d.Abs().StringFixed(2))
}

// FmtSignedPct renders a fractional yield as "+7.00%" / "-7.00%".
func FmtSignedPct(d decimal.Decimal) string {
	s := d.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
	if !d.IsNegative() {
		s = "+" + s
	}
	return s
}

func groupThousands(fixed string) string {
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	n := len(intPart)
	for i, c := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
