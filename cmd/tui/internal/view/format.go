package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const opTimeout = 30 * time.Second

// FormatMoney renders an amount the way the closing sheets show it:
// 1.234.567,89 €.
func FormatMoney(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}

		b.WriteRune(r)
	}

	out := b.String() + "," + frac + " €"
	if neg {
		out = "-" + out
	}

	return out
}

func FormatPct(v float64) string {
	return strings.Replace(fmt.Sprintf("%.1f%%", v), ".", ",", 1)
}

// FormatChange renders a signed percentage, or "n/d" when unavailable.
func FormatChange(v float64, available bool) string {
	if !available {
		return "n/d"
	}

	return strings.Replace(fmt.Sprintf("%+.1f%%", v), ".", ",", 1)
}

// OpCtx returns a context with a standard timeout for service calls.
func OpCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
