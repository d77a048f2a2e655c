package ingest

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseNumber converts a cell value into a signed float. It never fails:
// anything it cannot read becomes 0.
//
// Accepted text forms include European ("1.234,56"), US ("1,234.56"),
// space-grouped ("1 000,00") and accounting negatives ("(100)", "100-").
func ParseNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case decimal.Decimal:
		f, _ := n.Float64()
		return f
	case string:
		return parseNumberString(n)
	case fmt.Stringer:
		return parseNumberString(n.String())
	default:
		return parseNumberString(fmt.Sprint(v))
	}
}

func parseNumberString(s string) float64 {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		switch r {
		case '€', '$', '£', '%':
			return -1
		}

		return r
	}, s)

	if s == "" {
		return 0
	}

	s, negative := stripSign(s)
	s = canonicalSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}

	f, _ := d.Float64()
	if negative {
		return -math.Abs(f)
	}

	return f
}

// stripSign removes one negativity marker: wrapping parentheses, a trailing
// minus or a leading minus.
func stripSign(s string) (string, bool) {
	switch {
	case len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		return s[1 : len(s)-1], true
	case strings.HasSuffix(s, "-"):
		return strings.TrimSuffix(s, "-"), true
	case strings.HasPrefix(s, "-"):
		return strings.TrimPrefix(s, "-"), true
	case strings.HasPrefix(s, "+"):
		return strings.TrimPrefix(s, "+"), false
	}

	return s, false
}

// canonicalSeparators rewrites s so that '.' is the only decimal separator and
// no grouping separators remain. Whichever of ',' and '.' comes last is the
// decimal separator.
func canonicalSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}

		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}

		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}

	return s
}
