package snapshot

import (
	"math"
)

// LowPerformanceThreshold is the margin percentage under which a row or center
// is reported as low performing.
const LowPerformanceThreshold = 20.0

// MarginPct returns margin as a percentage of revenue. When revenue and margin
// share a sign the result carries the margin's sign, so a credit note of -1000
// revenue with -300 margin reads -30% rather than +30%.
func MarginPct(revenue, margin float64) float64 {
	if revenue == 0 {
		return 0
	}

	pct := margin / revenue * 100
	if revenue < 0 && margin < 0 {
		return -math.Abs(pct)
	}

	return pct
}

// YoY compares a snapshot with the same month one year earlier.
type YoY struct {
	RevenueChangePct float64 `json:"revenue_change_pct"`
	MarginChangePct  float64 `json:"margin_change_pct"`
	Available        bool    `json:"available"`
}

// Budget compares actual figures with the budgeted ones.
type Budget struct {
	RevenueAchievementPct float64 `json:"revenue_achievement_pct"`
	MarginAchievementPct  float64 `json:"margin_achievement_pct"`
	Available             bool    `json:"available"`
}

// Derived bundles the comparison metrics shown next to a snapshot.
type Derived struct {
	YoY    YoY    `json:"yoy"`
	Budget Budget `json:"budget"`
}

// Lookup finds a stored snapshot by period label.
type Lookup interface {
	FindByPeriod(period string) (*Snapshot, bool)
}

// Derive computes the YoY and budget metrics of current, looking up the prior
// year's snapshot in history.
func Derive(current *Snapshot, history Lookup) Derived {
	var prev *Snapshot

	if key, ok := PreviousYearPeriod(current.Period); ok && history != nil {
		if s, found := history.FindByPeriod(key); found {
			prev = s
		}
	}

	return Derived{
		YoY:    CompareYoY(current, prev),
		Budget: CompareBudget(current),
	}
}

// CompareYoY returns the relative change of revenue and margin against prev.
// A nil prev yields an unavailable result.
func CompareYoY(current, prev *Snapshot) YoY {
	if current == nil || prev == nil {
		return YoY{}
	}

	return YoY{
		RevenueChangePct: changePct(current.Totals.Revenue, prev.Totals.Revenue),
		MarginChangePct:  changePct(current.Totals.Margin, prev.Totals.Margin),
		Available:        true,
	}
}

// CompareBudget returns budget achievement ratios, unavailable when no budget
// revenue was recorded.
func CompareBudget(s *Snapshot) Budget {
	if s == nil || s.Totals.BudgetRevenue == 0 {
		return Budget{}
	}

	t := s.Totals
	budgetMargin := t.BudgetRevenue - t.BudgetCost

	marginAchievement := 100.0
	if budgetMargin != 0 {
		marginAchievement = t.Margin / budgetMargin * 100
	}

	return Budget{
		RevenueAchievementPct: t.Revenue / t.BudgetRevenue * 100,
		MarginAchievementPct:  marginAchievement,
		Available:             true,
	}
}

func changePct(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}

	return (cur - prev) / math.Abs(prev) * 100
}
