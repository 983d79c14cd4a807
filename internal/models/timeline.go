package models

// YearPoint is one year of a projection
type YearPoint struct {
	Year     int     `json:"year"`
	Savings  float64 `json:"savings"`
	Debt     float64 `json:"debt"`
	NetWorth float64 `json:"netWorth"`
}

// NewYearPoint builds a point with NetWorth derived from savings and debt
func NewYearPoint(year int, savings, debt float64) YearPoint {
	return YearPoint{
		Year:     year,
		Savings:  savings,
		Debt:     debt,
		NetWorth: savings - debt,
	}
}

// Timeline is the year-indexed result of one projection run
type Timeline []YearPoint

// First returns the year 0 point
func (t Timeline) First() (YearPoint, bool) {
	if len(t) == 0 {
		return YearPoint{}, false
	}
	return t[0], true
}

// Last returns the final point
func (t Timeline) Last() (YearPoint, bool) {
	if len(t) == 0 {
		return YearPoint{}, false
	}
	return t[len(t)-1], true
}

// NetWorthChange returns final net worth minus starting net worth
func (t Timeline) NetWorthChange() float64 {
	first, ok := t.First()
	if !ok {
		return 0
	}
	last, _ := t.Last()
	return last.NetWorth - first.NetWorth
}

// TimelineSummary represents the headline figures of a projection
type TimelineSummary struct {
	StartNetWorth    float64 `json:"start_net_worth"`
	FinalNetWorth    float64 `json:"final_net_worth"`
	NetWorthChange   float64 `json:"net_worth_change"`
	FinalSavings     float64 `json:"final_savings"`
	FinalDebt        float64 `json:"final_debt"`
	DebtFreeYear     *int    `json:"debt_free_year,omitempty"`
	HomePurchaseYear *int    `json:"home_purchase_year,omitempty"`
}
