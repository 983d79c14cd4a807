package projection

import (
	"math"

	"github.com/Dan9191/financial-time-machine/internal/models"
)

// Projection is a timeline together with the events observed while building it
type Projection struct {
	Timeline models.Timeline
	// HomePurchaseYear is the year the down payment was made, zero if never.
	HomePurchaseYear int
}

// ProjectTimeline returns horizonYears+1 points starting from the raw snapshot
func ProjectTimeline(snapshot models.FinancialSnapshot, strategy models.Strategy, horizonYears int) models.Timeline {
	return Project(snapshot, strategy, horizonYears).Timeline
}

// Project runs the yearly iteration for strategy. A negative horizon yields
// only year 0. An undefined strategy leaves savings and debt to interest alone.
func Project(snapshot models.FinancialSnapshot, strategy models.Strategy, horizonYears int) Projection {
	if horizonYears < 0 {
		horizonYears = 0
	}

	r, ok := rules[strategy]
	if !ok {
		r = rule{savingsGrowth: 1}
	}

	st := state{savings: snapshot.Savings, debt: snapshot.Debt}
	annual := snapshot.MonthlySurplus() * monthsPerYear

	timeline := make(models.Timeline, 0, horizonYears+1)
	timeline = append(timeline, models.NewYearPoint(0, st.savings, st.debt))

	for year := 1; year <= horizonYears; year++ {
		if r.allocate != nil {
			r.allocate(&st, snapshot, annual)
		}

		st.debt = math.Max(0, st.debt)
		st.debt *= DebtInterest
		st.savings *= r.savingsGrowth

		if r.afterGrowth != nil {
			r.afterGrowth(&st, year)
		}

		timeline = append(timeline, models.NewYearPoint(year, st.savings, st.debt))
	}

	return Projection{Timeline: timeline, HomePurchaseYear: st.homePurchaseYear}
}
