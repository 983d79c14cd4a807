package models

// FinancialSnapshot is the starting point of a projection
type FinancialSnapshot struct {
	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	Savings         float64 `json:"savings"`
	Debt            float64 `json:"debt"`
}

// MonthlySurplus returns income minus expenses; negative means a monthly deficit
func (s FinancialSnapshot) MonthlySurplus() float64 {
	return s.MonthlyIncome - s.MonthlyExpenses
}

// FinancialData is the snapshot as posted by the calculator form
type FinancialData struct {
	CurrentIncome   float64 `json:"currentIncome"`
	CurrentExpenses float64 `json:"currentExpenses"`
	CurrentSavings  float64 `json:"currentSavings"`
	CurrentDebt     float64 `json:"currentDebt"`
	YearsToProject  int     `json:"yearsToProject"`
}

// Snapshot converts form data into a FinancialSnapshot
func (d FinancialData) Snapshot() FinancialSnapshot {
	return FinancialSnapshot{
		MonthlyIncome:   d.CurrentIncome,
		MonthlyExpenses: d.CurrentExpenses,
		Savings:         d.CurrentSavings,
		Debt:            d.CurrentDebt,
	}
}
