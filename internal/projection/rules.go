package projection

import (
	"math"

	"github.com/Dan9191/financial-time-machine/internal/models"
)

const (
	monthsPerYear = 12

	// DebtInterest is the yearly growth applied to outstanding debt.
	DebtInterest = 1.18

	// EmergencyFundMonths is how many months of expenses the emergency fund targets.
	EmergencyFundMonths = 6

	// DownPayment is taken from savings when the home is bought.
	DownPayment = 80_000.0
	// Mortgage is added to debt when the home is bought.
	Mortgage = 320_000.0
)

// state is threaded through the yearly loop
type state struct {
	savings float64
	debt    float64

	// emergencyFunded latches once savings reach the emergency fund target
	emergencyFunded bool
	// homePurchaseYear is zero until the down payment has been made
	homePurchaseYear int
}

// allocateFunc splits one year of surplus between debt and savings. It runs
// before debt is floored and interest is applied.
type allocateFunc func(st *state, snapshot models.FinancialSnapshot, annualSurplus float64)

// afterGrowthFunc runs once interest has been applied for the year.
type afterGrowthFunc func(st *state, year int)

type rule struct {
	allocate      allocateFunc
	savingsGrowth float64
	afterGrowth   afterGrowthFunc
}

var rules = map[models.Strategy]rule{
	models.PayDownDebt: {
		allocate:      allocatePayDownDebt,
		savingsGrowth: 1.02,
	},
	models.EmergencyFund: {
		allocate:      allocateEmergencyFund,
		savingsGrowth: 1.02,
	},
	models.InvestmentGrowth: {
		allocate:      fixedSplit(0.4, 0.6),
		savingsGrowth: 1.07,
	},
	models.HomePurchase: {
		allocate:      fixedSplit(0.3, 0.7),
		savingsGrowth: 1.03,
		afterGrowth:   buyHomeOnce,
	},
}

// 70% of the surplus goes to debt; whatever the debt cannot absorb joins the
// 30% savings share.
func allocatePayDownDebt(st *state, _ models.FinancialSnapshot, annual float64) {
	debtBudget := annual * 0.7
	payment := math.Min(debtBudget, st.debt)
	st.debt -= payment
	st.savings += annual*0.3 + (debtBudget - payment)
}

func allocateEmergencyFund(st *state, snapshot models.FinancialSnapshot, annual float64) {
	target := snapshot.MonthlyExpenses * EmergencyFundMonths
	if !st.emergencyFunded && st.savings >= target {
		st.emergencyFunded = true
	}

	if !st.emergencyFunded {
		st.savings += math.Min(annual*0.8, target-st.savings)
		st.debt -= annual * 0.2
		return
	}

	st.debt -= math.Min(annual*0.6, st.debt)
	st.savings += annual * 0.4
}

func fixedSplit(debtShare, savingsShare float64) allocateFunc {
	return func(st *state, _ models.FinancialSnapshot, annual float64) {
		st.debt -= annual * debtShare
		st.savings += annual * savingsShare
	}
}

func buyHomeOnce(st *state, year int) {
	if st.homePurchaseYear != 0 || st.savings < DownPayment {
		return
	}
	st.savings -= DownPayment
	st.debt += Mortgage
	st.homePurchaseYear = year
}
