package advisor

import (
	"fmt"
	"strings"

	"github.com/Dan9191/financial-time-machine/internal/models"
	"github.com/Dan9191/financial-time-machine/internal/utils"
)

const systemPrompt = "You are an expert financial advisor who provides clear, concise, and personalized financial advice. " +
	"Your recommendations should be specific, actionable, and tailored to the individual's financial situation."

// Input is everything the advisor is told about a projection
type Input struct {
	Snapshot       models.FinancialSnapshot `json:"snapshot"`
	YearsToProject int                      `json:"years_to_project"`
	Timeline       models.Timeline          `json:"timeline"`
	Strategy       string                   `json:"strategy"`
	// KeyRate is optional market context
	KeyRate *models.KeyRate `json:"key_rate,omitempty"`
}

// BuildPrompt renders the user message sent to the model
func BuildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("As a financial advisor, analyze the following financial scenario and provide personalized advice.\n\n")

	b.WriteString("Current Financial Situation:\n")
	fmt.Fprintf(&b, "- Monthly Income: %s\n", utils.FormatCurrency(in.Snapshot.MonthlyIncome))
	fmt.Fprintf(&b, "- Monthly Expenses: %s\n", utils.FormatCurrency(in.Snapshot.MonthlyExpenses))
	fmt.Fprintf(&b, "- Current Savings: %s\n", utils.FormatCurrency(in.Snapshot.Savings))
	fmt.Fprintf(&b, "- Current Debt: %s\n", utils.FormatCurrency(in.Snapshot.Debt))
	fmt.Fprintf(&b, "- Selected Strategy: %s\n", in.Strategy)
	fmt.Fprintf(&b, "- Projection Period: %d years\n", in.YearsToProject)

	if last, ok := in.Timeline.Last(); ok {
		fmt.Fprintf(&b, "\nProjected Outcome (after %d years):\n", in.YearsToProject)
		fmt.Fprintf(&b, "- Final Savings: %s\n", utils.FormatCurrency(last.Savings))
		fmt.Fprintf(&b, "- Final Debt: %s\n", utils.FormatCurrency(last.Debt))
		fmt.Fprintf(&b, "- Net Worth Change: %s\n", utils.FormatCurrency(in.Timeline.NetWorthChange()))
	}

	if in.KeyRate != nil {
		b.WriteString("\nMarket Context:\n")
		fmt.Fprintf(&b, "- Central bank key rate: %s (as of %s)\n",
			utils.FormatPercent(in.KeyRate.Rate), in.KeyRate.UpdatedAt.Format("2006-01-02"))
	}

	b.WriteString("\nBased on this information, provide:\n")
	b.WriteString("1. A brief assessment of this financial plan\n")
	b.WriteString("2. Three specific, actionable recommendations to improve financial outcomes\n")
	b.WriteString("3. One potential risk or challenge to be aware of\n")
	b.WriteString("4. One opportunity that might be overlooked\n")

	return b.String()
}
