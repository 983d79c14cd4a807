package models

// ProjectionRequest is the body posted to the projection endpoint
type ProjectionRequest struct {
	FinancialData    FinancialData `json:"financialData"`
	SelectedScenario string        `json:"selectedScenario"`
}

// ProjectionResult represents a computed projection and its summary
type ProjectionResult struct {
	Strategy       Strategy        `json:"strategy"`
	Description    string          `json:"description"`
	YearsToProject int             `json:"years_to_project"`
	Timeline       Timeline        `json:"timeline"`
	Summary        TimelineSummary `json:"summary"`
}

// EmailRequest asks for a projection summary to be mailed
type EmailRequest struct {
	Email            string        `json:"email"`
	FinancialData    FinancialData `json:"financialData"`
	SelectedScenario string        `json:"selectedScenario"`
	Advice           string        `json:"advice,omitempty"`
}
