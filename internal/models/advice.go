package models

import "time"

// AdviceRequest is the body posted to the advice endpoint
type AdviceRequest struct {
	FinancialData    *FinancialData `json:"financialData"`
	TimelineData     Timeline       `json:"timelineData"`
	SelectedScenario string         `json:"selectedScenario"`
}

// AdviceResponse carries generated advice text
type AdviceResponse struct {
	Advice     string   `json:"advice"`
	Paragraphs []string `json:"paragraphs"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// KeyRate is the latest reference interest rate published by the central bank
type KeyRate struct {
	Rate      float64   `json:"key_rate"`
	UpdatedAt time.Time `json:"updated_at"`
}
