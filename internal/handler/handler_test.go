package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dan9191/financial-time-machine/internal/integrations/advisor"
	"github.com/Dan9191/financial-time-machine/internal/models"
	"github.com/Dan9191/financial-time-machine/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
)

type stubAdvisor struct {
	advice string
	err    error
}

func (s stubAdvisor) Advise(context.Context, advisor.Input) (string, error) {
	return s.advice, s.err
}

func newRouter(adv service.Advisor) *mux.Router {
	logger, _ := test.NewNullLogger()
	svc := service.NewService(adv, nil, nil, nil, logger)

	r := mux.NewRouter()
	NewHandler(svc, logger).Register(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const projectionBody = `{
	"financialData": {
		"currentIncome": 5000,
		"currentExpenses": 3500,
		"currentSavings": 10000,
		"currentDebt": 25000,
		"yearsToProject": 10
	},
	"selectedScenario": "Pay Down Debt"
}`

func TestProject_OK(t *testing.T) {
	w := do(newRouter(stubAdvisor{}), http.MethodPost, "/api/projection", projectionBody)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Strategy string                 `json:"strategy"`
		Timeline []models.YearPoint     `json:"timeline"`
		Summary  models.TimelineSummary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Strategy != "Pay Down Debt" {
		t.Errorf("unexpected strategy %q", resp.Strategy)
	}
	if len(resp.Timeline) != 11 || resp.Timeline[10].Year != 10 {
		t.Errorf("unexpected timeline %+v", resp.Timeline)
	}
	if resp.Summary.DebtFreeYear == nil || *resp.Summary.DebtFreeYear != 3 {
		t.Errorf("unexpected summary %+v", resp.Summary)
	}
}

func TestProject_BadRequest(t *testing.T) {
	r := newRouter(stubAdvisor{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{invalid-json}`},
		{"unknown strategy", `{"financialData": {"currentIncome": 1}, "selectedScenario": "Lottery"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/projection", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestProject_Overflow(t *testing.T) {
	body := `{
		"financialData": {
			"currentIncome": 5000,
			"currentExpenses": 3500,
			"currentSavings": 1.7e308,
			"yearsToProject": 30
		},
		"selectedScenario": "Investment Growth"
	}`
	w := do(newRouter(stubAdvisor{}), http.MethodPost, "/api/projection", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got content type %q", ct)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !strings.Contains(resp.Error, "invalid financial data") {
		t.Errorf("unexpected error body %q (%v)", w.Body.String(), err)
	}
}

func TestProject_MethodNotAllowed(t *testing.T) {
	w := do(newRouter(stubAdvisor{}), http.MethodGet, "/api/projection", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestStrategies(t *testing.T) {
	w := do(newRouter(stubAdvisor{}), http.MethodGet, "/api/strategies", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var infos []models.StrategyInfo
	json.Unmarshal(w.Body.Bytes(), &infos)
	if len(infos) != 4 {
		t.Errorf("expected 4 strategies, got %d", len(infos))
	}
}

const adviceBody = `{
	"financialData": {
		"currentIncome": 5000,
		"currentExpenses": 3500,
		"currentSavings": 10000,
		"currentDebt": 25000,
		"yearsToProject": 1
	},
	"timelineData": [
		{"year": 0, "savings": 10000, "debt": 25000, "netWorth": -15000},
		{"year": 1, "savings": 15708, "debt": 14632, "netWorth": 1076}
	],
	"selectedScenario": "Pay Down Debt"
}`

func TestAdvice_OK(t *testing.T) {
	r := newRouter(stubAdvisor{advice: "Good start.\n\nPay the card first."})

	for _, path := range []string{"/api/advice", "/api/openai"} {
		w := do(r, http.MethodPost, path, adviceBody)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}

		var resp models.AdviceResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Advice != "Good start.\n\nPay the card first." || len(resp.Paragraphs) != 2 {
			t.Errorf("%s: unexpected response %+v", path, resp)
		}
	}
}

func TestAdvice_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"missing data", nil, `{"selectedScenario": "Pay Down Debt"}`, http.StatusBadRequest, "Missing required financial data"},
		{"auth", fmt.Errorf("%w: bad key", advisor.ErrAuth), adviceBody, http.StatusInternalServerError, "API key configuration issue"},
		{"model", fmt.Errorf("%w: gone", advisor.ErrModelUnavailable), adviceBody, http.StatusServiceUnavailable, "The AI model is not available"},
		{"transport", fmt.Errorf("%w: dial tcp 10.0.0.7:443", advisor.ErrTransport), adviceBody, http.StatusBadGateway, "Failed to reach the AI service"},
		{"upstream", fmt.Errorf("%w: overloaded", advisor.ErrUpstream), adviceBody, http.StatusBadGateway, "Failed to generate financial advice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newRouter(stubAdvisor{err: tt.err}), http.MethodPost, "/api/advice", tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			var resp models.ErrorResponse
			json.Unmarshal(w.Body.Bytes(), &resp)
			if !strings.Contains(resp.Error, tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, resp.Error)
			}
			if strings.Contains(resp.Error, "dial tcp") {
				t.Errorf("transport details leaked to the client: %q", resp.Error)
			}
		})
	}
}

func TestEmailProjection_NotConfigured(t *testing.T) {
	body := `{"email": "ana@example.com", "financialData": {"currentIncome": 5000}, "selectedScenario": "Home Purchase"}`
	w := do(newRouter(stubAdvisor{}), http.MethodPost, "/api/projection/email", body)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestKeyRate_NotConfigured(t *testing.T) {
	w := do(newRouter(stubAdvisor{}), http.MethodGet, "/api/key-rate", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	w := do(newRouter(stubAdvisor{}), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}
