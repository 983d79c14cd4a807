package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/financial-time-machine/internal/config"
	"github.com/Dan9191/financial-time-machine/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
)

func testInput() Input {
	return Input{
		Snapshot: models.FinancialSnapshot{
			MonthlyIncome:   5000,
			MonthlyExpenses: 3500,
			Savings:         10000,
			Debt:            25000,
		},
		YearsToProject: 1,
		Timeline: models.Timeline{
			models.NewYearPoint(0, 10000, 25000),
			models.NewYearPoint(1, 15708, 14632),
		},
		Strategy: "Pay Down Debt",
	}
}

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	return NewClient(&config.Config{
		OpenAIAPIKey:  apiKey,
		OpenAIBaseURL: srv.URL + "/v1/",
		OpenAIModel:   "gpt-3.5-turbo",
		OpenAITimeout: 5 * time.Second,
	}, logger)
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-3.5-turbo",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
			},
		}},
	})
	return string(body)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    "invalid_request_error",
			"code":    code,
		},
	})
}

func TestAdvise_OK(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	client := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("Solid plan.\n\nKeep going."))
	})

	advice, err := client.Advise(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if advice != "Solid plan.\n\nKeep going." {
		t.Errorf("unexpected advice %q", advice)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected authorization header %q", gotAuth)
	}
	if gotBody["model"] != "gpt-3.5-turbo" {
		t.Errorf("unexpected model %v", gotBody["model"])
	}
	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
}

func TestAdvise_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "invalid key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(w, http.StatusUnauthorized, "invalid_api_key", "Incorrect API key provided")
			},
			want: ErrAuth,
		},
		{
			name: "unknown model",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(w, http.StatusNotFound, "model_not_found", "The model does not exist")
			},
			want: ErrModelUnavailable,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(w, http.StatusInternalServerError, "server_error", "boom")
			},
			want: ErrUpstream,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
			},
			want: ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "sk-test", tt.handler)

			_, err := client.Advise(context.Background(), testInput())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAdvise_NoRetry(t *testing.T) {
	calls := 0
	client := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeAPIError(w, http.StatusServiceUnavailable, "overloaded", "try later")
	})

	if _, err := client.Advise(context.Background(), testInput()); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single upstream call, got %d", calls)
	}
}

func TestAdvise_MissingKey(t *testing.T) {
	called := false
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Advise(context.Background(), testInput())
	if !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
	if called {
		t.Errorf("upstream should not be called without a key")
	}
}

func TestAdvise_Transport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	logger, _ := test.NewNullLogger()
	client := NewClient(&config.Config{
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: url + "/v1/",
		OpenAIModel:   "gpt-3.5-turbo",
		OpenAITimeout: time.Second,
	}, logger)

	_, err := client.Advise(context.Background(), testInput())
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestAdvise_Cancelled(t *testing.T) {
	client := newTestClient(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Advise(ctx, testInput())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	in := testInput()
	in.KeyRate = &models.KeyRate{Rate: 16.5, UpdatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}

	prompt := BuildPrompt(in)

	for _, want := range []string{
		"Monthly Income: $5,000.00",
		"Current Debt: $25,000.00",
		"Selected Strategy: Pay Down Debt",
		"Projection Period: 1 years",
		"Final Savings: $15,708.00",
		"Final Debt: $14,632.00",
		"Net Worth Change: $16,076.00",
		"key rate: 16.50% (as of 2026-10-01)",
		"Three specific, actionable recommendations",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_WithoutKeyRate(t *testing.T) {
	if strings.Contains(BuildPrompt(testInput()), "Market Context") {
		t.Errorf("market context should be omitted without a key rate")
	}
}
