package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/financial-time-machine/internal/integrations/advisor"
	"github.com/Dan9191/financial-time-machine/internal/models"
	"github.com/Dan9191/financial-time-machine/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts every API route on r
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/strategies", h.Strategies).Methods(http.MethodGet)
	api.HandleFunc("/projection", h.Project).Methods(http.MethodPost)
	api.HandleFunc("/projection/email", h.EmailProjection).Methods(http.MethodPost)
	api.HandleFunc("/advice", h.Advice).Methods(http.MethodPost)
	// legacy path still called by the web client
	api.HandleFunc("/openai", h.Advice).Methods(http.MethodPost)
	api.HandleFunc("/key-rate", h.KeyRate).Methods(http.MethodGet)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Strategies lists the available strategies
func (h *Handler) Strategies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Strategies())
}

// Project computes a timeline for the posted snapshot and strategy
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	var req models.ProjectionRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.Project(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Advice forwards a projection to the language model and returns its advice
func (h *Handler) Advice(w http.ResponseWriter, r *http.Request) {
	var req models.AdviceRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.svc.Advise(r.Context(), req)
	if res.Err != nil {
		status, msg := adviceError(res.Err)
		if status >= http.StatusInternalServerError {
			h.log.Errorf("Error generating advice: %v", res.Err)
		}
		h.writeError(w, status, msg)
		return
	}

	h.writeJSON(w, http.StatusOK, models.AdviceResponse{
		Advice:     res.Advice,
		Paragraphs: res.Paragraphs,
	})
}

func adviceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingAdviceData):
		return http.StatusBadRequest, "Missing required financial data"
	case errors.Is(err, service.ErrInvalidSnapshot):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, advisor.ErrAuth):
		return http.StatusInternalServerError, "API key configuration issue. Please check server logs."
	case errors.Is(err, advisor.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "The AI model is not available. Please check server logs for details."
	case errors.Is(err, advisor.ErrTransport):
		return http.StatusBadGateway, "Failed to reach the AI service. Please try again later."
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "The advice request was cancelled before the AI service answered"
	default:
		return http.StatusBadGateway, "Failed to generate financial advice: " + err.Error()
	}
}

type emailResponse struct {
	Status string `json:"status"`
}

// EmailProjection mails a projection summary
func (h *Handler) EmailProjection(w http.ResponseWriter, r *http.Request) {
	var req models.EmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.svc.EmailSummary(req)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, emailResponse{Status: "sent"})
	case errors.Is(err, service.ErrEmailNotConfigured):
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidSnapshot),
		errors.Is(err, models.ErrUnknownStrategy):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Errorf("Error sending projection email: %v", err)
		h.writeError(w, http.StatusBadGateway, "failed to send email")
	}
}

// KeyRate returns the latest central bank key rate
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	kr, err := h.svc.KeyRate(r.Context())
	if errors.Is(err, service.ErrKeyRateUnavailable) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.writeError(w, http.StatusBadGateway, "Failed to get key rate: "+err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, kr)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Debugf("Error decoding request body: %v", err)
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, models.ErrorResponse{Error: msg})
}

// writeJSON encodes into a buffer first so a failed encode can still become a 500
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.log.Errorf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Errorf("Error writing response: %v", err)
	}
}
