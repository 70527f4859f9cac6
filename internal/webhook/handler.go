// Package webhook serves Dialogflow fulfillment requests over HTTP.
package webhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/greenbot-eco/greenbot/internal/httputil"
	"github.com/greenbot-eco/greenbot/internal/intents"
	"github.com/greenbot-eco/greenbot/internal/telemetry"
	"github.com/greenbot-eco/greenbot/internal/types"
)

const maxBodyBytes = 1 << 20

// Dispatcher produces the reply for a decoded request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req types.IntentRequest) (types.FulfillmentResponse, error)
}

// Handler answers POSTed WebhookRequests. Every POST gets a 200 with a
// full WebhookResponse; failures are logged and replaced by the apology text.
type Handler struct {
	dispatcher Dispatcher
	metrics    *telemetry.Metrics
	logger     *slog.Logger
	adapter    string
}

// NewHandler creates a Handler. adapter names the deployment target in logs
// and metrics. metrics may be nil.
func NewHandler(dispatcher Dispatcher, metrics *telemetry.Metrics, logger *slog.Logger, adapter string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		adapter:    adapter,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteMethodNotAllowed(w)
		return
	}

	start := time.Now()
	reqID := w.Header().Get("X-Request-ID")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	defer r.Body.Close()

	var (
		text    string
		intent  = "unknown"
		outcome string
	)
	if err != nil {
		h.logger.Error("failed to read webhook body", "request_id", reqID, "error", err)
		text, outcome = intents.ApologyText, telemetry.OutcomeError
	} else {
		text, intent, outcome = h.fulfill(r.Context(), reqID, body)
	}

	payload, err := EncodeResponse(text)
	if err != nil {
		h.logger.Error("failed to encode webhook response", "request_id", reqID, "error", err)
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"fulfillmentText": intents.ApologyText})
		return
	}

	if h.metrics != nil {
		h.metrics.RecordIntent(h.adapter, intent, outcome, float64(time.Since(start).Milliseconds()))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// fulfill decodes and dispatches one request. It never fails: decoding
// errors, handler errors and panics all yield the apology text.
func (h *Handler) fulfill(ctx context.Context, reqID string, body []byte) (text, intent, outcome string) {
	intent = "unknown"
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic while handling intent",
				"request_id", reqID,
				"intent", intent,
				"panic", fmt.Sprint(rec),
			)
			text, outcome = intents.ApologyText, telemetry.OutcomeError
		}
	}()

	req, err := DecodeRequest(body)
	if err != nil {
		h.logger.Warn("rejected webhook payload", "request_id", reqID, "adapter", h.adapter, "error", err)
		return intents.ApologyText, intent, telemetry.OutcomeError
	}

	known := false
	if i, ok := types.ParseIntent(req.Intent); ok {
		intent, known = string(i), true
	}

	h.logger.Info("intent received",
		"request_id", reqID,
		"adapter", h.adapter,
		"intent", req.Intent,
		"session_id", req.SessionID,
		"parameters", map[string]any(req.Parameters),
	)

	resp, err := h.dispatcher.Dispatch(ctx, req)
	if err != nil {
		h.logger.Error("intent handler failed",
			"request_id", reqID,
			"intent", req.Intent,
			"session_id", req.SessionID,
			"error", err,
		)
		return intents.ApologyText, intent, telemetry.OutcomeError
	}
	if resp.Text == "" {
		h.logger.Error("intent handler returned empty text", "request_id", reqID, "intent", req.Intent)
		return intents.ApologyText, intent, telemetry.OutcomeError
	}

	if !known {
		return resp.Text, intent, telemetry.OutcomeUnknown
	}
	return resp.Text, intent, telemetry.OutcomeOK
}
