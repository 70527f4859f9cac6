// Package proxy exposes the inference server to the mobile app under /api/llm.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/greenbot-eco/greenbot/internal/config"
	"github.com/greenbot-eco/greenbot/internal/filter"
	"github.com/greenbot-eco/greenbot/internal/httputil"
	"github.com/greenbot-eco/greenbot/internal/ollama"
	"github.com/greenbot-eco/greenbot/internal/telemetry"
	"github.com/greenbot-eco/greenbot/internal/types"
)

const (
	maxBodyBytes = 1 << 20

	msgConnected         = "Connexion à Ollama établie"
	msgConnectedFallback = "Connexion à Ollama établie via fallback"
	msgUnreachable       = "Impossible de se connecter au serveur Ollama"
	msgModelsFailed      = "Erreur lors de la récupération des modèles disponibles"
	msgTextRequired      = `Le paramètre "text" est requis`
	msgChatFailed        = "Erreur lors de la génération de la réponse: "
	msgTestFailed        = "Erreur lors du test des paramètres: "
	msgBlocked           = "Votre message a été refusé par le filtre de contenu."
	msgHealthy           = "API fonctionnelle"

	// NoResponseText replaces an empty completion.
	NoResponseText = "Pas de réponse"
	// TimeoutText is returned with status TIMEOUT when a chat generation
	// runs past the upstream timeout.
	TimeoutText = "Désolé, la génération de la réponse prend trop de temps. Veuillez essayer une question plus courte ou utiliser la connexion directe à Ollama dans l'application."
)

// Upstream endpoint labels for metrics.
const (
	endpointTags     = "tags"
	endpointRoot     = "root"
	endpointChat     = "chat"
	endpointGenerate = "generate"
)

// Handler holds dependencies for the inference proxy routes.
type Handler struct {
	cfg         func() *config.Config
	httpClient  *http.Client
	filterChain *filter.Chain
	metrics     *telemetry.Metrics
	logger      *slog.Logger

	mu     sync.Mutex
	client *ollama.Client
}

// NewHandler creates the proxy handlers. The Ollama client follows
// cfg().Ollama.BaseURL across config reloads. filterChain and metrics may be nil.
func NewHandler(cfg func() *config.Config, httpClient *http.Client, filterChain *filter.Chain, metrics *telemetry.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:         cfg,
		httpClient:  httpClient,
		filterChain: filterChain,
		metrics:     metrics,
		logger:      logger,
	}
}

func (h *Handler) upstream(baseURL string) *ollama.Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client == nil || h.client.BaseURL() != strings.TrimRight(baseURL, "/") {
		h.client = ollama.NewClient(baseURL, h.httpClient)
	}
	return h.client
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": types.StatusOK, "message": msgHealthy})
}

// Status handles GET /api/llm/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	cfg := h.cfg()
	client := h.upstream(cfg.Ollama.BaseURL)

	h.logger.Info("checking ollama connection", "request_id", reqID, "ollama_url", client.BaseURL())

	start := time.Now()
	tagsErr := callWithTimeout(r.Context(), cfg.Ollama.Timeout, func(ctx context.Context) error {
		_, err := client.ListModels(ctx)
		return err
	})
	h.recordUpstream(endpointTags, tagsErr, start)
	if tagsErr == nil {
		httputil.WriteJSON(w, http.StatusOK, types.StatusResponse{
			Status:    types.StatusOK,
			Connected: true,
			Message:   msgConnected,
		})
		return
	}
	h.logger.Warn("ollama tags check failed", "request_id", reqID, "error", tagsErr)

	// Any HTTP answer at the root means the server is running. The root
	// check gets its own deadline so a timed-out tags call cannot starve it.
	start = time.Now()
	rootErr := callWithTimeout(r.Context(), cfg.Ollama.Timeout, client.Ping)
	h.recordUpstream(endpointRoot, rootErr, start)
	if rootErr == nil {
		httputil.WriteJSON(w, http.StatusOK, types.StatusResponse{
			Status:    types.StatusOK,
			Connected: true,
			Message:   msgConnectedFallback,
		})
		return
	}

	h.logger.Error("ollama unreachable", "request_id", reqID, "error", tagsErr, "fallback_error", rootErr)
	httputil.WriteJSON(w, http.StatusInternalServerError, types.StatusResponse{
		Status:    types.StatusError,
		Connected: false,
		Message:   msgUnreachable,
		Error:     tagsErr.Error(),
	})
}

// Models handles GET /api/llm/models
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	cfg := h.cfg()

	ctx, cancel := context.WithTimeout(r.Context(), cfg.Ollama.Timeout)
	defer cancel()

	start := time.Now()
	models, err := h.upstream(cfg.Ollama.BaseURL).ListModels(ctx)
	h.recordUpstream(endpointTags, err, start)
	if err != nil {
		h.logger.Error("failed to list models", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, msgModelsFailed, err.Error())
		return
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	httputil.WriteJSON(w, http.StatusOK, types.ModelsResponse{Status: types.StatusOK, Models: names})
}

// Chat handles POST /api/llm/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	cfg := h.cfg()

	req, text, ok := h.readPrompt(w, r, reqID)
	if !ok {
		return
	}

	model := req.Model
	if model == "" {
		model = cfg.Ollama.DefaultModel
	}
	temperature, topP := cfg.Ollama.Temperature, cfg.Ollama.TopP
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if req.TopP != nil {
		topP = *req.TopP
	}

	h.logger.Info("generating response",
		"request_id", reqID,
		"model", model,
		"temperature", temperature,
		"top_p", topP,
		"text_preview", preview(text, 50),
	)

	ctx, cancel := context.WithTimeout(r.Context(), cfg.Ollama.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := h.upstream(cfg.Ollama.BaseURL).Chat(ctx, ollama.ChatRequest{
		Model: model,
		Messages: []ollama.Message{
			{Role: "system", Content: cfg.Ollama.SystemPrompt},
			{Role: "user", Content: text},
		},
		Options: &ollama.Options{
			Temperature: &temperature,
			TopP:        &topP,
			NumPredict:  cfg.Ollama.ChatMaxTokens,
		},
	})
	h.recordUpstream(endpointChat, err, start)
	duration := time.Since(start)

	if err != nil {
		if ollama.IsTimeout(err) {
			h.logger.Warn("chat generation timed out",
				"request_id", reqID,
				"model", model,
				"duration_ms", duration.Milliseconds(),
			)
			httputil.WriteJSON(w, http.StatusOK, types.ChatResponse{Status: types.StatusTimeout, Response: TimeoutText})
			return
		}
		h.logger.Error("chat generation failed", "request_id", reqID, "model", model, "error", err)
		httputil.WriteError(w, reqID, http.StatusInternalServerError, msgChatFailed+err.Error(), "")
		return
	}

	content := resp.Message.Content
	if content == "" {
		content = NoResponseText
	}

	h.logger.Info("response generated",
		"request_id", reqID,
		"model", model,
		"duration_ms", duration.Milliseconds(),
		"response_chars", len([]rune(content)),
	)
	httputil.WriteJSON(w, http.StatusOK, types.ChatResponse{Status: types.StatusOK, Response: content})
}

// TestParameters handles POST /api/llm/test-parameters. Sampling parameters
// are forwarded only when the caller sets them.
func (h *Handler) TestParameters(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	cfg := h.cfg()

	req, text, ok := h.readPrompt(w, r, reqID)
	if !ok {
		return
	}

	model := req.Model
	if model == "" {
		model = cfg.Ollama.DefaultModel
	}
	echo := types.EchoParameters{Model: model, Temperature: "default", TopP: "default"}
	if req.Temperature != nil {
		echo.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		echo.TopP = *req.TopP
	}

	ctx, cancel := context.WithTimeout(r.Context(), cfg.Ollama.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := h.upstream(cfg.Ollama.BaseURL).Generate(ctx, ollama.GenerateRequest{
		Model:  model,
		Prompt: text,
		Options: &ollama.Options{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			NumPredict:  cfg.Ollama.TestMaxTokens,
		},
	})
	h.recordUpstream(endpointGenerate, err, start)
	if err != nil {
		h.logger.Error("parameter test failed", "request_id", reqID, "model", model, "error", err)
		httputil.WriteError(w, reqID, http.StatusInternalServerError, msgTestFailed+err.Error(), "")
		return
	}

	content := resp.Response
	if content == "" {
		content = NoResponseText
	}
	httputil.WriteJSON(w, http.StatusOK, types.TestParametersResponse{
		Status:     types.StatusOK,
		Response:   content,
		Parameters: echo,
	})
}

// readPrompt decodes the body, checks text and runs the content filters.
// It writes the error response itself and returns ok=false when the request
// must not be forwarded.
func (h *Handler) readPrompt(w http.ResponseWriter, r *http.Request, reqID string) (types.ChatRequest, string, bool) {
	var req types.ChatRequest
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return req, "", false
	}
	if req.Text == "" {
		httputil.WriteBadRequestError(w, reqID, msgTextRequired)
		return req, "", false
	}

	text := req.Text
	if h.filterChain == nil {
		return req, text, true
	}

	results, text, blocked := h.filterChain.Run(r.Context(), text)
	if blocked != nil {
		h.logger.Warn("prompt blocked by filter",
			"request_id", reqID,
			"filter", blocked.FilterName,
			"detections", blocked.Detections,
			"score", blocked.Score,
		)
		h.recordFilter(blocked.FilterName, blocked.Action)
		httputil.WriteContentBlockedError(w, reqID, msgBlocked)
		return req, "", false
	}
	for _, fr := range results {
		switch fr.Action {
		case filter.ActionFlag, filter.ActionRedact:
			h.logger.Warn("prompt filtered",
				"request_id", reqID,
				"filter", fr.FilterName,
				"action", string(fr.Action),
				"detections", fr.Detections,
				"score", fr.Score,
			)
			h.recordFilter(fr.FilterName, fr.Action)
		}
	}
	return req, text, true
}

func callWithTimeout(parent context.Context, d time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func (h *Handler) recordUpstream(endpoint string, err error, start time.Time) {
	if h.metrics == nil {
		return
	}
	outcome := telemetry.OutcomeOK
	switch {
	case ollama.IsTimeout(err):
		outcome = telemetry.OutcomeTimeout
	case err != nil:
		outcome = telemetry.OutcomeError
	}
	h.metrics.RecordUpstream(endpoint, outcome, float64(time.Since(start).Milliseconds()))
}

func (h *Handler) recordFilter(name string, action filter.Action) {
	if h.metrics != nil {
		h.metrics.RecordFilterAction(name, string(action))
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
