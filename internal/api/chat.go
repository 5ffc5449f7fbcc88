package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ananyev/adkchat/internal/agent"
	"github.com/ananyev/adkchat/internal/chart"
	"github.com/ananyev/adkchat/internal/chat"
	"github.com/ananyev/adkchat/internal/domain"
	"github.com/ananyev/adkchat/internal/store"
)

// maxRequestBodySize caps chat request bodies (1MB).
const maxRequestBodySize = 1 << 20

// ChatHandler serves the chat API: query submission, history, chart
// artifacts, and status.
type ChatHandler struct {
	svc     *chat.Service
	charts  *chart.ArtifactCache
	limiter *agent.RateLimiter
	repo    store.Repository
	logger  *slog.Logger
}

// NewChatHandler creates the chat API handler.
func NewChatHandler(svc *chat.Service, charts *chart.ArtifactCache, limiter *agent.RateLimiter, repo store.Repository, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		svc:     svc,
		charts:  charts,
		limiter: limiter,
		repo:    repo,
		logger:  logger,
	}
}

// RegisterRoutes registers the chat API routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.handleChat)
	r.Get("/api/history", h.handleHistory)
	r.Get("/api/transcript", h.handleTranscript)
	r.Get("/api/charts/{id}", h.handleChart)
	r.Get("/api/status", h.handleStatus)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Turns []domain.ChatTurn `json:"turns"`
}

func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(clientKey(r)) {
		Error(w, http.StatusTooManyRequests, "too many requests, slow down")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		Error(w, http.StatusBadRequest, "message cannot be empty")
		return
	}

	turns := h.svc.Submit(r.Context(), message)
	JSON(w, http.StatusOK, chatResponse{Turns: turns})
}

func (h *ChatHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, chatResponse{Turns: h.svc.History().Turns()})
}

// handleTranscript returns recent turns from the durable transcript, which
// survives restarts (unlike the in-memory history shown in the UI).
func (h *ChatHandler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	turns, err := h.repo.RecentTranscript(r.Context(), 200)
	if err != nil {
		h.logger.Error("failed to read transcript", "error", err)
		Error(w, http.StatusInternalServerError, "failed to read transcript")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"turns": turns})
}

func (h *ChatHandler) handleChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	png, ok := h.charts.Get(id)
	if !ok {
		Error(w, http.StatusNotFound, "chart not found")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(png); err != nil {
		h.logger.Debug("failed to write chart response", "chart_id", id, "error", err)
	}
}

func (h *ChatHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	dbOK := h.repo.Ping(r.Context()) == nil
	status := http.StatusOK
	if !dbOK {
		status = http.StatusServiceUnavailable
	}
	JSON(w, status, map[string]interface{}{
		"database": dbOK,
		"turns":    h.svc.History().Len(),
	})
}

// clientKey derives the rate-limit key from the request's client address.
// Behind the RealIP middleware this is the originating IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
