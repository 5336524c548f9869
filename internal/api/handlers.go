package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/varsilias/stockscope/internal/buildinfo"
	"github.com/varsilias/stockscope/internal/chat"
	"github.com/varsilias/stockscope/internal/history"
	"github.com/varsilias/stockscope/internal/quote"
	"github.com/varsilias/stockscope/internal/relay"
	"github.com/varsilias/stockscope/internal/session"
	"github.com/varsilias/stockscope/internal/stock"
	"github.com/varsilias/stockscope/pkg/types"
	"github.com/varsilias/stockscope/pkg/utils"
)

type Handlers struct {
	log      *slog.Logger
	chat     *chat.Controller
	sessions *session.Store
	registry *relay.Registry
	quotes   *quote.Client
	store    *history.Store
}

func NewHandlers(log *slog.Logger, chatCtrl *chat.Controller, sessions *session.Store, registry *relay.Registry, quotes *quote.Client, store *history.Store) *Handlers {
	return &Handlers{
		log:      log,
		chat:     chatCtrl,
		sessions: sessions,
		registry: registry,
		quotes:   quotes,
		store:    store,
	}
}

// Health is a basic liveness endpoint.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"status":    true,
		"message":   "stockscope",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]any{
		"version":  buildinfo.Version,
		"commit":   buildinfo.Commit,
		"built_at": buildinfo.BuiltAt,
	})
}

// Analyze POST /api/analyze: starts a streamed analysis for a ticker.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StockCode string `json:"stock_code"`
		APIKey    string `json:"api_key"`
		APIURL    string `json:"api_url"`
		Model     string `json:"model"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if req.StockCode == "" || req.APIKey == "" || req.APIURL == "" || req.Model == "" {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "stock_code, api_key, api_url and model are required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	h.chat.Analyze(r.Context(), w, req.SessionID, stock.Parse(req.StockCode), chat.Upstream{
		Endpoint: req.APIURL,
		APIKey:   req.APIKey,
		Model:    req.Model,
	})
}

// Chat POST /api/chat: streams one follow-up turn on a session.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
		APIKey    string `json:"api_key"`
		APIURL    string `json:"api_url"`
		Model     string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if req.Message == "" || req.APIKey == "" || req.APIURL == "" || req.Model == "" {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "message, api_key, api_url and model are required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	h.chat.Chat(r.Context(), w, req.SessionID, req.Message, chat.Upstream{
		Endpoint: req.APIURL,
		APIKey:   req.APIKey,
		Model:    req.Model,
	})
}

// StreamSnapshot GET /api/stream/snapshot?session_id=...: the current
// partial render of a live stream, for clients repainting after a
// reconnect.
func (h *Handlers) StreamSnapshot(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("session_id")
	if sid == "" {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "missing session_id"})
		return
	}
	state, ok := h.registry.Snapshot(sid)
	if !ok {
		utils.JSON(w, http.StatusOK, relay.State{})
		return
	}
	utils.JSON(w, http.StatusOK, state)
}

// NewSession POST /api/session/new: a fresh empty session.
func (h *Handlers) NewSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	h.sessions.Get(id).Reset("")
	utils.JSON(w, http.StatusOK, map[string]any{"session_id": id})
}

// LoadHistory POST /api/session/load: rebinds a session to a saved
// analysis so follow-up chat continues from that record.
func (h *Handlers) LoadHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		HistoryID int64  `json:"history_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if req.SessionID == "" || req.HistoryID == 0 {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "session_id and history_id are required"})
		return
	}
	rec, err := h.store.Get(r.Context(), req.HistoryID)
	if errors.Is(err, history.ErrNotFound) {
		utils.JSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
		return
	}
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	sess := h.sessions.Get(req.SessionID)
	sess.Reset(rec.StockCode)
	sess.Append(types.RoleAssistant, rec.Content)
	utils.JSON(w, http.StatusOK, map[string]any{
		"session_id": req.SessionID,
		"stock_code": rec.StockCode,
	})
}

// ListHistory GET /api/history
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.List(r.Context())
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	utils.JSON(w, http.StatusOK, recs)
}

// SaveHistory POST /api/history: manual save, mirroring the
// automatic one done on analysis completion.
func (h *Handlers) SaveHistory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StockCode string `json:"stock_code"`
		StockName string `json:"stock_name"`
		Content   string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if req.StockCode == "" || req.Content == "" {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "stock_code and content are required"})
		return
	}
	id, err := h.store.Append(r.Context(), req.StockCode, req.StockName, req.Content)
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{"id": id})
}

// DeleteHistory DELETE /api/history/{id}: a single record, or "all".
func (h *Handlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if strings.EqualFold(raw, "all") {
		if err := h.store.DeleteAll(r.Context()); err != nil {
			utils.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "invalid id"})
		return
	}
	switch err := h.store.Delete(r.Context(), id); {
	case errors.Is(err, history.ErrNotFound):
		utils.JSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	case err != nil:
		utils.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	default:
		utils.JSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// StockQuote GET /api/stock/quote?code=: normalized code plus the
// latest snapshot.
func (h *Handlers) StockQuote(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("code")
	if raw == "" {
		utils.JSON(w, http.StatusBadRequest, map[string]any{"error": "missing code"})
		return
	}
	code := stock.Parse(raw)
	snap, err := h.quotes.Snapshot(r.Context(), code)
	if err != nil {
		utils.JSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]any{
		"code":   code.Display(),
		"market": code.MarketName(),
		"quote":  snap,
	})
}
