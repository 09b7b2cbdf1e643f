package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/services/scorebot/internal/client"
	"github.com/fortuna/services/scorebot/internal/hub"
	"github.com/fortuna/services/scorebot/internal/logging"
	"github.com/fortuna/services/scorebot/internal/query"
	"github.com/fortuna/services/scorebot/internal/tracker"
	"github.com/fortuna/services/scorebot/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The /ws route checks Origin against the configured list before upgrading
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Status exposes the poller state reported by /health
type Status interface {
	Mode() tracker.Mode
	LastPoll() time.Time
	Snapshot() *models.Snapshot
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Handler serves the read-only scoreboard API and the announcement socket
type Handler struct {
	league  string
	status  Status
	queries *query.Service
	hub     *hub.Hub
	ctx     context.Context
	logger  *logrus.Entry
}

// NewHandler creates a handler. ctx bounds the lifetime of WebSocket pumps.
func NewHandler(ctx context.Context, league string, status Status, queries *query.Service, h *hub.Hub) *Handler {
	return &Handler{
		league:  league,
		status:  status,
		queries: queries,
		hub:     h,
		ctx:     ctx,
		logger:  logging.WithComponent("http"),
	}
}

// HealthCheck reports the polling state
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.status.Snapshot()

	health := map[string]interface{}{
		"status":     "healthy",
		"service":    "scorebot",
		"league":     h.league,
		"mode":       h.status.Mode(),
		"games":      snap.Len(),
		"fetched_at": snap.FetchedAt,
		"timestamp":  time.Now().UTC(),
	}
	if last := h.status.LastPoll(); !last.IsZero() {
		health["last_poll"] = last
	}
	if h.hub != nil {
		health["ws_clients"] = h.hub.GetClientCount()
	}

	h.respondJSON(w, http.StatusOK, health)
}

// GetGames lists the current snapshot
// Query params: phase (pre, in, post)
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	phase := models.Phase(r.URL.Query().Get("phase"))
	switch phase {
	case "", models.PhasePre, models.PhaseInProgress, models.PhaseFinal:
	default:
		h.respondError(w, http.StatusBadRequest, "phase must be one of pre, in, post", nil)
		return
	}

	games := h.queries.Games(phase)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"league": h.league,
		"games":  games,
		"count":  len(games),
	})
}

// GetGame returns one game by id
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	game, ok := h.queries.Game(gameID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "game not found", nil)
		return
	}
	h.respondJSON(w, http.StatusOK, game)
}

// GetScore answers the same lookup as the score command
// Query params: team
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	h.textLookup(w, r, h.queries.Score)
}

// GetLine answers the same lookup as the line command
// Query params: team
func (h *Handler) GetLine(w http.ResponseWriter, r *http.Request) {
	h.textLookup(w, r, h.queries.Line)
}

// GetWhatsOn lists live games with a network
func (h *Handler) GetWhatsOn(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"text": h.queries.WhatsOn()})
}

// GetCloseGames lists live games within the close-game margin
func (h *Handler) GetCloseGames(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"text": h.queries.CloseGames()})
}

// HandleMetrics returns hub metrics
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.hub.GetMetrics())
}

// HandleWebSocket upgrades the connection and subscribes it to announcements
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	clientID := uuid.New().String()
	c := client.NewClient(clientID, conn, h.hub)
	h.hub.Register(c)

	// Pumps outlive the request
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)
}

// textLookup serves a team lookup. A miss is a 404 carrying the same text
// the chat command would reply with.
func (h *Handler) textLookup(w http.ResponseWriter, r *http.Request, lookup func(string) (string, bool)) {
	team := r.URL.Query().Get("team")
	if team == "" {
		h.respondError(w, http.StatusBadRequest, "team is required", nil)
		return
	}

	text, ok := lookup(team)
	if !ok {
		h.respondError(w, http.StatusNotFound, text, nil)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"team": team, "text": text})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.WithError(err).Error(message)
	}
	h.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
