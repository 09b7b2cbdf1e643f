package hub

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/services/scorebot/internal/client"
	"github.com/fortuna/services/scorebot/internal/logging"
	"github.com/fortuna/services/scorebot/pkg/models"
)

const broadcastBufferSize = 256

// Hub maintains the set of active clients and fans announcements out to them
type Hub struct {
	league string

	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	broadcast  chan models.AnnouncementUpdate
	register   chan *client.Client
	unregister chan *client.Client
	done       chan struct{}

	// Metrics
	totalConnections int64
	totalMessages    int64
	dropped          int64
	metricsMu        sync.Mutex

	logger *logrus.Entry
}

// NewHub creates a hub for one league's announcements
func NewHub(league string) *Hub {
	return &Hub{
		league:     league,
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan models.AnnouncementUpdate, broadcastBufferSize),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		done:       make(chan struct{}),
		logger:     logging.WithComponent("hub"),
	}
}

// Run starts the hub's main loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("Hub started")
	defer close(h.done)

	go h.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case update := <-h.broadcast:
			h.broadcastUpdate(update)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues an update for every matching client. A full buffer drops it.
func (h *Hub) Broadcast(update models.AnnouncementUpdate) {
	select {
	case h.broadcast <- update:
	default:
		h.metricsMu.Lock()
		h.dropped++
		h.metricsMu.Unlock()
		h.logger.WithField("game_id", update.Announcement.GameID).Warn("Broadcast buffer full, dropping announcement")
	}
}

func (h *Hub) Name() string {
	return "websocket"
}

// Notify queues an announcement for WebSocket subscribers
func (h *Hub) Notify(_ context.Context, a models.Announcement, text string) error {
	h.Broadcast(models.AnnouncementUpdate{
		LeagueKey:    h.league,
		Text:         text,
		Announcement: a,
	})
	return nil
}

func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.clients[c] = true
	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"client_id": c.ID,
		"total":     len(h.clients),
	}).Info("Client connected")
}

func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
		h.logger.WithFields(logrus.Fields{
			"client_id": c.ID,
			"total":     len(h.clients),
		}).Info("Client disconnected")
	}
}

// broadcastUpdate sends an update to all clients whose filter matches
func (h *Hub) broadcastUpdate(update models.AnnouncementUpdate) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := models.ServerMessage{
		Type:      models.MessageTypeAnnouncement,
		Payload:   update,
		Timestamp: time.Now(),
	}

	sent := 0
	for _, c := range clients {
		if !c.MatchesFilter(update) {
			continue
		}

		if c.TrySend(message) {
			sent++
			continue
		}

		// Too slow to keep up
		h.logger.WithField("client_id", c.ID).Warn("Client buffer full, disconnecting")
		go h.Unregister(c)
	}

	if sent > 0 {
		h.metricsMu.Lock()
		h.totalMessages += int64(sent)
		h.metricsMu.Unlock()
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.clientsMu.RLock()
	activeClients := len(h.clients)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     activeClients,
		"total_connections":  h.totalConnections,
		"total_messages":     h.totalMessages,
		"dropped_broadcasts": h.dropped,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.logger.WithField("active_clients", len(h.clients)).Info("Shutting down hub")

	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
}

func (h *Hub) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.logger.WithFields(logrus.Fields(h.GetMetrics())).Debug("Hub metrics")
		}
	}
}
