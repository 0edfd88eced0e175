// Package websocket pushes live dashboard updates (metric refreshes,
// triggered alerts) to connected console clients.
package websocket

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cloudmesa/console-backend-go/internal/core/metrics"
	"github.com/cloudmesa/console-backend-go/internal/database/models"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *logrus.Logger

	mu    sync.RWMutex
	stats HubStats
}

// HubStats contains hub statistics.
type HubStats struct {
	ConnectedClients int       `json:"connected_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessagesSent     int64     `json:"messages_sent"`
	LastActivity     time.Time `json:"last_activity"`
}

// NewHub creates a hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		stats:      HubStats{LastActivity: time.Now()},
	}
}

// Run handles client registration and broadcasting. Call in a goroutine.
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastMessage(message)
		case <-ticker.C:
			h.broadcastMessage(Message{
				Type: MessageTypeHeartbeat,
				Data: map[string]interface{}{"connected_clients": h.ClientCount()},
			}.ToJSON())
		}
	}
}

// Broadcast queues a message for all connected clients.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg.ToJSON():
	default:
		h.logger.Warn("WebSocket broadcast channel full, dropping message")
	}
}

// BroadcastMetrics implements the dashboard broadcaster hook.
func (h *Hub) BroadcastMetrics(kind metrics.Kind, data *metrics.MetricsData) {
	h.Broadcast(Message{
		Type: MessageTypeMetricsUpdated,
		Data: map[string]interface{}{
			"kind":         string(kind),
			"metrics":      data.Metrics,
			"last_updated": data.LastUpdated,
		},
	})
}

// BroadcastTriggeredAlert pushes a freshly triggered alert record.
func (h *Hub) BroadcastTriggeredAlert(record *models.TriggeredAlert) {
	h.Broadcast(Message{
		Type: MessageTypeAlertTriggered,
		Data: map[string]interface{}{
			"alert_id":      record.AlertID,
			"alert_name":    record.AlertName,
			"metric":        record.Metric,
			"service":       record.Service,
			"resource_name": record.ResourceName,
			"average_value": record.AverageValue,
			"peak_value":    record.PeakValue,
			"triggered_at":  record.TriggeredAt,
		},
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns a copy of the hub statistics.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.stats.TotalConnections++
	h.stats.ConnectedClients = len(h.clients)
	h.stats.LastActivity = time.Now()
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"client_id":         client.ID,
		"connected_clients": h.ClientCount(),
	}).Info("WebSocket client connected")

	client.send <- Message{
		Type: MessageTypeConnection,
		Data: map[string]interface{}{
			"status":    "connected",
			"client_id": client.ID,
		},
	}.ToJSON()
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.stats.ConnectedClients = len(h.clients)
		h.stats.LastActivity = time.Now()

		h.logger.WithFields(logrus.Fields{
			"client_id":         client.ID,
			"connected_clients": len(h.clients),
		}).Info("WebSocket client disconnected")
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
			h.stats.MessagesSent++
		default:
			// Slow client; drop it.
			delete(h.clients, client)
			close(client.send)
		}
	}
	h.stats.ConnectedClients = len(h.clients)
}
