package ws

import (
	"context"
	"encoding/json"
	"sync"

	"timeguesser/internal/domain"
	"timeguesser/internal/logger"
)

// Hub fans persisted scores out to every connected feed client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	logger.Debug("ws client registered", "clients", n)
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Clients whose buffer is full miss
// the message; the caller never blocks.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			logger.Debug("ws client buffer full, dropping message")
		}
	}
}

// ScorePersisted publishes a score event to the feed.
func (h *Hub) ScorePersisted(_ context.Context, ev domain.ScoreEvent) {
	msg, err := json.Marshal(ScorePayload{
		Type:            MsgScore,
		GameID:          ev.GameID,
		CanonicalUserID: ev.CanonicalUserID,
		DisplayName:     ev.DisplayName,
		Score:           ev.Score,
		Verified:        ev.Verified,
	})
	if err != nil {
		logger.Error("ws: marshal score event", "error", err)
		return
	}
	h.Broadcast(msg)
}

// Close drops every connection; each client unregisters itself as its read loop ends.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.Conn.Close()
	}
}
