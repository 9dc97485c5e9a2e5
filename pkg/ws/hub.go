// Package ws is the realtime push channel. The hub keeps the set of
// connected clients and fans broadcast events out to all of them; delivery
// is best-effort and slow clients are dropped rather than awaited.
package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/LeeinUITk17/fwserver/pkg/common"
)

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	logger := common.GetLoggerWith(common.LoggerNameWsHub)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logger.Info("Client registered", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Info("Client unregistered", zap.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// client send buffer full or gone, drop it
					close(client.send)
					delete(h.clients, client)
					logger.Warn("Dropped slow client", zap.Int("clients", len(h.clients)))
				}
			}
		}
	}
}

// Emit broadcasts a named event with a JSON payload. It never blocks: when
// the hub is saturated or not running, the event is dropped and logged.
func (h *Hub) Emit(event string, payload any) {
	logger := common.GetLoggerWith(common.LoggerNameWsHub)

	message, err := json.Marshal(map[string]any{"event": event, "payload": payload})
	if err != nil {
		logger.Error("Failed to marshal event", zap.String("event", event), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- message:
	default:
		logger.Warn("Broadcast buffer full, event dropped", zap.String("event", event))
	}
}
