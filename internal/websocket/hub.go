package websocket

import (
	"context"
	"encoding/json"

	"notelets-be/internal/pkg/logger"
	"notelets-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "notelets_board_events"

// boardMessage is one frame addressed to every client on a board.
type boardMessage struct {
	boardID uuid.UUID
	data    []byte
}

// Hub fans document change notices out to every client watching a board.
// Registration, unregistration and broadcasts all arrive over channels and
// are applied on the Run goroutine, so a slow-client eviction never races a
// concurrent send on the client's channel.
type Hub struct {
	// Registered clients per board (multi-tab: several per board).
	clients map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan boardMessage

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan boardMessage),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			if h.clients[client.BoardID] == nil {
				h.clients[client.BoardID] = make(map[*Client]bool)
			}
			h.clients[client.BoardID][client] = true
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"board_id": client.BoardID})

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.broadcast:
			for client := range h.clients[msg.boardID] {
				select {
				case client.Send <- msg.data:
				default:
					h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"board_id": msg.boardID})
					h.drop(client)
				}
			}
		}
	}
}

// drop removes the client and closes its Send exactly once. A readPump
// unregister arriving after an eviction finds nothing and is a no-op.
func (h *Hub) drop(client *Client) {
	clients, ok := h.clients[client.BoardID]
	if !ok {
		return
	}
	if !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.BoardID)
		h.logger.Info("Hub", "Board feed drained", map[string]interface{}{"board_id": client.BoardID})
	}
}

// BroadcastChange pushes a change notice to every client on the event's
// board. With Redis present the notice goes through the cluster channel and
// comes back via the subscription, so every instance (this one included)
// delivers exactly once.
func (h *Hub) BroadcastChange(event events.DocumentChangedEvent) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "document_changed",
		"data": event.Payload(),
	})

	if h.rdb == nil {
		h.broadcast <- boardMessage{boardID: event.BoardId, data: data}
		return
	}

	payload := map[string]interface{}{
		"board_id": event.BoardId.String(),
		"message":  data,
	}
	jsonPayload, _ := json.Marshal(payload)
	h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the one cluster channel and filters by
	// board locally; board populations are small enough that this beats
	// per-board channels.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			BoardID string          `json:"board_id"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		boardID, err := uuid.Parse(payload.BoardID)
		if err != nil {
			continue
		}

		h.broadcast <- boardMessage{boardID: boardID, data: payload.Message}
	}
}
