package ws

import (
	"context"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Client is one open socket of an authenticated user.
type Client struct {
	Conn   *websocket.Conn
	UserID string
}

type directMessage struct {
	userIDs []string
	payload []byte
}

type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte
	direct     chan directMessage
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, 64),
		direct:     make(chan directMessage, 64),
		log:        log.Named("ws"),
	}
}

// BroadcastMessage queues payload for every connected client. The message
// is dropped when the queue is full.
func (h *Hub) BroadcastMessage(payload []byte) {
	select {
	case h.Broadcast <- payload:
	default:
		h.log.Warn("broadcast queue full, message dropped")
	}
}

// SendToUsers queues payload for every socket of the given users.
func (h *Hub) SendToUsers(userIDs []string, payload []byte) {
	if len(userIDs) == 0 {
		return
	}
	select {
	case h.direct <- directMessage{userIDs: userIDs, payload: payload}:
	default:
		h.log.Warn("direct queue full, message dropped", zap.Int("recipients", len(userIDs)))
	}
}

// ConnectedUsers returns the number of distinct users with an open socket.
func (h *Hub) ConnectedUsers() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	seen := make(map[string]struct{})
	for c := range h.clients {
		seen[c.UserID] = struct{}{}
	}
	return len(seen)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Debug("client connected", zap.String("user_id", client.UserID))

		case client := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				h.write(client, message)
			}
			h.mutex.Unlock()

		case msg := <-h.direct:
			targets := make(map[string]struct{}, len(msg.userIDs))
			for _, id := range msg.userIDs {
				targets[id] = struct{}{}
			}
			h.mutex.Lock()
			for client := range h.clients {
				if _, ok := targets[client.UserID]; ok {
					h.write(client, msg.payload)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// write must be called with h.mutex held.
func (h *Hub) write(client *Client, message []byte) {
	if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
		h.log.Debug("dropping client after write error", zap.String("user_id", client.UserID), zap.Error(err))
		client.Conn.Close()
		delete(h.clients, client)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		client.Conn.Close()
		delete(h.clients, client)
	}
}
