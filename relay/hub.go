// The hub is the central event loop. It owns the live connection set and is
// the only goroutine that reads or mutates it.
package relay

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// reply is a frame addressed to a single client.
type reply struct {
	client  *Client
	message []byte
}

// Hub tracks connected clients and broadcast traffic.
type Hub struct {
	log        *slog.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan reply
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	live       atomic.Int32
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		direct:     make(chan reply),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.live.Add(1)
			h.log.Info("Client connected", "id", client.id, "live", h.live.Load())

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Info("Client disconnected", "id", client.id, "live", h.live.Load())
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.log.Warn("Send queue full, dropping client", "id", client.id)
					h.drop(client)
				}
			}

		case r := <-h.direct:
			if _, ok := h.clients[r.client]; !ok {
				continue
			}
			select {
			case r.client.send <- r.message:
			default:
				h.log.Warn("Send queue full, dropping client", "id", r.client.id)
				h.drop(r.client)
			}
		}
	}
}

// Broadcast queues a frame for every registered client. It returns false
// once the hub has stopped.
func (h *Hub) Broadcast(frame []byte) bool {
	select {
	case h.broadcast <- frame:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) replyTo(client *Client, frame []byte) {
	select {
	case h.direct <- reply{client: client, message: frame}:
	case <-h.done:
	}
}

// Len returns the number of registered clients.
func (h *Hub) Len() int {
	return int(h.live.Load())
}

func (h *Hub) drop(client *Client) {
	close(client.send)
	delete(h.clients, client)
	h.live.Add(-1)
}
