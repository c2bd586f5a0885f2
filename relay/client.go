// The read pump listens to frames from the peer and pushes them into the hub.
// The write pump drains the client's send queue back to the peer.
// Separating read and write avoids head-of-line blocking when a peer is slow.
package relay

import (
	"chat-relay/errors"
	"chat-relay/message"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client represents a single WebSocket connection.
type Client struct {
	id     string
	hub    *Hub
	log    *slog.Logger
	socket *websocket.Conn
	send   chan []byte
}

func newClient(id string, hub *Hub, log *slog.Logger, socket *websocket.Conn, bufferSize int) *Client {
	return &Client{
		id:     id,
		hub:    hub,
		log:    log.With("client", id),
		socket: socket,
		send:   make(chan []byte, bufferSize),
	}
}

func (c *Client) read(readLimit int64) {
	defer func() {
		c.hub.leave(c)
		_ = c.socket.Close()
	}()

	c.socket.SetReadLimit(readLimit)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.socket.ReadMessage()
		if err != nil {
			if stderrors.Is(err, websocket.ErrReadLimit) {
				c.log.Warn("Frame exceeds read limit, closing", "limit", readLimit)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Unexpected close", "error", err)
			}
			return
		}
		if err := c.handle(frame); err != nil {
			c.log.Warn("Dropping frame", "error", err)
		}
	}
}

func (c *Client) handle(frame []byte) error {
	env, err := message.DecodeEnvelope(frame)
	if err != nil {
		return err
	}
	switch env.Event {
	case message.SendMessage:
		msg, err := message.Decode(env.Data)
		if err != nil {
			return err
		}
		c.log.Debug("Message received", "username", msg.Username, "time", msg.Time)
		out, err := message.Forward(message.ReceiveMessage, env.Data)
		if err != nil {
			return err
		}
		c.hub.Broadcast(out)
	case message.Ping:
		out, err := message.Encode(message.Pong, nil)
		if err != nil {
			return err
		}
		c.hub.replyTo(c, out)
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownEvent, env.Event)
	}
	return nil
}

func (c *Client) write() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
