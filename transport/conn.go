// Package transport is the client side of the relay connection. A Conn is
// created explicitly, owned by its caller and closed once.
package transport

import (
	"chat-relay/message"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Handler receives every frame read by Listen.
type Handler func(env message.Envelope)

type Conn struct {
	log    *slog.Logger
	socket *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dial connects to the relay at url. origin is sent as the Origin header
// when non-empty.
func Dial(ctx context.Context, log *slog.Logger, url, origin string) (*Conn, error) {
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	socket, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("could not connect to %s (status %d): %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("could not connect to %s: %w", url, err)
	}
	log.Debug("Connected to relay", "url", url)
	return &Conn{log: log, socket: socket}, nil
}

// Emit sends one event. It does not wait for any acknowledgment.
func (c *Conn) Emit(event message.Event, payload any) error {
	frame, err := message.Encode(event, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.socket.WriteMessage(websocket.TextMessage, frame)
}

func (c *Conn) Ping() error {
	return c.Emit(message.Ping, nil)
}

// Listen reads frames and hands them to handler until the connection closes
// or ctx is done. A normal close returns nil.
func (c *Conn) Listen(ctx context.Context, handler Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	for {
		_, frame, err := c.socket.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || isClosed(err) {
				return nil
			}
			return fmt.Errorf("relay connection lost: %w", err)
		}
		env, err := message.DecodeEnvelope(frame)
		if err != nil {
			c.log.Warn("Dropping frame from relay", "error", err)
			continue
		}
		handler(env)
	}
}

// Close says goodbye to the relay and releases the socket.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.socket.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.writeMu.Unlock()
		err = c.socket.Close()
	})
	return err
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, net.ErrClosed)
}
