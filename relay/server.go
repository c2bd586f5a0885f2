// The server wires everything together: upgrade HTTP to WebSocket, create a
// client with a UUID, register it with the hub and spin up the per-connection
// goroutines.
package relay

import (
	"chat-relay/message"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Address              string
	AllowedOrigins       []string
	MaxPayloadBytes      int64
	ConnectionBufferSize int
}

type Server struct {
	log      *slog.Logger
	config   Config
	hub      *Hub
	policy   OriginPolicy
	upgrader websocket.Upgrader
}

// NewServer builds a relay. The read limit is raised to message.MaxFrameBytes
// when configured lower, so every valid message can be relayed.
func NewServer(log *slog.Logger, config Config) *Server {
	if config.MaxPayloadBytes < message.MaxFrameBytes {
		log.Warn("Raising read limit to fit the largest valid message",
			"configured", config.MaxPayloadBytes, "limit", message.MaxFrameBytes)
		config.MaxPayloadBytes = message.MaxFrameBytes
	}
	s := &Server{
		log:    log,
		config: config,
		hub:    NewHub(log),
		policy: NewOriginPolicy(config.AllowedOrigins),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler serves the WebSocket endpoint on /ws and a liveness probe on /healthz.
// The hub must be running for connections to be registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "ok %d\n", s.hub.Len())
	})
	return mux
}

// Run starts the hub and the HTTP server, and blocks until ctx is done or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	httpServer := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Starting relay", "address", s.config.Address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down relay...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if err := s.policy.Allow(r.Header.Get("Origin")); err != nil {
		s.log.Error("Handshake rejected", "error", err, "remote", r.RemoteAddr)
		return false
	}
	return true
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	// The upgrader answers the handshake itself on failure.
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("Upgrade failed", "error", err)
		return
	}

	client := newClient(uuid.NewString(), s.hub, s.log, conn, s.config.ConnectionBufferSize)
	if !client.hub.join(client) {
		_ = conn.Close()
		return
	}

	go client.read(s.config.MaxPayloadBytes)
	go client.write()
}
