package transport

import (
	"chat-relay/cache"
	"chat-relay/chat"
	"chat-relay/message"
	"chat-relay/relay"
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type peer struct {
	conn    *Conn
	session *chat.Session
}

func startRelay(t *testing.T, origins []string) (*relay.Server, string) {
	t.Helper()
	server := relay.NewServer(logs.GetLoggerFromLevel(slog.LevelDebug), relay.Config{
		AllowedOrigins:       origins,
		MaxPayloadBytes:      8192,
		ConnectionBufferSize: 16,
	})
	ctx, cancel := context.WithCancel(context.Background())
	go server.Hub().Run(ctx)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return server, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func connectPeer(t *testing.T, url, username string, clock func() time.Time) peer {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn, err := Dial(context.Background(), log, url, "")
	require.NoError(t, err)

	session := chat.NewSession(log, conn, cache.NewStore(db, log), chat.WithClock(clock))
	require.NoError(t, session.LoadCache())
	require.NoError(t, session.Login(username))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- conn.Listen(ctx, session.Handle) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return peer{conn: conn, session: session}
}

func TestConn_Message_Reaches_Every_Peer_Once(t *testing.T) {
	req := require.New(t)
	server, url := startRelay(t, nil)
	clock := func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	alice := connectPeer(t, url, "alice", clock)
	bob := connectPeer(t, url, "bob", clock)
	req.Eventually(func() bool { return server.Hub().Len() == 2 }, time.Second, 10*time.Millisecond)

	req.NoError(alice.session.Submit("hi"))

	want := []message.ChatMessage{{Text: "hi", Time: "10:00:00", Username: "alice"}}
	for _, p := range []peer{alice, bob} {
		req.Eventually(func() bool { return len(p.session.Messages()) == 1 }, 2*time.Second, 10*time.Millisecond)
		req.Equal(want, p.session.Messages())
	}

	// A replayed echo must not grow the log.
	req.NoError(alice.conn.Emit(message.SendMessage, want[0]))
	req.NoError(alice.session.Submit("bye"))
	req.Eventually(func() bool { return len(bob.session.Messages()) == 2 }, 2*time.Second, 10*time.Millisecond)
	req.Equal("bye", bob.session.Messages()[1].Text)
}

func TestConn_Escaped_Max_Length_Message_Is_Delivered(t *testing.T) {
	req := require.New(t)
	server, url := startRelay(t, nil)
	clock := func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	alice := connectPeer(t, url, "alice", clock)
	bob := connectPeer(t, url, "bob", clock)
	req.Eventually(func() bool { return server.Hub().Len() == 2 }, time.Second, 10*time.Millisecond)

	text := strings.Repeat("<", message.MaxTextLength)
	req.NoError(alice.session.Submit(text))

	for _, p := range []peer{alice, bob} {
		req.Eventually(func() bool { return len(p.session.Messages()) == 1 }, 2*time.Second, 10*time.Millisecond)
		req.Equal(text, p.session.Messages()[0].Text)
	}
	req.Equal(2, server.Hub().Len())

	// The sender is still connected.
	req.NoError(alice.session.Submit("after"))
	req.Eventually(func() bool { return len(bob.session.Messages()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestConn_Ping_Gets_Pong(t *testing.T) {
	req := require.New(t)
	_, url := startRelay(t, nil)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	conn, err := Dial(context.Background(), log, url, "")
	req.NoError(err)

	pong := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- conn.Listen(ctx, func(env message.Envelope) {
			if env.Event == message.Pong {
				pong <- struct{}{}
			}
		})
	}()

	req.NoError(conn.Ping())
	select {
	case <-pong:
	case <-time.After(2 * time.Second):
		req.Fail("no pong received")
	}

	cancel()
	req.NoError(<-done)
}

func TestDial_Disallowed_Origin_Is_Refused(t *testing.T) {
	_, url := startRelay(t, []string{"http://localhost:5173"})
	_, err := Dial(context.Background(), logs.GetLoggerFromLevel(slog.LevelDebug), url, "http://evil.example")
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}
