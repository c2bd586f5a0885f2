package main

import (
	"bufio"
	"chat-relay/cache"
	"chat-relay/chat"
	"chat-relay/message"
	"chat-relay/transport"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cache.Open(config.CachePath, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	conn, err := transport.Dial(ctx, log, config.RelayURL, config.Origin)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	var ui *UI
	session := chat.NewSession(log, conn, store,
		chat.WithAppendHook(func(msg message.ChatMessage) { ui.Render(msg) }),
		chat.WithPongHook(func() { fmt.Fprintln(os.Stdout, "pong") }),
	)
	ui = NewUI(os.Stdout, session, conn.Ping)

	if err := session.LoadCache(); err != nil {
		return err
	}
	ui.Replay()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- conn.Listen(ctx, session.Handle)
		stop()
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	ui.Prompt()
	for {
		select {
		case <-ctx.Done():
			return <-listenErr
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := ui.Execute(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			ui.Prompt()
		}
	}
}
