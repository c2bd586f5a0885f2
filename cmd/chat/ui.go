package main

import (
	"chat-relay/chat"
	"chat-relay/errors"
	"chat-relay/message"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type command struct {
	name        string
	description string
}

var commands = []command{
	{"/help", "Shows this commands list."},
	{"/clear", "Deletes the local message history."},
	{"/logout", "Forgets your username."},
	{"/ping", "Checks that the relay answers."},
	{"/quit", "Disconnects and exits."},
}

// UI renders the session to a terminal and turns input lines into actions.
type UI struct {
	out     io.Writer
	session *chat.Session
	ping    func() error
}

func NewUI(out io.Writer, session *chat.Session, ping func() error) *UI {
	return &UI{out: out, session: session, ping: ping}
}

func (u *UI) Prompt() {
	if u.session.State() == chat.Unauthenticated {
		fmt.Fprint(u.out, "Username: ")
	}
}

// Render prints one message. Own messages use a fixed color, others are
// colored by username.
func (u *UI) Render(msg message.ChatMessage) {
	author := color.HEX(chat.UserColor(msg.Username)).Sprint(msg.Username)
	if u.session.IsOwn(msg) {
		author = color.HEX(chat.OwnColor).Sprint(color.OpBold.Sprint(msg.Username))
	}
	fmt.Fprintf(u.out, "%s %s\n  %s\n", author, color.FgDarkGray.Sprint(msg.Time), msg.Text)
}

func (u *UI) Replay() {
	for _, msg := range u.session.Messages() {
		u.Render(msg)
	}
}

func (u *UI) Help() {
	table := tablewriter.NewWriter(u.out)
	table.SetHeader([]string{"Command", "Description"})
	for _, c := range commands {
		table.Append([]string{c.name, c.description})
	}
	table.Render()
}

// Execute handles one input line and reports whether the user asked to quit.
func (u *UI) Execute(line string) (bool, error) {
	if u.session.State() == chat.Unauthenticated {
		if err := u.session.Login(line); err != nil {
			return false, err
		}
		fmt.Fprintf(u.out, "Welcome %s! Type /help to list commands.\n", u.session.Username())
		return false, nil
	}

	switch strings.TrimSpace(line) {
	case "/help":
		u.Help()
	case "/clear":
		if err := u.session.Clear(); err != nil {
			return false, err
		}
		fmt.Fprintln(u.out, "History cleared.")
	case "/logout":
		u.session.Logout()
	case "/ping":
		return false, u.ping()
	case "/quit":
		return true, nil
	default:
		if err := u.session.Submit(line); err != nil && !stderrors.Is(err, errors.ErrEmptyText) {
			return false, err
		}
	}
	return false, nil
}
