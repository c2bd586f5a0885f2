package errors

import "fmt"

var (
	ErrEmptyText        = fmt.Errorf("message text is empty")
	ErrEmptyUsername    = fmt.Errorf("username is empty")
	ErrNotLoggedIn      = fmt.Errorf("no username has been set")
	ErrOriginNotAllowed = fmt.Errorf("origin is not allowed")
	ErrInvalidMessage   = fmt.Errorf("invalid chat message")
	ErrCorruptCache     = fmt.Errorf("cached message log is corrupt")
	ErrUnknownEvent     = fmt.Errorf("unknown event")
	ErrFrameTooLarge    = fmt.Errorf("frame exceeds the relay limit")
)
