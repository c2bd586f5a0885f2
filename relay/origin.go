package relay

import (
	"chat-relay/errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// DefaultAllowedOrigins are admitted when no allow-list is configured.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"https://react-sms-app.vercel.app",
	"https://socket-server-dl73.onrender.com",
}

// OriginPolicy decides which handshakes are admitted.
// An empty allow-list disables the check.
type OriginPolicy struct {
	allowed []string
}

func NewOriginPolicy(origins []string) OriginPolicy {
	return OriginPolicy{allowed: normalize(origins)}
}

// ParseOrigins splits a comma separated allow-list.
func ParseOrigins(raw string) []string {
	return normalize(strings.Split(raw, ","))
}

// Allow returns nil when a handshake declaring origin may be admitted.
// Requests without an origin come from non-browser clients and are trusted.
func (p OriginPolicy) Allow(origin string) error {
	if origin == "" || len(p.allowed) == 0 {
		return nil
	}
	if lo.Contains(p.allowed, normalizeOrigin(origin)) {
		return nil
	}
	return fmt.Errorf("%w: %s", errors.ErrOriginNotAllowed, origin)
}

func normalize(origins []string) []string {
	trimmed := lo.Map(origins, func(o string, _ int) string {
		return normalizeOrigin(o)
	})
	return lo.Uniq(lo.Compact(trimmed))
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
