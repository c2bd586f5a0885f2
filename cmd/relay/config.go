package main

import (
	"chat-relay/relay"
	"fmt"
)

type Config struct {
	Host                 string  `env:"HOST"`
	Port                 int     `env:"PORT,default=3001"`
	AllowedOrigins       *string `env:"ALLOWED_ORIGINS"`
	MaxPayloadBytes      int64   `env:"MAX_PAYLOAD_BYTES,default=16384"`
	ConnectionBufferSize int     `env:"CONNECTION_BUFFER_SIZE,default=256"`
	LogLevel             string  `env:"LOG_LEVEL,default=INFO"`
}

// Origins returns the allow-list. Unset means the built-in list, set but
// empty disables the origin check.
func (c Config) Origins() []string {
	if c.AllowedOrigins == nil {
		return relay.DefaultAllowedOrigins
	}
	return relay.ParseOrigins(*c.AllowedOrigins)
}

func (c Config) Relay() relay.Config {
	return relay.Config{
		Address:              fmt.Sprintf("%s:%d", c.Host, c.Port),
		AllowedOrigins:       c.Origins(),
		MaxPayloadBytes:      c.MaxPayloadBytes,
		ConnectionBufferSize: c.ConnectionBufferSize,
	}
}
