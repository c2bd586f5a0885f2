package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RelayURL  string `envconfig:"RELAY_URL" default:"ws://localhost:3001/ws"`
	Origin    string `envconfig:"CHAT_ORIGIN"`
	CachePath string `envconfig:"CHAT_CACHE_PATH" default:".chat-cache"`
	LogLevel  string `envconfig:"CHAT_LOG_LEVEL" default:"WARN"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}
