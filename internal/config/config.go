// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server holds the settings for the airband HTTP server.
type Server struct {
	Addr     string `env:"AIRBAND_ADDR" envDefault:":8080"`
	LogLevel string `env:"AIRBAND_LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"AIRBAND_LOG_JSON" envDefault:"false"`

	// RedisAddr enables the Redis session store when non-empty; otherwise
	// sessions live in memory.
	RedisAddr     string `env:"AIRBAND_REDIS_ADDR"`
	RedisPassword string `env:"AIRBAND_REDIS_PASSWORD"`

	// ScenarioDir is where the file graph source reads scenario documents.
	ScenarioDir string `env:"AIRBAND_SCENARIO_DIR" envDefault:"."`
}

// Load parses the server configuration from the environment.
func Load() (*Server, error) {
	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
