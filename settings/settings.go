// Package settings reads server settings from the environment.
package settings

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server holds the process-level settings. Command-line flags override them.
type Server struct {
	Host      string `env:"TACTICS_HOST" envDefault:"localhost"`
	Port      int    `env:"TACTICS_PORT" envDefault:"8080"`
	ConfigDir string `env:"TACTICS_CONFIG_DIR" envDefault:"configs"`
	StaticDir string `env:"TACTICS_STATIC_DIR" envDefault:"static"`

	// Rule set used when a connection does not name one
	Ruleset string `env:"TACTICS_RULESET"`

	// Sessions idle longer than this are closed by the cleanup loop
	SessionIdle     time.Duration `env:"TACTICS_SESSION_IDLE" envDefault:"30m"`
	CleanupInterval time.Duration `env:"TACTICS_CLEANUP_INTERVAL" envDefault:"1m"`

	Debug bool `env:"TACTICS_DEBUG"`

	Ngrok Ngrok `envPrefix:"NGROK_"`

	Tracing Tracing `envPrefix:"TACTICS_OTEL_"`
}

// Tracing configures span export. Nothing is exported without an endpoint.
type Tracing struct {
	Enabled     bool    `env:"ENABLED" envDefault:"true"`
	Endpoint    string  `env:"ENDPOINT"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether spans should leave the process
func (t Tracing) Active() bool {
	return t.Enabled && t.Endpoint != ""
}

// Ngrok configures the optional public tunnel
type Ngrok struct {
	Enabled   bool   `env:"ENABLED"`
	AuthToken string `env:"AUTHTOKEN"`
	Domain    string `env:"DOMAIN"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the server settings
func Load() (*Server, error) {
	var s Server
	if err := ParseEnv(&s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values env parsing cannot
func (s *Server) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", s.Port)
	}
	if s.ConfigDir == "" {
		return fmt.Errorf("config directory is required")
	}
	if s.SessionIdle <= 0 {
		return fmt.Errorf("session idle timeout must be positive, got %s", s.SessionIdle)
	}
	if s.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %s", s.CleanupInterval)
	}
	if s.Tracing.SampleRatio < 0 || s.Tracing.SampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be between 0 and 1, got %g", s.Tracing.SampleRatio)
	}
	return nil
}

// Addr is the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
