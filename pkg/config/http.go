package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// HTTPServerConfig holds HTTP server settings
type HTTPServerConfig struct {
	Port                int `env:"HTTP_PORT" yaml:"http_port" default:"8080"`
	ReadTimeoutSeconds  int `env:"HTTP_READ_TIMEOUT_SECONDS" yaml:"read_timeout_seconds" default:"15"`
	WriteTimeoutSeconds int `env:"HTTP_WRITE_TIMEOUT_SECONDS" yaml:"write_timeout_seconds" default:"60"`
	IdleTimeoutSeconds  int `env:"HTTP_IDLE_TIMEOUT_SECONDS" yaml:"idle_timeout_seconds" default:"60"`

	// RequestTimeoutSeconds bounds a single intent request, agent round-trips included.
	RequestTimeoutSeconds int `env:"HTTP_REQUEST_TIMEOUT_SECONDS" yaml:"request_timeout_seconds" default:"55"`

	// CORSAllowedOrigins restricts browser callers; empty means the middleware default.
	CORSAllowedOrigins []string `env:"HTTP_CORS_ALLOWED_ORIGINS" yaml:"cors_allowed_origins"`
}

// Validate checks port range and timeout ordering
func (h HTTPServerConfig) Validate() error {
	var result error
	if h.Port < 1 || h.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("http port must be between 1-65535, got %d", h.Port))
	}
	if h.RequestTimeoutSeconds <= 0 {
		result = multierror.Append(result, fmt.Errorf("http request timeout must be positive, got %d", h.RequestTimeoutSeconds))
	}
	if h.WriteTimeoutSeconds > 0 && h.RequestTimeoutSeconds > h.WriteTimeoutSeconds {
		result = multierror.Append(result, fmt.Errorf("http request timeout (%ds) exceeds write timeout (%ds)",
			h.RequestTimeoutSeconds, h.WriteTimeoutSeconds))
	}
	return result
}

// ReadTimeout returns the ReadTimeoutSeconds as a time.Duration
func (h HTTPServerConfig) ReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the WriteTimeoutSeconds as a time.Duration
func (h HTTPServerConfig) WriteTimeout() time.Duration {
	return time.Duration(h.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the IdleTimeoutSeconds as a time.Duration
func (h HTTPServerConfig) IdleTimeout() time.Duration {
	return time.Duration(h.IdleTimeoutSeconds) * time.Second
}

// RequestTimeout returns the RequestTimeoutSeconds as a time.Duration
func (h HTTPServerConfig) RequestTimeout() time.Duration {
	return time.Duration(h.RequestTimeoutSeconds) * time.Second
}
