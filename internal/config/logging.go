package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" yaml:"level" default:"info"`
	Format string `env:"LOG_FORMAT" yaml:"format" default:"json"`
}

// Validate checks level and format names.
func (l LoggingConfig) Validate() error {
	var result error

	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log_level must be one of [debug, info, warn, error], got %q", l.Level))
	}

	if l.Format != "json" && l.Format != "text" {
		result = multierror.Append(result, fmt.Errorf("log_format must be either 'json' or 'text', got %q", l.Format))
	}

	return result
}
