package config

// MetricsConfig holds metrics collection and exposure settings
type MetricsConfig struct {
	// Enabled registers the intent and HTTP collectors.
	Enabled bool `env:"METRICS_ENABLED" yaml:"enabled" default:"true"`

	// Path is where the HTTP server mounts the Prometheus handler.
	Path string `env:"METRICS_PATH" yaml:"path" default:"/metrics"`
}
