package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"

	"github.com/lewisedginton/zapbot/pkg/logger"
)

// Config holds configuration for HTTP middleware application.
// Use DefaultConfig() for sensible defaults, then customize as needed.
type Config struct {
	Logger     logger.Logger                   // Request logging and panic reports
	CORS       *CORSConfig                     // nil disables CORS handling
	Security   *secure.Options                 // nil uses the secure package defaults
	Timeout    time.Duration                   // Zero disables the request timeout
	Instrument func(http.Handler) http.Handler // Optional, e.g. metrics

	EnableCompression bool
}

// DefaultConfig returns a production-ready middleware configuration.
func DefaultConfig(log logger.Logger) Config {
	corsConfig := DefaultCORSConfig()
	security := DefaultSecurityOptions(false)
	return Config{
		Logger:            log,
		CORS:              &corsConfig,
		Security:          &security,
		Timeout:           60 * time.Second,
		EnableCompression: true,
	}
}

// ApplyToRouter applies the configured middleware to a Chi router.
// First applied is the outermost layer:
//
//  1. CorrelationID
//  2. Security headers
//  3. RealIP
//  4. Instrument
//  5. Logging
//  6. Recovery
//  7. CORS
//  8. Timeout
//  9. Compression
func ApplyToRouter(router chi.Router, config Config) {
	router.Use(CorrelationID())
	router.Use(Security(config.Security))
	router.Use(middleware.RealIP)

	if config.Instrument != nil {
		router.Use(config.Instrument)
	}

	if config.Logger != nil {
		router.Use(NewHTTPLogger(config.Logger).Middleware)
	}

	router.Use(Recovery(config.Logger))

	if config.CORS != nil {
		router.Use(CORS(*config.CORS))
	}

	if config.Timeout > 0 {
		router.Use(middleware.Timeout(config.Timeout))
	}

	if config.EnableCompression {
		router.Use(middleware.Compress(5))
	}
}
