// Package intent turns free text from a user into a single agent run.
package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lewisedginton/zapbot/pkg/logger"
	"github.com/lewisedginton/zapbot/pkg/metrics"
)

// ErrEmptyInput is returned when the input has no non-whitespace characters.
var ErrEmptyInput = errors.New("input is empty")

// Runtime runs the agent once for input and returns its final text.
type Runtime interface {
	Run(ctx context.Context, input string) (string, error)
}

// Handler forwards user input to a Runtime.
type Handler struct {
	runtime Runtime
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewHandler creates a Handler. m may be nil.
func NewHandler(runtime Runtime, log logger.Logger, m *metrics.Metrics) (*Handler, error) {
	if runtime == nil {
		return nil, fmt.Errorf("runtime is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Handler{
		runtime: runtime,
		log:     log.WithFields(logger.StringField("component", "intent_handler")),
		metrics: m,
	}, nil
}

// Handle runs the agent for input and returns the agent's reply unchanged.
// Runtime errors are wrapped and returned; nothing is retried.
func (h *Handler) Handle(ctx context.Context, input string) (string, error) {
	log := logger.GetLoggerFromContext(ctx, h.log)

	if strings.TrimSpace(input) == "" {
		h.metrics.ObserveIntent(metrics.IntentRejected, 0)
		return "", ErrEmptyInput
	}

	start := time.Now()
	log.Debug("Handling input", logger.IntField("input_length", len(input)))

	output, err := h.runtime.Run(ctx, input)
	elapsed := time.Since(start)
	if err != nil {
		h.metrics.ObserveIntent(metrics.IntentFailed, elapsed)
		log.Error("Agent run failed", logger.ErrorField(err), logger.DurationField("duration", elapsed))
		return "", fmt.Errorf("failed to handle input: %w", err)
	}

	h.metrics.ObserveIntent(metrics.IntentSucceeded, elapsed)
	log.Info("Input handled",
		logger.DurationField("duration", elapsed),
		logger.IntField("output_length", len(output)))
	return output, nil
}
