package cli

import (
	"context"
	"fmt"

	"github.com/lewisedginton/zapbot/internal/agents"
	"github.com/lewisedginton/zapbot/internal/config"
	"github.com/lewisedginton/zapbot/internal/intent"
	"github.com/lewisedginton/zapbot/pkg/logger"
	"github.com/lewisedginton/zapbot/pkg/metrics"
)

// buildHandler assembles model, agent, runtime and handler from cfg.
func buildHandler(ctx context.Context, cfg *config.AppConfig, log logger.Logger, m *metrics.Metrics, newModel ModelFactory) (*intent.Handler, error) {
	llm, err := newModel(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM model: %w", err)
	}

	paymentAgent, err := agents.NewPaymentAgent(llm, agents.AgentConfig{
		Name:            cfg.Agent.Name,
		InstructionFile: cfg.Agent.InstructionFile,
		Logger:          log,
		Metrics:         m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	runtime, err := intent.NewADKRuntime(intent.ADKConfig{
		Agent:   paymentAgent,
		AppName: cfg.Agent.AppName,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent runtime: %w", err)
	}

	return intent.NewHandler(runtime, log, m)
}
