// Package agents builds the payment agent handed to the ADK runner.
package agents

import (
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/tool"

	"github.com/lewisedginton/zapbot/internal/tools/make_payment"
	"github.com/lewisedginton/zapbot/pkg/logger"
	"github.com/lewisedginton/zapbot/pkg/metrics"
)

// DefaultAgentName is the agent's name when none is configured.
const DefaultAgentName = "Zapbot"

// AgentConfig holds configuration for creating the payment agent
type AgentConfig struct {
	Name            string           // Agent name shown to the runtime (default "Zapbot")
	Description     string           // Agent description
	InstructionFile string           // Optional file overriding the default instructions
	Logger          logger.Logger    // Structured logger instance
	Metrics         *metrics.Metrics // Optional
}

// NewPaymentAgent creates an LLM agent whose only capability is make_payment.
func NewPaymentAgent(llmModel model.LLM, agentConfig AgentConfig) (agent.Agent, error) {
	if llmModel == nil {
		return nil, fmt.Errorf("llm model is required")
	}
	if agentConfig.Logger == nil {
		return nil, fmt.Errorf("logger is required in AgentConfig")
	}

	name := agentConfig.Name
	if name == "" {
		name = DefaultAgentName
	}
	description := agentConfig.Description
	if description == "" {
		description = "Helps users send money from natural language requests"
	}

	log := agentConfig.Logger.WithFields(
		logger.StringField("component", "agent"),
		logger.StringField("agent", name))

	instructions := defaultInstructions
	if agentConfig.InstructionFile != "" {
		instructions = loadInstructionFile(agentConfig.InstructionFile, log)
	}

	paymentTool, err := make_payment.New(make_payment.Config{
		Logger:  agentConfig.Logger,
		Metrics: agentConfig.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s tool: %w", make_payment.Name, err)
	}

	paymentAgent, err := llmagent.New(llmagent.Config{
		Name:        name,
		Model:       llmModel,
		Description: description,
		Instruction: instructions,
		Tools:       []tool.Tool{paymentTool},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	log.Info("Payment agent created", logger.StringField("model", llmModel.Name()))
	return paymentAgent, nil
}
