// Package models selects the LLM backing the payment agent.
package models

import (
	"context"
	"fmt"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"github.com/lewisedginton/zapbot/internal/config"
	"github.com/lewisedginton/zapbot/internal/models/anthropic"
	"github.com/lewisedginton/zapbot/internal/models/openai"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

// New creates an LLM model instance based on the configured provider
func New(ctx context.Context, cfg *config.AppConfig, log logger.Logger) (model.LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	switch provider := cfg.Provider(); provider {
	case config.ProviderClaude:
		log.Info("Initializing Claude model", logger.StringField("model", cfg.Anthropic.Model))
		return anthropic.NewClaudeModel(anthropic.Config{
			APIKey:     cfg.Anthropic.APIKey,
			Model:      cfg.Anthropic.Model,
			BaseURL:    cfg.Anthropic.APIBaseURL,
			MaxTokens:  cfg.Anthropic.MaxTokens,
			MaxRetries: cfg.Anthropic.MaxRetries,
			Timeout:    cfg.Anthropic.Timeout,
			Logger:     log,
		})

	case config.ProviderGemini:
		log.Info("Initializing Gemini model", logger.StringField("model", cfg.Gemini.Model))
		return gemini.NewModel(ctx, cfg.Gemini.Model, geminiClientConfig(cfg.Gemini, log))

	case config.ProviderOpenAI:
		log.Info("Initializing OpenAI model", logger.StringField("model", cfg.OpenAI.Model))
		return openai.New(openai.Config{
			APIKey:     cfg.OpenAI.APIKey,
			Model:      cfg.OpenAI.Model,
			BaseURL:    cfg.OpenAI.APIBaseURL,
			MaxRetries: cfg.OpenAI.MaxRetries,
			Timeout:    cfg.OpenAI.Timeout,
			Logger:     log,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// geminiClientConfig uses the Vertex AI backend when a project and region
// are both set, and the Gemini API key otherwise.
func geminiClientConfig(cfg config.GeminiConfig, log logger.Logger) *genai.ClientConfig {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Project != "" && cfg.Region != "" {
		clientConfig.APIKey = ""
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.Project
		clientConfig.Location = cfg.Region
		log.Info("Using Vertex AI backend",
			logger.StringField("project", cfg.Project),
			logger.StringField("region", cfg.Region))
	}
	return clientConfig
}
