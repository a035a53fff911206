// Package anthropic provides an Anthropic Claude implementation of the ADK
// model.LLM interface.
package anthropic

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"google.golang.org/adk/model"

	"github.com/lewisedginton/zapbot/pkg/logger"
)

const defaultMaxTokens int64 = 1024

// Config configures a ClaudeModel.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string        // Optional API endpoint override
	MaxTokens  int           // Upper bound when the request sets none
	MaxRetries int           // Client retries; negative keeps the SDK default
	Timeout    time.Duration // Per-request timeout; zero keeps the SDK default
	Logger     logger.Logger
}

// ClaudeModel implements the model.LLM interface for Anthropic Claude models
type ClaudeModel struct {
	client    anthropic.Client
	modelName string
	maxTokens int64
	logger    logger.Logger
}

// NewClaudeModel creates a new Claude model instance
func NewClaudeModel(cfg Config, opts ...option.RequestOption) (*ClaudeModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries >= 0 {
		clientOpts = append(clientOpts, option.WithMaxRetries(cfg.MaxRetries))
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.Timeout))
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &ClaudeModel{
		client:    anthropic.NewClient(append(clientOpts, opts...)...),
		modelName: cfg.Model,
		maxTokens: maxTokens,
		logger: log.WithFields(
			logger.StringField("component", "claude_model"),
			logger.StringField("model", cfg.Model)),
	}, nil
}

// Name returns the name of the model
func (c *ClaudeModel) Name() string {
	return c.modelName
}

// GenerateContent implements the model.LLM interface. Only non-streaming
// generation is supported.
func (c *ClaudeModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		if stream {
			yield(nil, fmt.Errorf("streaming not supported"))
			return
		}
		yield(c.generate(ctx, req))
	}
}

func (c *ClaudeModel) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, fmt.Errorf("failed to transform request: %w", err)
	}

	c.logger.Debug("Sending request to anthropic",
		logger.IntField("messages", len(params.Messages)),
		logger.IntField("tools", len(params.Tools)))

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude api error: %w", err)
	}

	llmResponse, err := transformAnthropicToADK(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to transform response: %w", err)
	}

	c.logger.Debug("Received response from anthropic",
		logger.IntField("content_blocks", len(resp.Content)),
		logger.StringField("stop_reason", string(resp.StopReason)))
	return llmResponse, nil
}

func (c *ClaudeModel) buildParams(req *model.LLMRequest) (anthropic.MessageNewParams, error) {
	messages, err := transformADKToAnthropic(req.Contents)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: c.maxTokens,
		Messages:  messages,
	}

	if system := systemPrompt(req); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if req.Config != nil {
		if req.Config.MaxOutputTokens > 0 {
			params.MaxTokens = int64(req.Config.MaxOutputTokens)
		}
		if req.Config.Temperature != nil {
			params.Temperature = anthropic.Float(float64(*req.Config.Temperature))
		}
		if req.Config.TopP != nil {
			params.TopP = anthropic.Float(float64(*req.Config.TopP))
		}
		if len(req.Config.StopSequences) > 0 {
			params.StopSequences = req.Config.StopSequences
		}
	}

	tools, err := transformToolsToAnthropic(req)
	if err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("failed to transform tools: %w", err)
	}
	params.Tools = tools

	return params, nil
}
