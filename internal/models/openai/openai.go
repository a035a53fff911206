package openai

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/adk/model"

	"github.com/lewisedginton/zapbot/internal/models/llmutil"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

// Config configures a Model.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string        // Optional API endpoint override
	MaxRetries int           // Client retries; negative keeps the SDK default
	Timeout    time.Duration // Per-request timeout; zero keeps the SDK default
	Logger     logger.Logger
}

// Model implements the model.LLM interface for OpenAI's GPT models.
type Model struct {
	client    openai.Client
	modelName string
	logger    logger.Logger
}

// New creates a new OpenAI model instance.
func New(cfg Config, opts ...option.RequestOption) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
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

	return &Model{
		client:    openai.NewClient(append(clientOpts, opts...)...),
		modelName: cfg.Model,
		logger: log.WithFields(
			logger.StringField("component", "openai_model"),
			logger.StringField("model", cfg.Model)),
	}, nil
}

// Name returns the model name.
func (o *Model) Name() string {
	return o.modelName
}

// GenerateContent generates content using the OpenAI model.
// This implementation only supports non-streaming mode.
func (o *Model) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		if stream {
			yield(nil, fmt.Errorf("streaming not supported"))
			return
		}
		yield(o.generateContentNonStreaming(ctx, req))
	}
}

func (o *Model) generateContentNonStreaming(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	params, err := o.buildParams(req)
	if err != nil {
		return nil, fmt.Errorf("failed to transform request: %w", err)
	}

	o.logger.Debug("Sending request to openai",
		logger.IntField("messages", len(params.Messages)),
		logger.IntField("tools", len(params.Tools)))

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	response, err := transformOpenAIToADK(completion)
	if err != nil {
		return nil, fmt.Errorf("failed to transform response: %w", err)
	}
	return response, nil
}

func (o *Model) buildParams(req *model.LLMRequest) (openai.ChatCompletionNewParams, error) {
	messages, err := transformADKToOpenAI(req.Contents)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	// ADK places the agent instruction in Config.SystemInstruction
	if system := llmutil.SystemInstruction(req); system != "" {
		messages = append([]openai.ChatCompletionMessageParamUnion{openai.SystemMessage(system)}, messages...)
	}

	params := openai.ChatCompletionNewParams{
		Model:    o.modelName,
		Messages: messages,
	}

	if req.Config != nil {
		if req.Config.MaxOutputTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.Config.MaxOutputTokens))
		}
		if req.Config.Temperature != nil {
			params.Temperature = openai.Float(float64(*req.Config.Temperature))
		}
		if req.Config.TopP != nil {
			params.TopP = openai.Float(float64(*req.Config.TopP))
		}
		if len(req.Config.StopSequences) > 0 {
			params.Stop = openai.ChatCompletionNewParamsStopUnion{
				OfStringArray: req.Config.StopSequences,
			}
		}
	}

	tools, err := transformToolsToOpenAI(req)
	if err != nil {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("failed to transform tools: %w", err)
	}
	params.Tools = tools

	return params, nil
}
