// Package config defines zapbot's application configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	pkgconfig "github.com/lewisedginton/zapbot/pkg/config"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

// AppConfig holds all application configuration. It is loaded once at startup
// and passed explicitly to the components that need it.
type AppConfig struct {
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"zapbot"`
	Version     string `env:"VERSION" yaml:"version" default:"dev"`
	Environment string `env:"ENVIRONMENT" yaml:"environment" default:"development"`

	LLM       LLMConfig       `yaml:"llm"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Agent     AgentConfig     `yaml:"agent"`
	Logging   LoggingConfig   `yaml:"logging"`
	Chain     ChainConfig     `yaml:"chain"`

	HTTP    pkgconfig.HTTPServerConfig `yaml:"http"`
	Metrics pkgconfig.MetricsConfig    `yaml:"metrics"`
}

// Validate reports every configuration problem at once.
func (c *AppConfig) Validate() error {
	var result error

	if err := c.Logging.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	switch c.Provider() {
	case ProviderClaude:
		if c.Anthropic.APIKey == "" {
			result = multierror.Append(result, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=%s", ProviderClaude))
		}
		if c.Anthropic.MaxTokens <= 0 {
			result = multierror.Append(result, fmt.Errorf("anthropic max_tokens must be greater than 0"))
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			result = multierror.Append(result, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=%s", ProviderOpenAI))
		}
	case ProviderGemini:
		vertex := c.Gemini.Project != "" && c.Gemini.Region != ""
		if c.Gemini.APIKey == "" && !vertex {
			result = multierror.Append(result, fmt.Errorf("GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT/GOOGLE_CLOUD_REGION is required when LLM_PROVIDER=%s", ProviderGemini))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("llm provider must be one of [%s, %s, %s], got %q",
			ProviderClaude, ProviderOpenAI, ProviderGemini, c.LLM.Provider))
	}

	if strings.TrimSpace(c.Agent.Name) == "" {
		result = multierror.Append(result, fmt.Errorf("agent name cannot be empty"))
	}

	if err := c.HTTP.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := c.Chain.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	return result
}

// Provider returns the normalised LLM provider name.
func (c *AppConfig) Provider() string {
	return strings.ToLower(strings.TrimSpace(c.LLM.Provider))
}

// ModelName returns the model configured for the selected provider.
func (c *AppConfig) ModelName() string {
	switch c.Provider() {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderGemini:
		return c.Gemini.Model
	default:
		return c.Anthropic.Model
	}
}

// GetLogLevel returns the parsed logger level
func (c *AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(c.Logging.Level)
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// LogConfig logs the current configuration without secrets.
func (c *AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("version", c.Version),
		logger.StringField("environment", c.Environment),
		logger.StringField("llm_provider", c.Provider()),
		logger.StringField("model", c.ModelName()),
		logger.StringField("agent_name", c.Agent.Name),
		logger.StringField("log_level", c.Logging.Level),
		logger.StringField("log_format", c.Logging.Format),
		logger.IntField("http_port", c.HTTP.Port),
		logger.BoolField("metrics_enabled", c.Metrics.Enabled),
		logger.BoolField("name_resolution_enabled", c.Chain.Enabled()),
	)
}

// Load reads configuration from the optional YAML file and the environment.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := pkgconfig.GetConfig(cfg, path, false); err != nil {
		return nil, err
	}
	return cfg, nil
}
