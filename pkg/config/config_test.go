package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nestedConfig struct {
	Model   string        `env:"ZBT_MODEL" yaml:"model" default:"claude-sonnet"`
	Timeout time.Duration `env:"ZBT_TIMEOUT" yaml:"timeout" default:"30s"`
}

type testConfig struct {
	Nested   nestedConfig `yaml:"nested"`
	APIKey   string       `env:"ZBT_API_KEY" yaml:"api_key" required:"true"`
	Debug    bool         `env:"ZBT_DEBUG" yaml:"debug" default:"true"`
	Port     int          `env:"ZBT_PORT" yaml:"port" default:"8080"`
	Ratio    float64      `env:"ZBT_RATIO" yaml:"ratio" default:"0.5"`
	Features []string     `env:"ZBT_FEATURES" yaml:"features"`
}

func (c testConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port out of range")
	}
	return nil
}

func TestGetConfigFromEnvVars(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
		want    testConfig
		wantErr bool
	}{
		{
			name:    "defaults with required field",
			envVars: map[string]string{"ZBT_API_KEY": "k"},
			want: testConfig{
				Nested: nestedConfig{Model: "claude-sonnet", Timeout: 30 * time.Second},
				APIKey: "k",
				Debug:  true,
				Port:   8080,
				Ratio:  0.5,
			},
		},
		{
			name: "environment overrides",
			envVars: map[string]string{
				"ZBT_API_KEY":  "k",
				"ZBT_MODEL":    "gpt-4o",
				"ZBT_TIMEOUT":  "2m",
				"ZBT_DEBUG":    "false",
				"ZBT_PORT":     "3000",
				"ZBT_RATIO":    "0.25",
				"ZBT_FEATURES": "a, b,c",
			},
			want: testConfig{
				Nested:   nestedConfig{Model: "gpt-4o", Timeout: 2 * time.Minute},
				APIKey:   "k",
				Debug:    false,
				Port:     3000,
				Ratio:    0.25,
				Features: []string{"a", "b", "c"},
			},
		},
		{
			name:    "missing required field",
			envVars: map[string]string{},
			wantErr: true,
		},
		{
			name:    "unparseable int",
			envVars: map[string]string{"ZBT_API_KEY": "k", "ZBT_PORT": "eighty"},
			wantErr: true,
		},
		{
			name:    "validator rejects",
			envVars: map[string]string{"ZBT_API_KEY": "k", "ZBT_PORT": "99999"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range []string{"ZBT_API_KEY", "ZBT_MODEL", "ZBT_TIMEOUT", "ZBT_DEBUG", "ZBT_PORT", "ZBT_RATIO", "ZBT_FEATURES"} {
				t.Setenv(k, "")
			}
			for k, v := range tc.envVars {
				t.Setenv(k, v)
			}

			var got testConfig
			err := GetConfigFromEnvVars(&got)

			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetConfigWithEnvInterpolation(t *testing.T) {
	yamlContent := `
nested:
  model: from-file
api_key: ${ZBT_TEST_SECRET}
features:
  - ${ZBT_TEST_FEATURE}
  - static
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	for _, k := range []string{"ZBT_API_KEY", "ZBT_MODEL", "ZBT_TIMEOUT", "ZBT_DEBUG", "ZBT_PORT", "ZBT_RATIO", "ZBT_FEATURES"} {
		t.Setenv(k, "")
	}
	t.Setenv("ZBT_TEST_SECRET", "secret-from-env")
	t.Setenv("ZBT_TEST_FEATURE", "dynamic")

	var cfg testConfig
	require.NoError(t, GetConfig(&cfg, path, false))

	assert.Equal(t, "secret-from-env", cfg.APIKey)
	assert.Equal(t, "from-file", cfg.Nested.Model)
	assert.Equal(t, []string{"dynamic", "static"}, cfg.Features)
	assert.Equal(t, 8080, cfg.Port)
}

func TestGetConfigMissingFile(t *testing.T) {
	t.Setenv("ZBT_API_KEY", "k")

	var cfg testConfig
	assert.Error(t, GetConfig(&cfg, "/nonexistent/config.yaml", false))

	var fallback testConfig
	require.NoError(t, GetConfig(&fallback, "/nonexistent/config.yaml", true))
	assert.Equal(t, "k", fallback.APIKey)
}

func TestHTTPServerConfig(t *testing.T) {
	cfg := HTTPServerConfig{
		Port:                  8080,
		ReadTimeoutSeconds:    30,
		WriteTimeoutSeconds:   60,
		IdleTimeoutSeconds:    120,
		RequestTimeoutSeconds: 45,
	}

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "30s", cfg.ReadTimeout().String())
	assert.Equal(t, "1m0s", cfg.WriteTimeout().String())
	assert.Equal(t, "2m0s", cfg.IdleTimeout().String())
	assert.Equal(t, "45s", cfg.RequestTimeout().String())

	cfg.RequestTimeoutSeconds = 90
	assert.Error(t, cfg.Validate())

	cfg.RequestTimeoutSeconds = 10
	cfg.Port = 0
	assert.Error(t, cfg.Validate())
}
