package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"

	"github.com/lewisedginton/zapbot/internal/config"
	"github.com/lewisedginton/zapbot/internal/intent"
	"github.com/lewisedginton/zapbot/internal/testsupport"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("AGENT_INSTRUCTION_FILE", filepath.Join(t.TempDir(), "missing.md"))
	t.Setenv("LOG_LEVEL", "error")
}

func scriptedFactory(llm *testsupport.ScriptedModel) ModelFactory {
	return func(context.Context, *config.AppConfig, logger.Logger) (model.LLM, error) {
		return llm, nil
	}
}

func runApp(t *testing.T, stdin string, llm *testsupport.ScriptedModel, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(Options{
		Stdin:    strings.NewReader(stdin),
		Stdout:   &stdout,
		Stderr:   &stderr,
		NewModel: scriptedFactory(llm),
	})
	err := app.RunContext(context.Background(), append([]string{"zapbot"}, args...))
	return stdout.String(), err
}

func paymentModel() *testsupport.ScriptedModel {
	return &testsupport.ScriptedModel{
		Respond: testsupport.PaymentScript(map[string]any{"recipient": "Alice", "amount": 50}),
	}
}

func TestAsk_FromArgs(t *testing.T) {
	setEnv(t)

	out, err := runApp(t, "", paymentModel(), "ask", "Send", "$50", "to", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Done. Initiated payment of 50 USD to Alice.\n", out)
}

func TestAsk_FromStdin(t *testing.T) {
	setEnv(t)

	llm := paymentModel()
	out, err := runApp(t, "Send $50 to Alice\r\nignored second line\n", llm)
	require.NoError(t, err)
	assert.Equal(t, prompt+"Done. Initiated payment of 50 USD to Alice.\n", out)

	requests := llm.Requests()
	require.NotEmpty(t, requests)
	assert.Equal(t, "Send $50 to Alice", requests[0].Contents[0].Parts[0].Text)
}

func TestAsk_EmptyInput(t *testing.T) {
	setEnv(t)

	llm := paymentModel()
	out, err := runApp(t, "\n", llm)
	require.Error(t, err)
	assert.ErrorIs(t, err, intent.ErrEmptyInput)
	assert.Equal(t, prompt, out)
	assert.Empty(t, llm.Requests())
}

func TestAsk_MissingAPIKey(t *testing.T) {
	setEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := runApp(t, "", paymentModel(), "ask", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestConfigValidate(t *testing.T) {
	setEnv(t)

	out, err := runApp(t, "", paymentModel(), "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	_, err = runApp(t, "", paymentModel(), "config", "validate")
	assert.Error(t, err)
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Send $50 to Alice\n", want: "Send $50 to Alice"},
		{in: "no newline", want: "no newline"},
		{in: "windows\r\n", want: "windows"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		got, err := readLine(strings.NewReader(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
