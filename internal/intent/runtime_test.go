package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/adk/session"

	"github.com/lewisedginton/zapbot/internal/agents"
	"github.com/lewisedginton/zapbot/internal/testsupport"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

func newTestRuntime(t *testing.T, llm model.LLM, sessions session.Service) *ADKRuntime {
	t.Helper()
	paymentAgent, err := agents.NewPaymentAgent(llm, agents.AgentConfig{Logger: logger.NewNopLogger()})
	require.NoError(t, err)

	rt, err := NewADKRuntime(ADKConfig{
		Agent:          paymentAgent,
		SessionService: sessions,
		Logger:         logger.NewNopLogger(),
	})
	require.NoError(t, err)
	return rt
}

func TestNewADKRuntime_Validation(t *testing.T) {
	_, err := NewADKRuntime(ADKConfig{Logger: logger.NewNopLogger()})
	assert.Error(t, err)

	paymentAgent, err := agents.NewPaymentAgent(&testsupport.ScriptedModel{}, agents.AgentConfig{Logger: logger.NewNopLogger()})
	require.NoError(t, err)
	_, err = NewADKRuntime(ADKConfig{Agent: paymentAgent})
	assert.Error(t, err)
}

func TestADKRuntime_PaymentRoundTrip(t *testing.T) {
	llm := &testsupport.ScriptedModel{
		Respond: testsupport.PaymentScript(map[string]any{"recipient": "Alice", "amount": 50}),
	}
	rt := newTestRuntime(t, llm, nil)

	out, err := rt.Run(context.Background(), "Send $50 to Alice")
	require.NoError(t, err)
	assert.Equal(t, "Done. Initiated payment of 50 USD to Alice.", out)

	requests := llm.Requests()
	require.Len(t, requests, 2)

	resp, ok := testsupport.LastFunctionResponse(requests[1])
	require.True(t, ok)
	assert.Equal(t, "make_payment", resp.Name)
	assert.Equal(t, "Initiated payment of 50 USD to Alice.", resp.Response["result"])
}

func TestADKRuntime_CurrencyPassedThrough(t *testing.T) {
	llm := &testsupport.ScriptedModel{
		Respond: testsupport.PaymentScript(map[string]any{"recipient": "Bob", "amount": 12.5, "currency": "EUR"}),
	}
	rt := newTestRuntime(t, llm, nil)

	out, err := rt.Run(context.Background(), "Send 12.50 euros to Bob")
	require.NoError(t, err)
	assert.Equal(t, "Done. Initiated payment of 12.5 EUR to Bob.", out)
}

func TestADKRuntime_TextOnlyReply(t *testing.T) {
	llm := &testsupport.ScriptedModel{
		Respond: func(*model.LLMRequest) (*model.LLMResponse, error) {
			return testsupport.TextResponse("Who would you like to pay?"), nil
		},
	}
	rt := newTestRuntime(t, llm, nil)

	out, err := rt.Run(context.Background(), "I want to send money")
	require.NoError(t, err)
	assert.Equal(t, "Who would you like to pay?", out)

	requests := llm.Requests()
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0].Config.SystemInstruction.Parts[0].Text, "send money")
}

func TestADKRuntime_ModelError(t *testing.T) {
	llm := &testsupport.ScriptedModel{
		Respond: func(*model.LLMRequest) (*model.LLMResponse, error) {
			return nil, errors.New("upstream 503")
		},
	}
	rt := newTestRuntime(t, llm, nil)

	_, err := rt.Run(context.Background(), "Send $50 to Alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 503")
}

func TestADKRuntime_FreshSessionPerRun(t *testing.T) {
	llm := &testsupport.ScriptedModel{
		Respond: func(*model.LLMRequest) (*model.LLMResponse, error) {
			return testsupport.TextResponse("ok"), nil
		},
	}
	sessions := session.InMemoryService()
	rt := newTestRuntime(t, llm, sessions)

	for _, input := range []string{"first", "second"} {
		_, err := rt.Run(context.Background(), input)
		require.NoError(t, err)
	}

	requests := llm.Requests()
	require.Len(t, requests, 2)
	// the second run sees only its own input
	require.Len(t, requests[1].Contents, 1)
	assert.Equal(t, "second", requests[1].Contents[0].Parts[0].Text)

	listed, err := sessions.List(context.Background(), &session.ListRequest{AppName: defaultAppName, UserID: defaultUserID})
	require.NoError(t, err)
	assert.Empty(t, listed.Sessions)
}

func TestHandlerWithADKRuntime(t *testing.T) {
	llm := &testsupport.ScriptedModel{
		Respond: testsupport.PaymentScript(map[string]any{"recipient": "Alice", "amount": 50}),
	}
	h, err := NewHandler(newTestRuntime(t, llm, nil), logger.NewNopLogger(), nil)
	require.NoError(t, err)

	out, err := h.Handle(context.Background(), "Send $50 to Alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Initiated payment of 50 USD to Alice.")
}
