package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

func TestNewClaudeModel(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{APIKey: "test-key", Model: "claude-sonnet-4-5-20250929"}},
		{name: "empty api key", cfg: Config{Model: "claude-sonnet-4-5-20250929"}, wantErr: "API key is required"},
		{name: "empty model", cfg: Config{APIKey: "test-key"}, wantErr: "model name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewClaudeModel(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Model, m.Name())
			assert.Equal(t, defaultMaxTokens, m.maxTokens)
		})
	}
}

func TestClaudeModel_StreamingNotSupported(t *testing.T) {
	m, err := NewClaudeModel(Config{APIKey: "test-key", Model: "claude-sonnet-4-5-20250929"})
	require.NoError(t, err)

	for resp, err := range m.GenerateContent(context.Background(), userRequest("hi"), true) {
		assert.Nil(t, resp)
		assert.Error(t, err)
	}
}

func TestClaudeModel_GenerateContent(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": [
				{"type": "text", "text": "Sending now."},
				{"type": "tool_use", "id": "toolu_1", "name": "make_payment", "input": {"recipient": "Alice", "amount": 50}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 12, "output_tokens": 8}
		}`)
	}))
	defer srv.Close()

	m, err := NewClaudeModel(Config{
		APIKey:     "test-key",
		Model:      "claude-sonnet-4-5-20250929",
		BaseURL:    srv.URL + "/",
		MaxTokens:  256,
		MaxRetries: 0,
	})
	require.NoError(t, err)

	req := userRequest("Send $50 to Alice")
	req.Config = &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText("You help users send money.", genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{paymentDeclaration()}}},
	}

	var got *model.LLMResponse
	for resp, err := range m.GenerateContent(context.Background(), req, false) {
		require.NoError(t, err)
		got = resp
	}
	require.NotNil(t, got)

	assert.Equal(t, "claude-sonnet-4-5-20250929", captured["model"])
	assert.EqualValues(t, 256, captured["max_tokens"])
	system := captured["system"].([]any)
	assert.Equal(t, "You help users send money.", system[0].(map[string]any)["text"])
	tools := captured["tools"].([]any)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "make_payment", tool["name"])
	inputSchema := tool["input_schema"].(map[string]any)
	assert.Equal(t, "object", inputSchema["type"])
	assert.ElementsMatch(t, []any{"recipient", "amount"}, inputSchema["required"])

	require.Len(t, got.Content.Parts, 2)
	assert.Equal(t, "Sending now.", got.Content.Parts[0].Text)
	call := got.Content.Parts[1].FunctionCall
	require.NotNil(t, call)
	assert.Equal(t, "toolu_1", call.ID)
	assert.Equal(t, "make_payment", call.Name)
	assert.Equal(t, "Alice", call.Args["recipient"])
	assert.EqualValues(t, 50, call.Args["amount"])
	assert.Equal(t, genai.FinishReasonStop, got.FinishReason)
	assert.EqualValues(t, 20, got.UsageMetadata.TotalTokenCount)
}

func TestTransformADKToAnthropic(t *testing.T) {
	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: "ignored here"}}},
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: "Pay Alice 50"}}},
		{Role: genai.RoleModel, Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{
			ID: "toolu_1", Name: "make_payment", Args: map[string]any{"recipient": "Alice", "amount": 50.0},
		}}}},
		{Role: genai.RoleUser, Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
			ID: "toolu_1", Name: "make_payment", Response: map[string]any{"result": "Initiated payment of 50 USD to Alice."},
		}}}},
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: "thanks"}}},
	}

	messages, err := transformADKToAnthropic(contents)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, anthropic.MessageParamRoleUser, messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, messages[1].Role)
	require.NotNil(t, messages[1].Content[0].OfToolUse)
	assert.Equal(t, "toolu_1", messages[1].Content[0].OfToolUse.ID)

	// tool result and follow-up text share one user turn
	assert.Equal(t, anthropic.MessageParamRoleUser, messages[2].Role)
	require.Len(t, messages[2].Content, 2)
	result := messages[2].Content[0].OfToolResult
	require.NotNil(t, result)
	assert.Equal(t, "toolu_1", result.ToolUseID)
	require.NotEmpty(t, result.Content)
	assert.Equal(t, "Initiated payment of 50 USD to Alice.", result.Content[0].OfText.Text)
}

func TestTransformADKToAnthropic_Empty(t *testing.T) {
	_, err := transformADKToAnthropic(nil)
	assert.Error(t, err)
}

func TestSystemPrompt(t *testing.T) {
	req := &model.LLMRequest{
		Contents: []*genai.Content{{Role: "system", Parts: []*genai.Part{{Text: "Inline rule."}}}},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("Base rule.", genai.RoleUser),
		},
	}
	assert.Equal(t, "Base rule.\n\nInline rule.", systemPrompt(req))
}

func TestMapStopReason(t *testing.T) {
	assert.Equal(t, genai.FinishReasonStop, mapStopReason(anthropic.StopReasonEndTurn))
	assert.Equal(t, genai.FinishReasonStop, mapStopReason(anthropic.StopReasonToolUse))
	assert.Equal(t, genai.FinishReasonMaxTokens, mapStopReason(anthropic.StopReasonMaxTokens))
	assert.Equal(t, genai.FinishReasonOther, mapStopReason(anthropic.StopReason("refusal")))
}

func userRequest(text string) *model.LLMRequest {
	return &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
	}
}

func paymentDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "make_payment",
		Description: "Initiate a payment",
		ParametersJsonSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"recipient": {Type: "string"},
				"amount":    {Type: "number"},
				"currency":  {Type: "string"},
			},
			Required: []string{"recipient", "amount"},
		},
	}
}
