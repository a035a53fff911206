// Package testsupport holds fakes shared by package tests.
package testsupport

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// ScriptedModel is a model.LLM whose replies are computed by Respond.
// Every request is recorded.
type ScriptedModel struct {
	Respond func(req *model.LLMRequest) (*model.LLMResponse, error)

	mu       sync.Mutex
	requests []*model.LLMRequest
}

// Name implements model.LLM.
func (m *ScriptedModel) Name() string { return "scripted-model" }

// GenerateContent implements model.LLM.
func (m *ScriptedModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	return func(yield func(*model.LLMResponse, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		yield(m.Respond(req))
	}
}

// Requests returns the requests seen so far.
func (m *ScriptedModel) Requests() []*model.LLMRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.LLMRequest(nil), m.requests...)
}

// TextResponse is a final model turn containing only text.
func TextResponse(text string) *model.LLMResponse {
	return &model.LLMResponse{
		Content:      genai.NewContentFromText(text, genai.RoleModel),
		TurnComplete: true,
	}
}

// FunctionCallResponse is a model turn asking the runtime to call a tool.
func FunctionCallResponse(id, name string, args map[string]any) *model.LLMResponse {
	return &model.LLMResponse{
		Content: &genai.Content{
			Role:  genai.RoleModel,
			Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{ID: id, Name: name, Args: args}}},
		},
		TurnComplete: true,
	}
}

// LastFunctionResponse returns the most recent tool result in req, if any.
func LastFunctionResponse(req *model.LLMRequest) (*genai.FunctionResponse, bool) {
	for i := len(req.Contents) - 1; i >= 0; i-- {
		content := req.Contents[i]
		if content == nil {
			continue
		}
		for _, part := range content.Parts {
			if part != nil && part.FunctionResponse != nil {
				return part.FunctionResponse, true
			}
		}
		// only look at the latest turn
		return nil, false
	}
	return nil, false
}

// PaymentScript calls make_payment once with args, then echoes the tool's
// confirmation in a final text turn.
func PaymentScript(args map[string]any) func(*model.LLMRequest) (*model.LLMResponse, error) {
	return func(req *model.LLMRequest) (*model.LLMResponse, error) {
		if resp, ok := LastFunctionResponse(req); ok {
			return TextResponse(fmt.Sprintf("Done. %v", resp.Response["result"])), nil
		}
		return FunctionCallResponse("call-1", "make_payment", args), nil
	}
}
