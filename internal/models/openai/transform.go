// Package openai provides an OpenAI GPT implementation for the ADK model.LLM interface.
package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/lewisedginton/zapbot/internal/models/llmutil"
)

// Finish reason constants (OpenAI uses plain strings)
const (
	finishReasonStop          = "stop"
	finishReasonLength        = "length"
	finishReasonToolCalls     = "tool_calls"
	finishReasonContentFilter = "content_filter"
	finishReasonFunctionCall  = "function_call"
)

// transformADKToOpenAI converts ADK contents to chat completion messages.
// Function responses become tool messages placed ahead of any text from the
// same content.
func transformADKToOpenAI(contents []*genai.Content) ([]openai.ChatCompletionMessageParamUnion, error) {
	var messages []openai.ChatCompletionMessageParamUnion

	for _, content := range contents {
		if content == nil || len(content.Parts) == 0 {
			continue
		}

		switch content.Role {
		case "system":
			if text := joinText(content.Parts, "\n\n"); text != "" {
				messages = append(messages, openai.SystemMessage(text))
			}
		case genai.RoleModel, "assistant":
			msg, err := convertAssistantContent(content.Parts)
			if err != nil {
				return nil, err
			}
			if msg != nil {
				messages = append(messages, *msg)
			}
		default:
			converted, err := convertUserContent(content.Parts)
			if err != nil {
				return nil, err
			}
			messages = append(messages, converted...)
		}
	}

	if len(messages) == 0 {
		return nil, fmt.Errorf("no contents provided")
	}
	return messages, nil
}

func convertUserContent(parts []*genai.Part) ([]openai.ChatCompletionMessageParamUnion, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, part := range parts {
		if part == nil || part.FunctionResponse == nil {
			continue
		}
		text, err := llmutil.ResponseText(part.FunctionResponse)
		if err != nil {
			return nil, err
		}
		messages = append(messages, openai.ToolMessage(text, toolCallID(part.FunctionResponse.ID, part.FunctionResponse.Name)))
	}

	if text := joinText(parts, "\n"); text != "" {
		messages = append(messages, openai.UserMessage(text))
	}
	return messages, nil
}

// convertAssistantContent converts assistant parts to an OpenAI assistant message.
func convertAssistantContent(parts []*genai.Part) (*openai.ChatCompletionMessageParamUnion, error) {
	var toolCalls []openai.ChatCompletionMessageToolCallParam

	for _, part := range parts {
		if part == nil || part.FunctionCall == nil {
			continue
		}
		args := part.FunctionCall.Args
		if args == nil {
			args = map[string]any{}
		}
		argsJSON, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal function args: %w", err)
		}
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: toolCallID(part.FunctionCall.ID, part.FunctionCall.Name),
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      part.FunctionCall.Name,
				Arguments: string(argsJSON),
			},
		})
	}

	text := joinText(parts, "\n")
	if text == "" && len(toolCalls) == 0 {
		return nil, nil
	}

	if len(toolCalls) == 0 {
		msg := openai.AssistantMessage(text)
		return &msg, nil
	}

	assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: toolCalls}
	if text != "" {
		assistant.Content.OfString = openai.String(text)
	}
	return &openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}, nil
}

func joinText(parts []*genai.Part, sep string) string {
	var texts []string
	for _, part := range parts {
		if part != nil && part.Text != "" && !part.Thought {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, sep)
}

// toolCallID falls back to the function name for calls that carry no ID.
func toolCallID(id, name string) string {
	if id != "" {
		return id
	}
	return name
}

// transformOpenAIToADK converts an OpenAI ChatCompletion response to an ADK LLMResponse.
func transformOpenAIToADK(completion *openai.ChatCompletion) (*model.LLMResponse, error) {
	if completion == nil {
		return nil, fmt.Errorf("nil completion")
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := completion.Choices[0]
	var parts []*genai.Part

	if choice.Message.Content != "" {
		parts = append(parts, genai.NewPartFromText(choice.Message.Content))
	}

	for _, toolCall := range choice.Message.ToolCalls {
		args := make(map[string]any)
		if toolCall.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool arguments: %w", err)
			}
		}
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   toolCall.ID,
				Name: toolCall.Function.Name,
				Args: args,
			},
		})
	}

	var usage *genai.GenerateContentResponseUsageMetadata
	if completion.Usage.TotalTokens > 0 {
		usage = &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:        int32(completion.Usage.PromptTokens),
			CandidatesTokenCount:    int32(completion.Usage.CompletionTokens),
			TotalTokenCount:         int32(completion.Usage.TotalTokens),
			CachedContentTokenCount: int32(completion.Usage.PromptTokensDetails.CachedTokens),
		}
	}

	return &model.LLMResponse{
		Content:       &genai.Content{Role: genai.RoleModel, Parts: parts},
		UsageMetadata: usage,
		FinishReason:  mapFinishReason(choice.FinishReason),
		TurnComplete:  true,
	}, nil
}

// mapFinishReason converts OpenAI's finish_reason string to genai.FinishReason.
func mapFinishReason(finishReason string) genai.FinishReason {
	switch finishReason {
	case finishReasonStop, finishReasonToolCalls, finishReasonFunctionCall:
		return genai.FinishReasonStop
	case finishReasonLength:
		return genai.FinishReasonMaxTokens
	case finishReasonContentFilter:
		return genai.FinishReasonSafety
	default:
		return genai.FinishReasonOther
	}
}

// transformToolsToOpenAI converts the request's function declarations to
// chat completion tools.
func transformToolsToOpenAI(req *model.LLMRequest) ([]openai.ChatCompletionToolParam, error) {
	decls := llmutil.FunctionDeclarations(req)
	if len(decls) == 0 {
		return nil, nil
	}

	tools := make([]openai.ChatCompletionToolParam, 0, len(decls))
	for _, decl := range decls {
		schema, err := llmutil.ParametersSchema(decl)
		if err != nil {
			return nil, err
		}
		fn := openai.FunctionDefinitionParam{
			Name:       decl.Name,
			Parameters: openai.FunctionParameters(schema),
		}
		if decl.Description != "" {
			fn.Description = openai.String(decl.Description)
		}
		tools = append(tools, openai.ChatCompletionToolParam{Function: fn})
	}
	return tools, nil
}
