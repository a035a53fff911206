package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/lewisedginton/zapbot/internal/models/llmutil"
)

// systemPrompt merges the config system instruction with any inline
// "system" contents.
func systemPrompt(req *model.LLMRequest) string {
	var sections []string
	if s := llmutil.SystemInstruction(req); s != "" {
		sections = append(sections, s)
	}
	for _, content := range req.Contents {
		if content == nil || content.Role != "system" {
			continue
		}
		for _, part := range content.Parts {
			if part != nil && part.Text != "" {
				sections = append(sections, part.Text)
			}
		}
	}
	return strings.Join(sections, "\n\n")
}

// transformADKToAnthropic converts ADK contents to Anthropic messages.
// Consecutive contents with the same role are merged into one message, so a
// run of tool results lands in a single user turn.
func transformADKToAnthropic(contents []*genai.Content) ([]anthropic.MessageParam, error) {
	var messages []anthropic.MessageParam

	for _, content := range contents {
		if content == nil || content.Role == "system" {
			continue
		}

		blocks, err := convertParts(content.Parts)
		if err != nil {
			return nil, err
		}
		if len(blocks) == 0 {
			continue
		}

		role := anthropic.MessageParamRoleUser
		if content.Role == genai.RoleModel || content.Role == "assistant" {
			role = anthropic.MessageParamRoleAssistant
		}

		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content = append(messages[n-1].Content, blocks...)
			continue
		}
		messages = append(messages, anthropic.MessageParam{Role: role, Content: blocks})
	}

	if len(messages) == 0 {
		return nil, fmt.Errorf("no contents provided")
	}
	return messages, nil
}

func convertParts(parts []*genai.Part) ([]anthropic.ContentBlockParamUnion, error) {
	var blocks []anthropic.ContentBlockParamUnion
	for _, part := range parts {
		if part == nil {
			continue
		}
		switch {
		case part.FunctionCall != nil:
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(toolUseID(part.FunctionCall.ID, part.FunctionCall.Name), args, part.FunctionCall.Name))
		case part.FunctionResponse != nil:
			text, err := llmutil.ResponseText(part.FunctionResponse)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, anthropic.NewToolResultBlock(
				toolUseID(part.FunctionResponse.ID, part.FunctionResponse.Name),
				text,
				llmutil.IsErrorResponse(part.FunctionResponse)))
		case part.Text != "" && !part.Thought:
			blocks = append(blocks, anthropic.NewTextBlock(part.Text))
		}
	}
	return blocks, nil
}

// toolUseID falls back to the function name for calls that carry no ID.
func toolUseID(id, name string) string {
	if id != "" {
		return id
	}
	return name
}

// transformAnthropicToADK converts an Anthropic message to an ADK LLMResponse.
func transformAnthropicToADK(message *anthropic.Message) (*model.LLMResponse, error) {
	if message == nil {
		return nil, fmt.Errorf("message is nil")
	}

	var parts []*genai.Part
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			parts = append(parts, genai.NewPartFromText(b.Text))
		case anthropic.ToolUseBlock:
			args := make(map[string]any)
			if len(b.Input) > 0 {
				if err := json.Unmarshal(b.Input, &args); err != nil {
					return nil, fmt.Errorf("failed to unmarshal tool input for %s: %w", b.Name, err)
				}
			}
			parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
				ID:   b.ID,
				Name: b.Name,
				Args: args,
			}})
		}
	}

	usage := &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     int32(message.Usage.InputTokens),
		CandidatesTokenCount: int32(message.Usage.OutputTokens),
		TotalTokenCount:      int32(message.Usage.InputTokens + message.Usage.OutputTokens),
	}

	return &model.LLMResponse{
		Content:       &genai.Content{Role: genai.RoleModel, Parts: parts},
		UsageMetadata: usage,
		FinishReason:  mapStopReason(message.StopReason),
		TurnComplete:  true,
	}, nil
}

func mapStopReason(reason anthropic.StopReason) genai.FinishReason {
	switch reason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence, anthropic.StopReasonToolUse:
		return genai.FinishReasonStop
	case anthropic.StopReasonMaxTokens:
		return genai.FinishReasonMaxTokens
	default:
		return genai.FinishReasonOther
	}
}

// transformToolsToAnthropic converts the request's function declarations
// to Anthropic tool definitions.
func transformToolsToAnthropic(req *model.LLMRequest) ([]anthropic.ToolUnionParam, error) {
	decls := llmutil.FunctionDeclarations(req)
	if len(decls) == 0 {
		return nil, nil
	}

	tools := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, decl := range decls {
		schema, err := llmutil.ParametersSchema(decl)
		if err != nil {
			return nil, err
		}

		toolParam := anthropic.ToolParam{
			Name: decl.Name,
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: schema["properties"],
				Required:   llmutil.RequiredFields(schema),
			},
		}
		if decl.Description != "" {
			toolParam.Description = anthropic.String(decl.Description)
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return tools, nil
}
