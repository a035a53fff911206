// Package llmutil extracts the provider-neutral parts of an ADK model
// request: system instruction, function declarations and their JSON schemas.
package llmutil

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// SystemInstruction joins the text parts of the request's system instruction.
func SystemInstruction(req *model.LLMRequest) string {
	if req == nil || req.Config == nil || req.Config.SystemInstruction == nil {
		return ""
	}
	var texts []string
	for _, part := range req.Config.SystemInstruction.Parts {
		if part != nil && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// FunctionDeclarations returns every function the request offers the model,
// sorted by name. Declarations attached to the generation config take
// precedence over ones only reachable through req.Tools.
func FunctionDeclarations(req *model.LLMRequest) []*genai.FunctionDeclaration {
	if req == nil {
		return nil
	}

	seen := make(map[string]*genai.FunctionDeclaration)
	if req.Config != nil {
		for _, t := range req.Config.Tools {
			if t == nil {
				continue
			}
			for _, decl := range t.FunctionDeclarations {
				if decl != nil && decl.Name != "" {
					seen[decl.Name] = decl
				}
			}
		}
	}

	type declarer interface {
		Declaration() *genai.FunctionDeclaration
	}
	for _, t := range req.Tools {
		d, ok := t.(declarer)
		if !ok {
			continue
		}
		decl := d.Declaration()
		if decl == nil || decl.Name == "" {
			continue
		}
		if _, exists := seen[decl.Name]; !exists {
			seen[decl.Name] = decl
		}
	}

	decls := make([]*genai.FunctionDeclaration, 0, len(seen))
	for _, decl := range seen {
		decls = append(decls, decl)
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls
}

// ParametersSchema renders a declaration's parameters as a JSON schema object.
// A declaration without parameters yields an empty object schema.
func ParametersSchema(decl *genai.FunctionDeclaration) (map[string]any, error) {
	var source any
	switch {
	case decl.ParametersJsonSchema != nil:
		source = decl.ParametersJsonSchema
	case decl.Parameters != nil:
		source = decl.Parameters
	default:
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}

	raw, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("marshal parameters of %s: %w", decl.Name, err)
	}
	schema := make(map[string]any)
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("unmarshal parameters of %s: %w", decl.Name, err)
	}

	// genai.Schema spells types in upper case ("OBJECT")
	lowerTypes(schema)
	if _, ok := schema["type"]; !ok {
		schema["type"] = "object"
	}
	return schema, nil
}

// RequiredFields returns the schema's "required" list as strings.
func RequiredFields(schema map[string]any) []string {
	switch required := schema["required"].(type) {
	case []string:
		return required
	case []any:
		fields := make([]string, 0, len(required))
		for _, r := range required {
			if s, ok := r.(string); ok {
				fields = append(fields, s)
			}
		}
		return fields
	default:
		return nil
	}
}

// ResponseText renders a function response as the text handed back to a
// provider. A lone "result" string is sent as-is, anything else as JSON.
func ResponseText(resp *genai.FunctionResponse) (string, error) {
	if resp == nil || resp.Response == nil {
		return "", nil
	}
	if len(resp.Response) == 1 {
		if result, ok := resp.Response["result"].(string); ok {
			return result, nil
		}
	}
	raw, err := json.Marshal(resp.Response)
	if err != nil {
		return "", fmt.Errorf("marshal response of %s: %w", resp.Name, err)
	}
	return string(raw), nil
}

// IsErrorResponse reports whether ADK recorded a tool failure in resp.
func IsErrorResponse(resp *genai.FunctionResponse) bool {
	if resp == nil {
		return false
	}
	_, ok := resp.Response["error"]
	return ok
}

func lowerTypes(node any) {
	switch v := node.(type) {
	case map[string]any:
		for key, value := range v {
			if key == "type" {
				if s, ok := value.(string); ok {
					v[key] = strings.ToLower(s)
					continue
				}
			}
			lowerTypes(value)
		}
	case []any:
		for _, item := range v {
			lowerTypes(item)
		}
	}
}
