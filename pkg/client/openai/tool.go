package openai

import (
	"encoding/json"
	"strings"

	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/message"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/responses"
)

// convertArgumentToProperty converts a ToolArgument to OpenAI property schema
func convertArgumentToProperty(arg message.ToolArgument) map[string]interface{} {
	// Ensure we have a valid JSON Schema type
	argType := strings.TrimSpace(arg.Type)
	// Handle various invalid type cases
	if argType == "" || argType == "None" || argType == "null" || argType == "undefined" {
		argType = "string" // Default to string for invalid types
	}

	// Validate against common JSON Schema types
	validTypes := map[string]bool{
		"string":  true,
		"number":  true,
		"integer": true,
		"boolean": true,
		"array":   true,
		"object":  true,
	}

	if !validTypes[argType] {
		// If it's not a valid JSON Schema type, default to string
		argType = "string"
	}

	property := map[string]interface{}{
		"type":        argType,
		"description": arg.Description.String(),
	}

	// Use explicit properties if available
	if len(arg.Properties) > 0 {
		// Merge explicit properties with the base property
		for k, v := range arg.Properties {
			property[k] = v
		}
	}

	return property
}

// convertOpenAIArgsToToolArgs converts OpenAI function arguments JSON to tool argument values
func convertOpenAIArgsToToolArgs(argsJSON string) message.ToolArgumentValues {
	result := make(message.ToolArgumentValues)

	if argsJSON == "" {
		return result
	}

	// Parse JSON arguments
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		// If parsing fails, return empty map
		return result
	}

	for key, value := range args {
		result[key] = value
	}

	return result
}

// convertToolArgsToJSON converts tool argument values to JSON string
func convertToolArgsToJSON(args message.ToolArgumentValues) string {
	if len(args) == 0 {
		return "{}"
	}

	jsonBytes, err := json.Marshal(args)
	if err != nil {
		// If marshaling fails, return empty object
		return "{}"
	}

	return string(jsonBytes)
}

// convertTools converts domain tools to Responses API ToolUnionParam format
func convertTools(tools map[message.ToolName]message.Tool) []responses.ToolUnionParam {
	var responsesTools []responses.ToolUnionParam

	for _, tool := range tools {
		// Create properties from tool arguments
		properties := make(map[string]any)
		var required []string

		for _, arg := range tool.Arguments() {
			property := convertArgumentToProperty(arg)
			properties[string(arg.Name)] = property

			if arg.Required {
				required = append(required, string(arg.Name))
			}
		}

		// Create proper JSON Schema object
		schema := map[string]any{
			"type":       "object",
			"properties": properties,
		}

		// Add required array if we have required fields
		if len(required) > 0 {
			schema["required"] = required
		}

		// Create function tool using Responses API helper
		toolParam := responses.ToolParamOfFunction(
			string(tool.Name()),
			schema,
			false, // strict
		)

		responsesTools = append(responsesTools, toolParam)
	}

	return responsesTools
}

// convertToolChoice converts domain ToolChoice to Responses API format
func convertToolChoice(toolChoice domain.ToolChoice) *responses.ResponseNewParamsToolChoiceUnion {
	switch toolChoice.Type {
	case domain.ToolChoiceAuto:
		return &responses.ResponseNewParamsToolChoiceUnion{
			OfToolChoiceMode: openai.Opt(responses.ToolChoiceOptionsAuto),
		}
	case domain.ToolChoiceAny:
		return &responses.ResponseNewParamsToolChoiceUnion{
			OfToolChoiceMode: openai.Opt(responses.ToolChoiceOptionsRequired),
		}
	case domain.ToolChoiceTool:
		// Specific tool choice falls back to required mode
		return &responses.ResponseNewParamsToolChoiceUnion{
			OfToolChoiceMode: openai.Opt(responses.ToolChoiceOptionsRequired),
		}
	case domain.ToolChoiceNone:
		return &responses.ResponseNewParamsToolChoiceUnion{
			OfToolChoiceMode: openai.Opt(responses.ToolChoiceOptionsNone),
		}
	default:
		// Default to auto
		return &responses.ResponseNewParamsToolChoiceUnion{
			OfToolChoiceMode: openai.Opt(responses.ToolChoiceOptionsAuto),
		}
	}
}
