package anthropic

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/message"
)

func TestGetAnthropicModel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected anthropic.Model
	}{
		{
			name:     "claude-3-7-sonnet-latest",
			input:    "claude-3-7-sonnet-latest",
			expected: anthropic.ModelClaudeSonnet4_5,
		},
		{
			name:     "claude-3-5-haiku-latest",
			input:    "claude-3-5-haiku-latest",
			expected: anthropic.ModelClaudeHaiku4_5,
		},
		{
			name:     "claude-sonnet-4-20250514",
			input:    "claude-sonnet-4-20250514",
			expected: anthropic.ModelClaudeSonnet4_5,
		},
		{
			name:     "unknown model defaults to sonnet",
			input:    "unknown-model",
			expected: anthropic.ModelClaudeSonnet4_5,
		},
		{
			name:     "empty string defaults to sonnet",
			input:    "",
			expected: anthropic.ModelClaudeSonnet4_5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getAnthropicModel(tt.input)
			if result != tt.expected {
				t.Errorf("getAnthropicModel(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestConvertToolChoiceToAnthropic(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.ToolChoice
		validate func(t *testing.T, result anthropic.ToolChoiceUnionParam)
	}{
		{
			name: "tool choice auto",
			input: domain.ToolChoice{
				Type: domain.ToolChoiceAuto,
			},
			validate: func(t *testing.T, result anthropic.ToolChoiceUnionParam) {
				if result.OfAuto == nil {
					t.Errorf("Expected OfAuto to be non-nil")
				}
				if result.OfAny != nil || result.OfTool != nil || result.OfNone != nil {
					t.Errorf("Expected only OfAuto to be non-nil")
				}
			},
		},
		{
			name: "tool choice any",
			input: domain.ToolChoice{
				Type: domain.ToolChoiceAny,
			},
			validate: func(t *testing.T, result anthropic.ToolChoiceUnionParam) {
				if result.OfAny == nil {
					t.Errorf("Expected OfAny to be non-nil")
				}
				if result.OfAuto != nil || result.OfTool != nil || result.OfNone != nil {
					t.Errorf("Expected only OfAny to be non-nil")
				}
			},
		},
		{
			name: "tool choice specific tool",
			input: domain.ToolChoice{
				Type: domain.ToolChoiceTool,
				Name: "respond",
			},
			validate: func(t *testing.T, result anthropic.ToolChoiceUnionParam) {
				if result.OfTool == nil {
					t.Errorf("Expected OfTool to be non-nil")
				}
				if result.OfAuto != nil || result.OfAny != nil || result.OfNone != nil {
					t.Errorf("Expected only OfTool to be non-nil")
				}
				if result.OfTool.Name != "respond" {
					t.Errorf("Expected tool name to be 'respond', got %q", result.OfTool.Name)
				}
			},
		},
		{
			name: "tool choice none",
			input: domain.ToolChoice{
				Type: domain.ToolChoiceNone,
			},
			validate: func(t *testing.T, result anthropic.ToolChoiceUnionParam) {
				if result.OfNone == nil {
					t.Errorf("Expected OfNone to be non-nil")
				}
				if result.OfAuto != nil || result.OfAny != nil || result.OfTool != nil {
					t.Errorf("Expected only OfNone to be non-nil")
				}
			},
		},
		{
			name: "invalid tool choice defaults to auto",
			input: domain.ToolChoice{
				Type: "invalid",
			},
			validate: func(t *testing.T, result anthropic.ToolChoiceUnionParam) {
				if result.OfAuto == nil {
					t.Errorf("Expected OfAuto to be non-nil for invalid type")
				}
				if result.OfAny != nil || result.OfTool != nil || result.OfNone != nil {
					t.Errorf("Expected only OfAuto to be non-nil for invalid type")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertToolChoiceToAnthropic(tt.input)
			tt.validate(t, result)
		})
	}
}

func TestConvertArgumentToAnthropicProperty(t *testing.T) {
	tests := []struct {
		name     string
		input    message.ToolArgument
		expected map[string]any
	}{
		{
			name: "basic string argument",
			input: message.ToolArgument{
				Name:        "path",
				Type:        "string",
				Description: message.ToolDescription("Absolute path to list"),
				Required:    true,
			},
			expected: map[string]any{
				"type":        "string",
				"description": "Absolute path to list",
			},
		},
		{
			name: "number argument",
			input: message.ToolArgument{
				Name:        "offset",
				Type:        "number",
				Description: message.ToolDescription("Byte offset to start reading from"),
				Required:    false,
			},
			expected: map[string]any{
				"type":        "number",
				"description": "Byte offset to start reading from",
			},
		},
		{
			name: "boolean argument",
			input: message.ToolArgument{
				Name:        "recursive",
				Type:        "boolean",
				Description: message.ToolDescription("Search recursively"),
				Required:    false,
			},
			expected: map[string]any{
				"type":        "boolean",
				"description": "Search recursively",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertArgumentToAnthropicProperty(tt.input)

			if result["type"] != tt.expected["type"] {
				t.Errorf("Type mismatch: got %v, want %v", result["type"], tt.expected["type"])
			}
			if result["description"] != tt.expected["description"] {
				t.Errorf("Description mismatch: got %v, want %v", result["description"], tt.expected["description"])
			}
		})
	}
}

func TestConvertArgumentToAnthropicProperty_ExplicitProperties(t *testing.T) {
	input := message.ToolArgument{
		Name:        "entries",
		Type:        "array",
		Description: message.ToolDescription("Entries to describe"),
		Required:    true,
		Properties: map[string]any{
			"items":    map[string]any{"type": "string"},
			"maxItems": 5,
		},
	}

	result := convertArgumentToAnthropicProperty(input)

	if result["type"] != "array" {
		t.Errorf("Expected type 'array', got %v", result["type"])
	}
	if result["maxItems"] != 5 {
		t.Errorf("Expected maxItems 5, got %v", result["maxItems"])
	}
	items, ok := result["items"].(map[string]any)
	if !ok {
		t.Fatalf("Expected 'items' to be map[string]any, got %T", result["items"])
	}
	if items["type"] != "string" {
		t.Errorf("Expected items type 'string', got %v", items["type"])
	}
}

// Mock tool implementation for testing
type mockTool struct {
	name        string
	description string
	args        []message.ToolArgument
}

func (m *mockTool) RawName() message.ToolName { return message.ToolName(m.name) }
func (m *mockTool) Name() message.ToolName    { return message.ToolName(m.name) }
func (m *mockTool) Description() message.ToolDescription {
	return message.ToolDescription(m.description)
}
func (m *mockTool) Arguments() []message.ToolArgument { return m.args }
func (m *mockTool) Handler() func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	return func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
		return message.ToolResult{Text: "mock result"}, nil
	}
}

func TestConvertToolsToAnthropic(t *testing.T) {
	// Create sample tools
	tools := map[message.ToolName]message.Tool{
		"ls": &mockTool{
			name:        "ls",
			description: "List a directory in the virtual filesystem",
			args: []message.ToolArgument{
				{
					Name:        "path",
					Type:        "string",
					Description: message.ToolDescription("Absolute path to list"),
					Required:    true,
				},
			},
		},
		"view": &mockTool{
			name:        "view",
			description: "View file contents",
			args: []message.ToolArgument{
				{
					Name:        "path",
					Type:        "string",
					Description: message.ToolDescription("Absolute path to view"),
					Required:    true,
				},
				{
					Name:        "offset",
					Type:        "number",
					Description: message.ToolDescription("Byte offset to start from"),
					Required:    false,
				},
			},
		},
		"fs.view": &mockTool{
			name:        "fs.view",
			description: "A tool with dots that should be sanitized",
			args: []message.ToolArgument{
				{
					Name:        "arg1",
					Type:        "string",
					Description: message.ToolDescription("An argument"),
					Required:    true,
				},
			},
		},
	}

	result := convertToolsToAnthropic(tools)

	// Verify the correct number of tools were converted
	if len(result) != 3 {
		t.Errorf("Expected 3 tools, got %d", len(result))
	}

	// Create a map by tool name for easier testing
	toolMap := make(map[string]*anthropic.ToolParam)
	cacheMarked := 0
	for _, tool := range result {
		if tool.OfTool != nil {
			toolMap[tool.OfTool.Name] = tool.OfTool
			if tool.OfTool.CacheControl.Type != "" {
				cacheMarked++
			}
		}
	}

	// Only the last tool carries the cache_control marker
	if cacheMarked != 1 {
		t.Errorf("Expected exactly 1 cache-marked tool, got %d", cacheMarked)
	}

	// Test ls tool
	if lsTool, exists := toolMap["ls"]; exists {
		if lsTool.Description.Value != "List a directory in the virtual filesystem" {
			t.Errorf("Unexpected description: %s", lsTool.Description.Value)
		}
		properties := lsTool.InputSchema.Properties
		if properties == nil {
			t.Errorf("Expected properties to be non-nil")
			return
		}
		propsMap, ok := properties.(map[string]interface{})
		if !ok {
			t.Errorf("Expected properties to be map[string]interface{}, got %T", properties)
			return
		}
		if len(propsMap) != 1 {
			t.Errorf("Expected 1 property, got %d", len(propsMap))
		}
		if prop, ok := propsMap["path"].(map[string]interface{}); ok {
			if prop["type"] != "string" {
				t.Errorf("Expected type 'string', got %v", prop["type"])
			}
			if prop["description"] != "Absolute path to list" {
				t.Errorf("Expected description 'Absolute path to list', got %v", prop["description"])
			}
		} else {
			t.Errorf("Property 'path' not found or wrong type")
		}
		required := lsTool.InputSchema.Required
		if len(required) != 1 || required[0] != "path" {
			t.Errorf("Expected required fields ['path'], got %v", required)
		}
	} else {
		t.Errorf("Tool 'ls' not found in converted tools")
	}

	// Test view tool
	if viewTool, exists := toolMap["view"]; exists {
		properties := viewTool.InputSchema.Properties
		propsMap, ok := properties.(map[string]interface{})
		if !ok {
			t.Errorf("Expected properties to be map[string]interface{}, got %T", properties)
			return
		}
		if len(propsMap) != 2 {
			t.Errorf("Expected 2 properties, got %d", len(propsMap))
		}
		// Only path is required
		required := viewTool.InputSchema.Required
		if len(required) != 1 || required[0] != "path" {
			t.Errorf("Expected required fields ['path'], got %v", required)
		}
	} else {
		t.Errorf("Tool 'view' not found in converted tools")
	}

	// Test fs.view (should be sanitized)
	if serverTool, exists := toolMap["fs_view"]; exists {
		if serverTool.Description.Value != "A tool with dots that should be sanitized" {
			t.Errorf("Unexpected description: %s", serverTool.Description.Value)
		}
	} else {
		t.Errorf("Tool 'fs_view' not found in converted tools")
	}
}

func TestToAnthropicMessages(t *testing.T) {
	tests := []struct {
		name          string
		inputMessages []message.Message
		validate      func(t *testing.T, result []anthropic.MessageParam)
	}{
		{
			name: "basic user message",
			inputMessages: []message.Message{
				message.NewChatMessage(message.MessageTypeUser, "Hello, world!"),
			},
			validate: func(t *testing.T, result []anthropic.MessageParam) {
				if len(result) != 1 {
					t.Fatalf("Expected 1 message, got %d", len(result))
				}
				if result[0].Role != anthropic.MessageParamRoleUser {
					t.Errorf("Expected role 'user', got %s", result[0].Role)
				}
				// Check content blocks
				if len(result[0].Content) != 1 {
					t.Fatalf("Expected 1 content block, got %d", len(result[0].Content))
				}
			},
		},
		{
			name: "assistant message",
			inputMessages: []message.Message{
				message.NewChatMessage(message.MessageTypeAssistant, "I can help with that."),
			},
			validate: func(t *testing.T, result []anthropic.MessageParam) {
				if len(result) != 1 {
					t.Fatalf("Expected 1 message, got %d", len(result))
				}
				if result[0].Role != anthropic.MessageParamRoleAssistant {
					t.Errorf("Expected role 'assistant', got %s", result[0].Role)
				}
			},
		},
		{
			name: "system message (converts to user message with 'System:' prefix)",
			inputMessages: []message.Message{
				message.NewChatMessage(message.MessageTypeSystem, "You are a helpful assistant."),
			},
			validate: func(t *testing.T, result []anthropic.MessageParam) {
				if len(result) != 1 {
					t.Fatalf("Expected 1 message, got %d", len(result))
				}
				if result[0].Role != anthropic.MessageParamRoleUser {
					t.Errorf("Expected role 'user', got %s", result[0].Role)
				}
			},
		},
		{
			name: "tool call and result pair",
			inputMessages: []message.Message{
				message.NewToolCallMessage("ls", message.ToolArgumentValues{"path": "/"}),
				message.NewToolResultMessage("call-1", "dir attachments", ""),
			},
			validate: func(t *testing.T, result []anthropic.MessageParam) {
				if len(result) != 2 {
					t.Fatalf("Expected 2 messages, got %d", len(result))
				}
				if result[0].Role != anthropic.MessageParamRoleAssistant {
					t.Errorf("Expected tool call role 'assistant', got %s", result[0].Role)
				}
				if result[1].Role != anthropic.MessageParamRoleUser {
					t.Errorf("Expected tool result role 'user', got %s", result[1].Role)
				}
			},
		},
		{
			name: "conversation sequence",
			inputMessages: []message.Message{
				message.NewChatMessage(message.MessageTypeUser, "Hello"),
				message.NewChatMessage(message.MessageTypeAssistant, "Hi there!"),
				message.NewChatMessage(message.MessageTypeUser, "How are you?"),
			},
			validate: func(t *testing.T, result []anthropic.MessageParam) {
				if len(result) != 3 {
					t.Fatalf("Expected 3 messages, got %d", len(result))
				}

				// Check roles
				expectedRoles := []anthropic.MessageParamRole{anthropic.MessageParamRoleUser, anthropic.MessageParamRoleAssistant, anthropic.MessageParamRoleUser}
				for i, role := range expectedRoles {
					if result[i].Role != role {
						t.Errorf("Message %d: Expected role '%s', got '%s'", i, role, result[i].Role)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := toAnthropicMessages(tt.inputMessages)
			tt.validate(t, result)
		})
	}
}
