package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/message"
)

const (
	defaultMaxTokens = 8192
)

// AnthropicCore contains shared Anthropic client resources and core functionality
// This allows efficient resource sharing between different Anthropic client types
type AnthropicCore struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicCore creates a new Anthropic core with shared resources
func NewAnthropicCore(model string) (*AnthropicCore, error) {
	return NewAnthropicCoreWithTokens(model, 0) // 0 = use default
}

// NewAnthropicCoreWithTokens creates a new Anthropic core with configurable maxTokens
func NewAnthropicCoreWithTokens(model string, maxTokens int) (*AnthropicCore, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	// Use default if maxTokens is 0 or negative
	// NOTE: Anthropic requires minimum tokens.
	if maxTokens <= 0 || maxTokens < defaultMaxTokens {
		maxTokens = defaultMaxTokens
	}

	return &AnthropicCore{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// AnthropicClient handles communication with Claude models
// Implements domain.ToolCallingLLM interfaces for tool calling
type AnthropicClient struct {
	*AnthropicCore
	toolManager domain.ToolManager

	lastUsage message.TokenUsage
}

// NewAnthropicClient creates a new Anthropic client with tool calling capabilities
func NewAnthropicClient(model string) (domain.ToolCallingLLM, error) {
	return NewAnthropicClientWithTokens(model, 0) // 0 = use default
}

// NewAnthropicClientWithTokens creates a new Anthropic client with configurable maxTokens
func NewAnthropicClientWithTokens(model string, maxTokens int) (domain.ToolCallingLLM, error) {
	core, err := NewAnthropicCoreWithTokens(model, maxTokens)
	if err != nil {
		return nil, err
	}

	// Return as domain.ToolCallingLLM interface
	return &AnthropicClient{
		AnthropicCore: core,
	}, nil
}

// NewAnthropicClientFromCore creates a new Anthropic client from shared core
func NewAnthropicClientFromCore(core *AnthropicCore) domain.ToolCallingLLM {
	return &AnthropicClient{
		AnthropicCore: core,
	}
}

// ModelIdentifier implementation
func (c *AnthropicClient) ModelID() string { return c.model }

// TokenUsageProvider implementation (populated from Message.Usage when available)
func (c *AnthropicClient) LastTokenUsage() (message.TokenUsage, bool) {
	if c.lastUsage.InputTokens != 0 || c.lastUsage.OutputTokens != 0 || c.lastUsage.TotalTokens != 0 {
		return c.lastUsage, true
	}
	return message.TokenUsage{}, false
}

// SetToolManager sets the tool manager for dynamic tool definitions
func (c *AnthropicClient) SetToolManager(toolManager domain.ToolManager) {
	c.toolManager = toolManager
}

// Chat sends a message to Claude and returns the response
func (c *AnthropicClient) Chat(ctx context.Context, messages []message.Message) (message.Message, error) {
	messageParams := c.buildMessageParams(messages)
	return c.send(ctx, messageParams)
}

// ChatWithToolChoice sends a message to Claude with tool choice control
func (c *AnthropicClient) ChatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error) {
	messageParams := c.buildMessageParams(messages)

	// Set tool choice based on the provided configuration
	if len(messageParams.Tools) > 0 {
		messageParams.ToolChoice = convertToolChoiceToAnthropic(toolChoice)
	}

	return c.send(ctx, messageParams)
}

func (c *AnthropicClient) buildMessageParams(messages []message.Message) anthropic.MessageNewParams {
	anthropicMessages := toAnthropicMessages(messages)
	claudeModel := getAnthropicModel(c.model)

	// Get tools from tool manager if available
	var tools []anthropic.ToolUnionParam
	if c.toolManager != nil {
		tools = convertToolsToAnthropic(c.toolManager.GetTools())
	}

	return anthropic.MessageNewParams{
		MaxTokens: int64(c.maxTokens),
		Messages:  anthropicMessages,
		Model:     claudeModel,
		Tools:     tools,
	}
}

// send performs the API call and converts the response into a neutral message
func (c *AnthropicClient) send(ctx context.Context, messageParams anthropic.MessageNewParams) (message.Message, error) {
	resp, err := c.client.Messages.New(ctx, messageParams)
	if err != nil {
		return nil, fmt.Errorf("anthropic message error: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no content in Anthropic message")
	}

	// Capture token usage, including cache stats.
	// CacheReadInputTokens: tokens served from cache (savings).
	// CacheCreationInputTokens: tokens written into cache this call (billed at 1.25x).
	c.lastUsage = message.TokenUsage{
		InputTokens:         int(resp.Usage.InputTokens),
		OutputTokens:        int(resp.Usage.OutputTokens),
		TotalTokens:         int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		CachedTokens:        int(resp.Usage.CacheReadInputTokens),
		CacheCreationTokens: int(resp.Usage.CacheCreationInputTokens),
	}

	// Handle different content block types
	var content string
	var toolCalls []anthropic.ToolUseBlock

	for _, contentBlock := range resp.Content {
		switch variant := contentBlock.AsAny().(type) {
		case anthropic.TextBlock:
			content += variant.Text
		case anthropic.ToolUseBlock:
			toolCalls = append(toolCalls, variant)
		}
	}

	// If we have tool calls, return a batch when multiple; single otherwise
	if len(toolCalls) > 0 {
		var calls []*message.ToolCallMessage
		for _, tc := range toolCalls {
			args := make(map[string]any)
			if tc.Input != nil {
				if err := json.Unmarshal(tc.Input, &args); err != nil {
					return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
				}
			}
			calls = append(calls, message.NewToolCallMessage(
				message.ToolName(tc.Name),
				message.ToolArgumentValues(args),
			))
		}
		if len(calls) == 1 {
			return calls[0], nil
		}
		return message.NewToolCallBatch(calls), nil
	}

	return message.NewChatMessage(message.MessageTypeAssistant, content), nil
}
