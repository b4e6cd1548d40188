package openai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/responses"
	"github.com/openai/openai-go/v2/shared"

	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/message"
)

const defaultReasoningEffort = shared.ReasoningEffortLow // Default reasoning effort for OpenAI models

// OpenAICore holds shared resources for OpenAI clients
type OpenAICore struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// OpenAIClient implements the ToolCallingLLM interface
type OpenAIClient struct {
	*OpenAICore
	toolManager domain.ToolManager

	lastUsage message.TokenUsage
}

// NewOpenAIClient creates a new OpenAI client with configurable maxTokens
// maxTokens = 0 means default
func NewOpenAIClient(model string, maxTokens int) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// Setup client options
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}

	// Support custom base URL (for Azure OpenAI, etc.)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	// Validate and map model name
	openaiModel := getOpenAIModel(model)

	// Use default maxTokens if not specified
	if maxTokens <= 0 {
		maxTokens = getModelCapabilities(openaiModel).MaxTokens
	}

	core := &OpenAICore{
		client:    &client,
		model:     openaiModel,
		maxTokens: maxTokens,
	}

	return &OpenAIClient{
		OpenAICore: core,
	}, nil
}

// NewOpenAIClientFromCore creates a new client instance from existing core (for factory pattern)
func NewOpenAIClientFromCore(core *OpenAICore) domain.ToolCallingLLM {
	return &OpenAIClient{
		OpenAICore: core,
	}
}

// ModelIdentifier implementation
func (c *OpenAIClient) ModelID() string { return c.model }

// TokenUsageProvider implementation (best-effort; populated when available)
func (c *OpenAIClient) LastTokenUsage() (message.TokenUsage, bool) {
	if c.lastUsage.InputTokens != 0 || c.lastUsage.OutputTokens != 0 || c.lastUsage.TotalTokens != 0 {
		return c.lastUsage, true
	}
	return message.TokenUsage{}, false
}

// SetToolManager implements ToolCallingLLM interface
func (c *OpenAIClient) SetToolManager(toolManager domain.ToolManager) {
	c.toolManager = toolManager
}

// IsToolCapable checks if the OpenAI client supports native tool calling
func (c *OpenAIClient) IsToolCapable() bool {
	caps := getModelCapabilities(c.model)
	return caps.SupportsToolCalling
}

// Chat implements the basic LLM interface
func (c *OpenAIClient) Chat(ctx context.Context, messages []message.Message) (message.Message, error) {
	params := c.buildParams(messages)
	return c.send(ctx, params)
}

// ChatWithToolChoice implements ToolCallingLLM interface with native OpenAI tool calling
func (c *OpenAIClient) ChatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error) {
	params := c.buildParams(messages)

	// Set tool choice when tools are configured
	if len(params.Tools) > 0 {
		toolChoiceParam := convertToolChoice(toolChoice)
		if toolChoiceParam != nil {
			params.ToolChoice = *toolChoiceParam
		}
	}

	return c.send(ctx, params)
}

func (c *OpenAIClient) buildParams(messages []message.Message) responses.ResponseNewParams {
	inputItems := c.convertMessagesToResponsesInputItems(messages)

	params := responses.ResponseNewParams{
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
		Model: shared.ChatModel(c.model),
	}

	if c.maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(c.maxTokens))
	}

	// Reasoning effort applies only to reasoning-capable models
	caps := getModelCapabilities(c.model)
	if caps.SupportsReasoning {
		params.Reasoning = shared.ReasoningParam{
			Effort: defaultReasoningEffort,
		}
	}

	if c.toolManager != nil {
		tools := convertTools(c.toolManager.GetTools())
		if len(tools) > 0 {
			params.Tools = tools
		}
	}

	return params
}

// send performs the Responses API call and converts the output into a neutral message
func (c *OpenAIClient) send(ctx context.Context, params responses.ResponseNewParams) (message.Message, error) {
	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Responses API call failed: %w", err)
	}

	// Capture token usage if provided
	if resp.Usage.JSON.InputTokens.Valid() || resp.Usage.JSON.OutputTokens.Valid() || resp.Usage.JSON.TotalTokens.Valid() {
		c.lastUsage = message.TokenUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
			CachedTokens: int(resp.Usage.InputTokensDetails.CachedTokens),
		}
	}

	// Collect function calls from the output items
	var toolCalls []*message.ToolCallMessage
	for _, outputItem := range resp.Output {
		if variant, ok := outputItem.AsAny().(responses.ResponseFunctionToolCall); ok {
			if variant.Name != "" {
				toolArgs := convertOpenAIArgsToToolArgs(variant.Arguments)
				toolCalls = append(toolCalls, message.NewToolCallMessageWithID(
					variant.CallID,
					message.ToolName(variant.Name),
					toolArgs,
					time.Now(),
				))
			}
		}
	}

	// If we found tool calls, return batch when multiple; single otherwise
	if len(toolCalls) == 1 {
		return toolCalls[0], nil
	} else if len(toolCalls) > 1 {
		return message.NewToolCallBatch(toolCalls), nil
	}

	outputText := resp.OutputText()
	if outputText == "" {
		return nil, fmt.Errorf("empty response from Responses API")
	}

	return message.NewChatMessage(message.MessageTypeAssistant, outputText), nil
}

// convertMessagesToResponsesInputItems converts internal messages to structured input items for Responses API
func (c *OpenAIClient) convertMessagesToResponsesInputItems(messages []message.Message) responses.ResponseInputParam {
	var inputItems responses.ResponseInputParam

	for _, msg := range messages {
		switch msg.Type() {
		case message.MessageTypeUser:
			inputItem := responses.ResponseInputItemParamOfMessage(msg.Content(), responses.EasyInputMessageRoleUser)
			inputItems = append(inputItems, inputItem)

		case message.MessageTypeAssistant:
			inputItem := responses.ResponseInputItemParamOfMessage(msg.Content(), responses.EasyInputMessageRoleAssistant)
			inputItems = append(inputItems, inputItem)

		case message.MessageTypeSystem:
			inputItem := responses.ResponseInputItemParamOfMessage(msg.Content(), responses.EasyInputMessageRoleSystem)
			inputItems = append(inputItems, inputItem)

		case message.MessageTypeToolCall:
			// Cast to ToolCallMessage to access tool-specific methods
			if toolCallMsg, ok := msg.(*message.ToolCallMessage); ok {
				// Convert tool arguments to JSON string
				argsJSON := convertToolArgsToJSON(toolCallMsg.ToolArguments())

				// Use proper function call input item
				inputItem := responses.ResponseInputItemParamOfFunctionCall(
					argsJSON,
					toolCallMsg.ID(), // Use message ID as call ID
					toolCallMsg.ToolName().String(),
				)
				inputItems = append(inputItems, inputItem)
			} else {
				// Fallback to message representation if cast fails
				inputItem := responses.ResponseInputItemParamOfMessage(
					"[Tool call: "+msg.Content()+"]",
					responses.EasyInputMessageRoleAssistant,
				)
				inputItems = append(inputItems, inputItem)
			}

		case message.MessageTypeToolResult:
			// Cast to ToolResultMessage to access result-specific methods
			if toolResultMsg, ok := msg.(*message.ToolResultMessage); ok {
				// Use proper function call output input item
				inputItem := responses.ResponseInputItemParamOfFunctionCallOutput(
					toolResultMsg.ID(), // Use message ID as call ID (should match the corresponding tool call)
					toolResultMsg.Content(),
				)
				inputItems = append(inputItems, inputItem)
			} else {
				// Fallback to message representation if cast fails
				inputItem := responses.ResponseInputItemParamOfMessage(
					"[Tool result: "+msg.Content()+"]",
					responses.EasyInputMessageRoleUser,
				)
				inputItems = append(inputItems, inputItem)
			}

		case message.MessageTypeToolCallBatch:
			// Batch messages are for internal coordination; skip sending them back to the model
			// Individual tool calls/results are already added to the transcript
			continue

		default:
			// Default to user role for unknown message types
			inputItem := responses.ResponseInputItemParamOfMessage(msg.Content(), responses.EasyInputMessageRoleUser)
			inputItems = append(inputItems, inputItem)
		}
	}

	return inputItems
}
