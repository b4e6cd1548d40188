package anthropic

import (
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/message"
	llmmsg "github.com/fpt/contextfs/pkg/message"
)

// Anthropic models
// https://docs.anthropic.com/en/docs/about-claude/models/overview

// getAnthropicModel maps common model names to Anthropic model constants
func getAnthropicModel(model string) anthropic.Model {
	// Map common model names to Anthropic model constants
	switch model {
	case "claude-opus-4-20250514":
		return anthropic.ModelClaudeOpus4_20250514
	case "claude-sonnet-4-20250514":
		return anthropic.ModelClaudeSonnet4_5
	case "claude-3-7-sonnet-latest":
		return anthropic.ModelClaudeSonnet4_5
	case "claude-3-5-haiku-latest":
		return anthropic.ModelClaudeHaiku4_5
	}

	// Default to Claude Sonnet
	return anthropic.ModelClaudeSonnet4_5
}

// convertToolChoiceToAnthropic converts domain ToolChoice to Anthropic format
func convertToolChoiceToAnthropic(toolChoice domain.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch toolChoice.Type {
	case domain.ToolChoiceAuto:
		return anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}
	case domain.ToolChoiceAny:
		return anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{},
		}
	case domain.ToolChoiceTool:
		return anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{
				Name: string(toolChoice.Name),
			},
		}
	case domain.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{
			OfNone: &anthropic.ToolChoiceNoneParam{},
		}
	default:
		// Default to auto
		return anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}
	}
}

// sanitizeToolNameForAnthropic ensures tool names comply with Anthropic's pattern '^[a-zA-Z0-9_-]{1,128}$'
func sanitizeToolNameForAnthropic(name string) string {
	// Replace dots and colons with underscores
	sanitized := strings.ReplaceAll(name, ".", "_")
	sanitized = strings.ReplaceAll(sanitized, ":", "_")

	// Replace double underscores with single underscores
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}

	// Ensure length doesn't exceed 128 characters
	if len(sanitized) > 128 {
		sanitized = sanitized[:128]
	}

	return sanitized
}

// convertToolsToAnthropic converts domain tools to Anthropic format.
// The last tool in the list is marked with cache_control: ephemeral so that
// Anthropic caches the entire tool list (everything up to and including the
// marker) on the first call and serves it from cache on subsequent calls.
func convertToolsToAnthropic(tools map[message.ToolName]message.Tool) []anthropic.ToolUnionParam {
	var anthropicTools []anthropic.ToolUnionParam

	for _, tool := range tools {
		properties := make(map[string]any)
		var required []string

		for _, arg := range tool.Arguments() {
			property := convertArgumentToAnthropicProperty(arg)
			properties[string(arg.Name)] = property

			if arg.Required {
				required = append(required, string(arg.Name))
			}
		}

		anthropicTool := anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        sanitizeToolNameForAnthropic(string(tool.Name())),
				Description: anthropic.String(tool.Description().String()),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		}

		anthropicTools = append(anthropicTools, anthropicTool)
	}

	// Mark the last tool with cache_control: ephemeral.
	// Anthropic caches all content up to and including the last marked item,
	// so this caches the full tool list across calls within the same session.
	if len(anthropicTools) > 0 {
		last := &anthropicTools[len(anthropicTools)-1]
		if last.OfTool != nil {
			last.OfTool.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
	}

	return anthropicTools
}

// convertArgumentToAnthropicProperty converts a ToolArgument to Anthropic property schema
func convertArgumentToAnthropicProperty(arg message.ToolArgument) map[string]any {
	property := map[string]any{
		"type":        arg.Type,
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

// toAnthropicMessages converts neutral messages to Anthropic format
func toAnthropicMessages(messages []message.Message) []anthropic.MessageParam {
	var anthropicMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Type() {
		case message.MessageTypeUser:
			// Check if message has images
			if images := msg.Images(); len(images) > 0 {
				// Create content blocks with images and text
				var contentBlocks []anthropic.ContentBlockParamUnion

				// Add image blocks first (Anthropic recommendation)
				for _, imageData := range images {
					imageBlock := anthropic.NewImageBlockBase64(detectImageMediaType(imageData), imageData)
					contentBlocks = append(contentBlocks, imageBlock)
				}

				// Add text block if there's content
				if msg.Content() != "" {
					textBlock := anthropic.NewTextBlock(msg.Content())
					contentBlocks = append(contentBlocks, textBlock)
				}

				anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(contentBlocks...))
			} else {
				// Text only message
				anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content())))
			}
		case message.MessageTypeAssistant:
			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content())))
		case message.MessageTypeSystem:
			// System messages in Anthropic are handled differently - convert to user message
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf("System: %s", msg.Content()))))
		case message.MessageTypeToolCall:
			if toolCallMsg, ok := msg.(*llmmsg.ToolCallMessage); ok {
				toolUse := anthropic.NewToolUseBlock(
					msg.ID(),
					toolCallMsg.ToolArguments(),
					string(toolCallMsg.ToolName()),
				)
				anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(toolUse))
			}
		case message.MessageTypeToolResult:
			if toolResultMsg, ok := msg.(*llmmsg.ToolResultMessage); ok {
				// Build content blocks for tool result
				var contentBlocks []anthropic.ToolResultBlockParamContentUnion

				// Add image blocks if present (Anthropic supports images in tool results)
				if images := toolResultMsg.Images(); len(images) > 0 {
					for _, imageData := range images {
						contentBlocks = append(contentBlocks, anthropic.ToolResultBlockParamContentUnion{
							OfImage: &anthropic.ImageBlockParam{
								Source: anthropic.ImageBlockParamSourceUnion{
									OfBase64: &anthropic.Base64ImageSourceParam{
										Data:      imageData,
										MediaType: anthropic.Base64ImageSourceMediaType(detectImageMediaType(imageData)),
									},
								},
							},
						})
					}
				}

				// Add text block
				contentBlocks = append(contentBlocks, anthropic.ToolResultBlockParamContentUnion{
					OfText: &anthropic.TextBlockParam{Text: toolResultMsg.Content()},
				})

				toolResultParam := anthropic.ToolResultBlockParam{
					ToolUseID: toolResultMsg.ID(),
					Content:   contentBlocks,
				}
				toolResult := anthropic.ContentBlockParamUnion{
					OfToolResult: &toolResultParam,
				}
				anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(toolResult))
			}
		}
	}

	return anthropicMessages
}

// detectImageMediaType guesses the media type from Base64 image data
func detectImageMediaType(imageData string) string {
	if strings.HasPrefix(imageData, "iVBORw0KGgo") {
		return "image/png"
	}
	return "image/jpeg"
}
