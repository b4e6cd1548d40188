package client

import (
	"fmt"

	"github.com/fpt/contextfs/internal/config"
	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/client/anthropic"
	"github.com/fpt/contextfs/pkg/client/openai"
)

// NewLLMClient creates an LLM client based on settings.
func NewLLMClient(settings config.LLMSettings) (domain.LLM, error) {
	switch settings.Backend {
	case "anthropic", "claude":
		return anthropic.NewAnthropicClientWithTokens(settings.Model, settings.MaxTokens)
	case "openai":
		return openai.NewOpenAIClient(settings.Model, settings.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported LLM backend: %s", settings.Backend)
	}
}

// NewClientWithToolManager creates a tool calling client appropriate for the underlying LLM client
// Takes a base LLM client and adds tool management capabilities to it
func NewClientWithToolManager(client domain.LLM, toolManager domain.ToolManager) (domain.ToolCallingLLM, error) {
	// Check if the client is already a tool calling client
	if toolCallingClient, ok := client.(domain.ToolCallingLLM); ok {
		// Set the tool manager and return
		toolCallingClient.SetToolManager(toolManager)
		return toolCallingClient, nil
	}

	// Determine the appropriate tool calling client based on the client type
	switch c := client.(type) {
	case *anthropic.AnthropicClient:
		// For Anthropic clients, use the embedded AnthropicCore to create a new tool calling client
		toolClient := anthropic.NewAnthropicClientFromCore(c.AnthropicCore)
		toolClient.SetToolManager(toolManager)
		return toolClient, nil
	case *openai.OpenAIClient:
		// For OpenAI clients, use the embedded OpenAICore to create a new tool calling client
		toolClient := openai.NewOpenAIClientFromCore(c.OpenAICore)
		toolClient.SetToolManager(toolManager)
		return toolClient, nil
	default:
		// For unknown clients, we cannot create a tool calling client
		// since we need specific core implementations
		return nil, fmt.Errorf("unsupported client type for tool calling: %T", client)
	}
}

// NewStructuredClient creates a structured client for the given type T and base LLM client
// Uses tool calling based structured output for each provider
func NewStructuredClient[T any](client domain.LLM) (domain.StructuredLLM[T], error) {
	// Check if the client already supports structured output
	if structuredClient, ok := client.(domain.StructuredLLM[T]); ok {
		return structuredClient, nil
	}

	switch c := client.(type) {
	case *anthropic.AnthropicClient:
		return NewToolCallingStructuredClient[T](c), nil
	case *openai.OpenAIClient:
		return NewToolCallingStructuredClient[T](c), nil
	default:
		// For unknown clients, we cannot create a structured client
		return nil, fmt.Errorf("unsupported client type for structured output: %T", client)
	}
}
