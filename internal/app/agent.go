// Package app wires the virtual filesystem tools, the LLM client, and the
// ReAct loop into a conversational agent with console output.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fpt/contextfs/internal/config"
	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/agent/events"
	"github.com/fpt/contextfs/pkg/agent/react"
	"github.com/fpt/contextfs/pkg/agent/state"
	"github.com/fpt/contextfs/pkg/client"
	pkgLogger "github.com/fpt/contextfs/pkg/logger"
	"github.com/fpt/contextfs/pkg/message"
)

// Agent runs conversation turns against the mounted virtual filesystem.
type Agent struct {
	llmClient   domain.LLM
	toolManager domain.ToolManager
	sharedState domain.State
	settings    *config.Settings
	logger      *pkgLogger.Logger
	out         io.Writer
}

// NewAgent creates an agent over the given LLM client and tool manager.
func NewAgent(llmClient domain.LLM, toolManager domain.ToolManager, settings *config.Settings, logger *pkgLogger.Logger, out io.Writer) *Agent {
	return &Agent{
		llmClient:   llmClient,
		toolManager: toolManager,
		sharedState: state.NewMessageState(),
		settings:    settings,
		logger:      logger.WithComponent("agent"),
		out:         out,
	}
}

// Invoke executes one conversation turn. Optional images are base64-encoded
// strings that get attached to the user message for vision-capable models.
func (a *Agent) Invoke(ctx context.Context, userInput string, images ...string) (message.Message, error) {
	llmWithTools, err := client.NewClientWithToolManager(a.llmClient, a.toolManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client with tools: %w", err)
	}

	maxIterations := config.DefaultAgentMaxIterations
	if a.settings != nil && a.settings.Agent.MaxIterations > 0 {
		maxIterations = a.settings.Agent.MaxIterations
	}
	reactClient, eventEmitter := react.NewReAct(llmWithTools, a.toolManager, a.sharedState, maxIterations)
	a.setupEventHandlers(eventEmitter)

	result, err := reactClient.Run(ctx, userInput, images...)
	if err != nil {
		return nil, fmt.Errorf("action execution failed: %w", err)
	}

	return result, nil
}

// ClearHistory clears the conversation history.
func (a *Agent) ClearHistory() {
	a.sharedState.Clear()
}

// GetConversationPreview returns a formatted preview of the last few messages.
func (a *Agent) GetConversationPreview(maxMessages int) string {
	messages := a.sharedState.GetMessages()
	if len(messages) == 0 {
		return ""
	}

	startIdx := 0
	if len(messages) > maxMessages {
		startIdx = len(messages) - maxMessages
	}

	recentMessages := messages[startIdx:]

	var preview strings.Builder
	preview.WriteString("Previous Conversation:\n")
	preview.WriteString(strings.Repeat("-", 50) + "\n")

	isFirstMessage := true
	for _, msg := range recentMessages {
		truncated := msg.TruncatedString()
		if truncated == "" {
			continue
		}
		if !isFirstMessage {
			preview.WriteString("\n")
		}
		isFirstMessage = false
		preview.WriteString(truncated + "\n")
	}

	preview.WriteString(strings.Repeat("-", 50) + "\n")
	return preview.String()
}

// GetMessageState returns the shared message state.
func (a *Agent) GetMessageState() domain.State {
	return a.sharedState
}

// GetLLMClient returns the LLM client.
func (a *Agent) GetLLMClient() domain.LLM {
	return a.llmClient
}

// OutWriter returns the output writer used for progress lines.
func (a *Agent) OutWriter() io.Writer {
	if a.out != nil {
		return a.out
	}
	return os.Stdout
}

// setupEventHandlers configures event handlers to convert events back to output format.
func (a *Agent) setupEventHandlers(emitter events.EventEmitter) {
	emitter.AddHandler(func(event events.AgentEvent) {
		writer := a.OutWriter()
		if writer == nil {
			return
		}

		switch event.Type {
		case events.EventTypeToolCallStart:
			if data, ok := event.Data.(events.ToolCallStartData); ok {
				fmt.Fprintf(writer, "Running tool %s %v\n", data.ToolName, data.Arguments)
			}

		case events.EventTypeToolResult:
			if data, ok := event.Data.(events.ToolResultData); ok {
				if data.Content == "" {
					fmt.Fprintln(writer, "  (no output)")
				} else if data.IsError {
					lines := strings.Split(data.Content, "\n")
					for _, line := range lines {
						fmt.Fprintf(writer, "  ERROR %s\n", line)
					}
				} else {
					lines := strings.Split(data.Content, "\n")
					maxLines := 5
					if len(lines) > maxLines {
						fmt.Fprintf(writer, "  ...(%d more lines)\n", len(lines)-maxLines)
						lines = lines[len(lines)-maxLines:]
					}
					for _, line := range lines {
						if len(line) > 80 {
							line = line[:77] + "..."
						}
						fmt.Fprintf(writer, "  %s\n", line)
					}
				}
			}

		case events.EventTypeError:
			if data, ok := event.Data.(events.ErrorData); ok {
				fmt.Fprintf(writer, "Error: %v\n", data.Error)
			}
		}
	})
}
