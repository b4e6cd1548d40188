package react

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/agent/events"
	pkgLogger "github.com/fpt/contextfs/pkg/logger"
	"github.com/fpt/contextfs/pkg/message"
	"github.com/pkg/errors"
)

// ReAct is a simple ReAct implementation that uses LLM and tools
// It handles tool calls and manages the message state
//
// This implementation is designed to be simple and straightforward,
// focusing on the core functionality of ReAct with LLM and tools.

type ReAct struct {
	llmClient        domain.LLM
	state            domain.State
	toolManager      domain.ToolManager
	maxIterations    int                 // configurable loop limit
	eventEmitter     events.EventEmitter // emitter for agent events
	status           domain.AgentStatus
	currentIteration int // current iteration count
}

// Ensure ReAct implements domain.ReAct interface
var _ domain.ReAct = (*ReAct)(nil)

// component logger for agent messages in ReAct
var reactLogger = pkgLogger.NewComponentLogger("react")

func NewReAct(llmClient domain.LLM, toolManager domain.ToolManager, sharedState domain.State, maxIterations int) (*ReAct, events.EventEmitter) {
	eventEmitter := events.NewSimpleEventEmitter()
	reactClient := &ReAct{
		llmClient:     llmClient,
		toolManager:   toolManager,
		state:         sharedState,
		maxIterations: maxIterations,
		eventEmitter:  eventEmitter,
	}
	return reactClient, eventEmitter
}

// GetLastMessage returns the last message in the conversation without exposing state
func (r *ReAct) GetLastMessage() message.Message {
	return r.state.GetLastMessage()
}

// ClearHistory clears the conversation history without exposing state
func (r *ReAct) ClearHistory() {
	r.state.Clear()
}

// chatWithToolChoice uses tool choice control if the LLM client supports it
func (r *ReAct) chatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error) {
	// Check if the client supports tool calling with tool choice
	if toolClient, ok := r.llmClient.(domain.ToolCallingLLM); ok {
		return toolClient.ChatWithToolChoice(ctx, messages, toolChoice)
	}

	// If the client doesn't support tool choice, fall back to regular chat
	// This ensures compatibility with non-tool-calling clients
	return r.llmClient.Chat(ctx, messages)
}

// annotateAndLogUsage attaches token usage (when available) to the response message.
func (r *ReAct) annotateAndLogUsage(resp message.Message) {
	// Only record usage for assistant messages to avoid repeating the same
	// usage for tool call placeholders (no new model tokens consumed yet).
	switch resp.Type() {
	case message.MessageTypeToolCall, message.MessageTypeToolCallBatch:
		return
	}

	if usageProvider, ok := r.llmClient.(domain.TokenUsageProvider); ok {
		if usage, ok2 := usageProvider.LastTokenUsage(); ok2 {
			resp.SetTokenUsage(usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
		}
	}
}

// Run processes input using the configured maxIterations.
// Optional images are base64-encoded strings attached to the user message for vision-capable models.
func (r *ReAct) Run(ctx context.Context, input string, images ...string) (message.Message, error) {
	var userMessage message.Message
	if len(images) > 0 {
		userMessage = message.NewChatMessageWithImages(message.MessageTypeUser, input, images)
	} else {
		userMessage = message.NewChatMessage(message.MessageTypeUser, input)
	}
	r.state.AddMessage(userMessage)

	r.status = domain.AgentStatusRunning
	r.currentIteration = 0
	msg, err := r.runInternal(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to run internal processing")
	}

	return msg, nil
}

func (r *ReAct) Close() {}

func (r *ReAct) GetStatus() domain.AgentStatus {
	return r.status
}

// runInternal processes input using the configured maxIterations
func (r *ReAct) runInternal(ctx context.Context) (message.Message, error) {
	for ; r.currentIteration < r.maxIterations; r.currentIteration++ {
		// Check for context cancellation (e.g., Ctrl+C)
		select {
		case <-ctx.Done():
			// Context was cancelled; log and bubble up cancellation without adding messages
			reactLogger.InfoWithIntention(pkgLogger.IntentionCancel, "Operation cancelled by user. History preserved.")
			return nil, ctx.Err()
		default:
			// Continue with normal execution
		}

		messages := r.state.GetMessages()

		var resp message.Message
		var err error

		// Use tool calling if available, otherwise fall back to regular chat
		if r.toolManager != nil && len(r.toolManager.GetTools()) > 0 {
			// Use tool choice auto to let the LLM decide when to use tools
			resp, err = r.chatWithToolChoice(ctx, messages, domain.ToolChoice{Type: domain.ToolChoiceAuto})
		} else {
			resp, err = r.llmClient.Chat(ctx, messages)
		}

		if err != nil {
			// Check if the error is due to context cancellation
			if ctx.Err() == context.Canceled {
				reactLogger.InfoWithIntention(pkgLogger.IntentionCancel, "Operation cancelled by user during LLM call. History preserved.")
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to get response from LLM client: %w", err)
		}

		// Annotate token usage when available
		r.annotateAndLogUsage(resp)

		done, err := r.processResponse(ctx, r.currentIteration, resp)
		if err != nil {
			return nil, err
		}
		if done {
			r.status = domain.AgentStatusCompleted
			return resp, nil
		}
	}

	return nil, fmt.Errorf("exceeded maximum loop limit (%d) without a valid response", r.maxIterations)
}

// processResponse handles one model response and reports whether the loop is done
func (r *ReAct) processResponse(ctx context.Context, currentIter int, resp message.Message) (bool, error) {
	var done bool

	switch resp := resp.(type) {
	case *message.ChatMessage:
		// Add assistant response to state
		r.state.AddMessage(resp)
		r.emitEventWithIteration(events.EventTypeResponse, events.ResponseData{
			Message: resp,
		}, currentIter, r.maxIterations)
		done = true

	case *message.ToolCallMessage:
		// Record the tool call message in state
		r.state.AddMessage(resp)
		toolCall := resp

		// Check for cancellation before tool execution
		select {
		case <-ctx.Done():
			reactLogger.InfoWithIntention(pkgLogger.IntentionCancel, "Operation cancelled by user during tool execution. History preserved.")
			return done, ctx.Err()
		default:
		}

		// Emit tool call start event
		r.eventEmitter.EmitEvent(events.EventTypeToolCallStart, events.ToolCallStartData{
			ToolName:  string(toolCall.ToolName()),
			Arguments: r.summarizeToolArgs(toolCall.ToolArguments()),
			CallID:    toolCall.ID(),
		})
		msg, err := r.handleToolCall(ctx, toolCall)
		if err != nil {
			return done, fmt.Errorf("failed to handle tool call: %w", err)
		}

		r.emitToolResult(toolCall, msg)

		// Add tool result to state
		r.state.AddMessage(msg)

		// Continue to next iteration to process the tool result

	case *message.ToolCallBatchMessage:
		// Execute multiple tools within a single model turn to reduce loops
		batch := resp
		calls := batch.Calls()
		for _, call := range calls {
			// Check for cancellation before each tool in the batch
			select {
			case <-ctx.Done():
				reactLogger.InfoWithIntention(pkgLogger.IntentionCancel, "Operation cancelled by user during batch tool execution. History preserved.")
				return done, ctx.Err()
			default:
			}

			// Add each tool call message to state for transcript consistency
			r.state.AddMessage(call)
			r.eventEmitter.EmitEvent(events.EventTypeToolCallStart, events.ToolCallStartData{
				ToolName:  string(call.ToolName()),
				Arguments: r.summarizeToolArgs(call.ToolArguments()),
				CallID:    call.ID(),
			})
			msg, err := r.handleToolCall(ctx, call)
			if err != nil {
				return done, fmt.Errorf("failed to handle tool call (batch): %w", err)
			}
			r.emitToolResult(call, msg)
			r.state.AddMessage(msg)
		}
		// After executing the batch, continue the loop to let the model consume results
	default:
		return done, fmt.Errorf("unexpected response type: %T", resp)
	}

	return done, nil
}

func (r *ReAct) handleToolCall(ctx context.Context, toolCall *message.ToolCallMessage) (message.Message, error) {
	id := toolCall.ID()
	toolName := toolCall.ToolName()
	toolArgs := toolCall.ToolArguments()

	// Execute tool and get structured result
	toolResult, err := r.toolManager.CallTool(ctx, toolName, toolArgs)
	if err != nil {
		// Don't return an error - create a tool result message with the error instead
		// This allows the agent to continue and let the LLM see the error message
		return message.NewToolResultMessage(id, "", fmt.Sprintf("Tool execution failed: %v", err)), nil
	}

	// Handle structured tool result
	var resp message.Message
	if len(toolResult.Images) > 0 {
		resp = message.NewToolResultMessageWithImages(id, toolResult.Text, toolResult.Images, toolResult.Error)
	} else if toolResult.Error != "" {
		resp = message.NewToolResultMessage(id, "", toolResult.Error)
	} else {
		resp = message.NewToolResultMessage(id, toolResult.Text, "")
	}

	return resp, nil
}

// emitToolResult emits a tool result event for display
func (r *ReAct) emitToolResult(call *message.ToolCallMessage, msg message.Message) {
	content := strings.TrimRight(msg.Content(), "\n")
	isError := strings.HasPrefix(content, "Error:")

	r.eventEmitter.EmitEvent(events.EventTypeToolResult, events.ToolResultData{
		ToolName: string(call.ToolName()),
		CallID:   call.ID(),
		Content:  content,
		IsError:  isError,
	})
}

// summarizeToolArgs produces a log-friendly version of tool arguments by truncating
// large strings and collapsing deeply nested or large collections.
func (r *ReAct) summarizeToolArgs(args message.ToolArgumentValues) message.ToolArgumentValues {
	const (
		maxStringLen  = 120 // max characters for string values
		maxArrayItems = 8   // max items to display from arrays/slices
		maxMapEntries = 12  // max entries to display from maps
		maxDepth      = 2   // max recursion depth
	)

	var summarize func(v any, depth int) any
	summarize = func(v any, depth int) any {
		if depth > maxDepth {
			return "…"
		}
		switch t := v.(type) {
		case string:
			if len(t) <= maxStringLen {
				return t
			}
			return t[:maxStringLen-3] + "..."
		case []byte:
			s := string(t)
			if len(s) <= maxStringLen {
				return s
			}
			return s[:maxStringLen-3] + "..."
		case []string:
			n := len(t)
			limit := n
			if limit > maxArrayItems {
				limit = maxArrayItems
			}
			out := make([]any, 0, limit)
			for i := 0; i < limit; i++ {
				out = append(out, summarize(t[i], depth+1))
			}
			if n > limit {
				out = append(out, fmt.Sprintf("…+%d more", n-limit))
			}
			return out
		case []any:
			n := len(t)
			limit := n
			if limit > maxArrayItems {
				limit = maxArrayItems
			}
			out := make([]any, 0, limit)
			for i := 0; i < limit; i++ {
				out = append(out, summarize(t[i], depth+1))
			}
			if n > limit {
				out = append(out, fmt.Sprintf("…+%d more", n-limit))
			}
			return out
		case map[string]any:
			out := make(map[string]any)
			count := 0
			for k, val := range t {
				if count >= maxMapEntries {
					out["…"] = fmt.Sprintf("+%d more", len(t)-count)
					break
				}
				out[k] = summarize(val, depth+1)
				count++
			}
			return out
		default:
			// Numbers, bools, and other simple types
			return t
		}
	}

	result := summarize(map[string]any(args), 0)
	if summarizedMap, ok := result.(map[string]any); ok {
		return message.ToolArgumentValues(summarizedMap)
	}
	// Fallback to original args if something went wrong
	return args
}

// emitEventWithIteration emits an event with iteration context
func (r *ReAct) emitEventWithIteration(eventType events.EventType, data interface{}, currentIteration, maxIterations int) {
	event := events.AgentEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Iteration: &events.IterationInfo{
			Current: currentIteration,
			Maximum: maxIterations,
		},
	}

	for _, handler := range r.eventEmitter.(*events.SimpleEventEmitter).GetHandlers() {
		handler(event)
	}
}
