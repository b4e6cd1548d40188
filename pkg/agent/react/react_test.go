package react

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/agent/state"
	"github.com/fpt/contextfs/pkg/message"
)

// Mock LLM client
type mockLLM struct {
	chatFunc               func(ctx context.Context, messages []message.Message) (message.Message, error)
	chatWithToolChoiceFunc func(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error)
	toolManager            domain.ToolManager // Store the tool manager
}

func (m *mockLLM) Chat(ctx context.Context, messages []message.Message) (message.Message, error) {
	if m.chatFunc != nil {
		return m.chatFunc(ctx, messages)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockLLM) ModelID() string { return "mock-llm" }

// SetToolManager sets the tool manager (mock implementation)
func (m *mockLLM) SetToolManager(toolManager domain.ToolManager) {
	m.toolManager = toolManager
}

// ChatWithToolChoice sends a message with tool choice control (mock implementation)
func (m *mockLLM) ChatWithToolChoice(ctx context.Context, messages []message.Message, toolChoice domain.ToolChoice) (message.Message, error) {
	if m.chatWithToolChoiceFunc != nil {
		return m.chatWithToolChoiceFunc(ctx, messages, toolChoice)
	}
	// Fall back to regular chat for mock
	return m.Chat(ctx, messages)
}

// Mock ToolManager
type mockToolManager struct {
	getToolsFunc func() map[message.ToolName]message.Tool
	callToolFunc func(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error)
}

func (m *mockToolManager) RegisterTool(name message.ToolName, description message.ToolDescription, arguments []message.ToolArgument, handler func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error)) {
	// Not needed for tests
}

func (m *mockToolManager) GetTools() map[message.ToolName]message.Tool {
	if m.getToolsFunc != nil {
		return m.getToolsFunc()
	}
	return make(map[message.ToolName]message.Tool)
}

func (m *mockToolManager) CallTool(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
	if m.callToolFunc != nil {
		return m.callToolFunc(ctx, name, args)
	}
	return message.NewToolResultError("mock not configured"), nil
}

func TestNewReAct(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	if react == nil {
		t.Fatal("NewReAct returned nil")
	}

	if react.state == nil {
		t.Error("State not initialized")
	}
}

func TestReAct_MessageStateEncapsulation(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	// Test that ReAct properly encapsulates state - we can only test through public methods
	react.state.AddMessage(message.NewChatMessage(message.MessageTypeUser, "test"))
	lastMessage := react.GetLastMessage()

	if lastMessage == nil {
		t.Error("GetLastMessage() returned nil")
	}
	if lastMessage.Content() != "test" {
		t.Errorf("Expected 'test', got '%s'", lastMessage.Content())
	}

	react.ClearHistory()
	if react.GetLastMessage() != nil {
		t.Error("Expected nil after ClearHistory()")
	}
}

func TestReAct_Invoke_ChatMessage(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	expectedResponse := message.NewChatMessage(message.MessageTypeAssistant, "Hello, I'm an AI assistant")

	mockLLM.chatFunc = func(ctx context.Context, messages []message.Message) (message.Message, error) {
		// Verify user message was added
		if len(messages) != 1 {
			t.Errorf("Expected 1 message, got %d", len(messages))
		}

		if messages[0].Type() != message.MessageTypeUser {
			t.Errorf("Expected user message, got %v", messages[0].Type())
		}

		if messages[0].Content() != "Hello" {
			t.Errorf("Expected 'Hello', got '%s'", messages[0].Content())
		}

		return expectedResponse, nil
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	ctx := context.Background()
	result, err := react.Run(ctx, "Hello")

	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result == nil {
		t.Fatal("Run returned nil result")
	}

	if result.Content() != "Hello, I'm an AI assistant" {
		t.Errorf("Expected 'Hello, I'm an AI assistant', got '%s'", result.Content())
	}

	// Verify state contains both user and assistant messages
	messages := react.state.GetMessages()
	if len(messages) != 2 {
		t.Errorf("Expected 2 messages in state, got %d", len(messages))
	}
}

func TestReAct_Invoke_ToolCall(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	toolCallMessage := message.NewToolCallMessage(
		message.ToolName("ls"),
		message.ToolArgumentValues{"path": "/"},
	)

	callCount := 0
	mockLLM.chatFunc = func(ctx context.Context, messages []message.Message) (message.Message, error) {
		callCount++
		if callCount == 1 {
			// First call: return tool call
			return toolCallMessage, nil
		}
		// Second call: return final chat message
		return message.NewChatMessage(message.MessageTypeAssistant, "You have two directories"), nil
	}

	mockToolManager.callToolFunc = func(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
		if name != "ls" {
			t.Errorf("Expected tool name 'ls', got '%s'", name)
		}

		if args["path"] != "/" {
			t.Errorf("Expected path='/', got '%v'", args["path"])
		}

		return message.NewToolResultText("dir attachments\ndir history"), nil
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	ctx := context.Background()
	result, err := react.Run(ctx, "What files do I have?")

	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result == nil {
		t.Fatal("Run returned nil result")
	}

	// Should return a ChatMessage (the final assistant response)
	if result.Type() != message.MessageTypeAssistant {
		t.Errorf("Expected ChatMessage, got %v", result.Type())
	}

	// Verify state contains user message, tool call message, tool result message, and final assistant message
	messages := react.state.GetMessages()
	if len(messages) != 4 {
		t.Errorf("Expected 4 messages in state, got %d", len(messages))
		for i, msg := range messages {
			t.Errorf("Message %d: type=%v, content=%q", i, msg.Type(), msg.Content())
		}
		return
	}

	if messages[0].Type() != message.MessageTypeUser {
		t.Errorf("Expected first message to be user, got %v", messages[0].Type())
	}
	if messages[1].Type() != message.MessageTypeToolCall {
		t.Errorf("Expected second message to be tool call, got %v", messages[1].Type())
	}
	if messages[2].Type() != message.MessageTypeToolResult {
		t.Errorf("Expected third message to be tool result, got %v", messages[2].Type())
	}
	if messages[3].Type() != message.MessageTypeAssistant {
		t.Errorf("Expected fourth message to be assistant, got %v", messages[3].Type())
	}
}

// TestReAct_FailedToolCallThenRecovery exercises the error-as-value contract:
// a failed ls is surfaced as a tool result, the model retries with a corrected
// path, and the turn still completes.
func TestReAct_FailedToolCallThenRecovery(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	callCount := 0
	mockLLM.chatFunc = func(ctx context.Context, messages []message.Message) (message.Message, error) {
		callCount++
		switch callCount {
		case 1:
			return message.NewToolCallMessage("ls", message.ToolArgumentValues{"path": "/attachmnets"}), nil
		case 2:
			// The model must have seen the error text before retrying.
			last := messages[len(messages)-1]
			if last.Type() != message.MessageTypeToolResult {
				t.Errorf("Expected tool result before retry, got %v", last.Type())
			}
			if !strings.Contains(last.Content(), "no such file or directory") {
				t.Errorf("Expected error text in tool result, got %q", last.Content())
			}
			return message.NewToolCallMessage("ls", message.ToolArgumentValues{"path": "/attachments"}), nil
		default:
			return message.NewChatMessage(message.MessageTypeAssistant, "Found it"), nil
		}
	}

	mockToolManager.callToolFunc = func(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
		if args["path"] == "/attachments" {
			return message.NewToolResultText("file report.txt (120 bytes)"), nil
		}
		return message.NewToolResultError(fmt.Sprintf("%s: no such file or directory", args["path"])), nil
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	result, err := react.Run(context.Background(), "List my attachments")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Content() != "Found it" {
		t.Errorf("Expected final answer after recovery, got %q", result.Content())
	}
	if react.GetStatus() != domain.AgentStatusCompleted {
		t.Errorf("Expected completed status, got %v", react.GetStatus())
	}
}

func TestReAct_Invoke_LLMError(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	expectedError := errors.New("LLM error")

	mockLLM.chatFunc = func(ctx context.Context, messages []message.Message) (message.Message, error) {
		return nil, expectedError
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	ctx := context.Background()
	result, err := react.Run(ctx, "Hello")

	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if result != nil {
		t.Error("Expected nil result on error")
	}

	if !errors.Is(err, expectedError) {
		t.Errorf("Expected wrapped LLM error, got %v", err)
	}
}

func TestReAct_Invoke_ToolError(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	toolCallMessage := message.NewToolCallMessage(
		message.ToolName("view"),
		message.ToolArgumentValues{"path": "/x"},
	)

	mockLLM.chatFunc = func(ctx context.Context, messages []message.Message) (message.Message, error) {
		return toolCallMessage, nil
	}

	expectedError := errors.New("tool error")

	mockToolManager.callToolFunc = func(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
		return message.ToolResult{}, expectedError
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	ctx := context.Background()
	result, err := react.Run(ctx, "View a file")

	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if result != nil {
		t.Error("Expected nil result on error")
	}

	// Tool errors are captured in tool results, not agent failures; the loop
	// keeps going until it hits the iteration cap.
	if !strings.Contains(err.Error(), "exceeded maximum loop limit") {
		t.Errorf("Expected error to contain 'exceeded maximum loop limit', got '%v'", err)
	}
}

// Mock message type that doesn't match ChatMessage or ToolCallMessage
type unexpectedMessage struct {
	id      string
	content string
}

func (u *unexpectedMessage) ID() string                    { return u.id }
func (u *unexpectedMessage) Type() message.MessageType     { return message.MessageTypeSystem }
func (u *unexpectedMessage) Content() string               { return u.content }
func (u *unexpectedMessage) Timestamp() time.Time          { return time.Now() }
func (u *unexpectedMessage) Images() []string              { return nil }
func (u *unexpectedMessage) Source() message.MessageSource { return message.MessageSourceDefault }
func (u *unexpectedMessage) String() string                { return fmt.Sprintf("unexpectedMessage: %s", u.content) }
func (u *unexpectedMessage) TruncatedString() string {
	return fmt.Sprintf("[unexpected] %s", u.content)
}
func (u *unexpectedMessage) Metadata() map[string]any {
	return nil
}

// Token usage methods (required by Message interface)
func (u *unexpectedMessage) InputTokens() int                                         { return 0 }
func (u *unexpectedMessage) OutputTokens() int                                        { return 0 }
func (u *unexpectedMessage) TotalTokens() int                                         { return 0 }
func (u *unexpectedMessage) SetTokenUsage(inputTokens, outputTokens, totalTokens int) {}

func TestReAct_Invoke_UnexpectedResponseType(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	// Create a message with unexpected type that doesn't match the switch cases
	unexpectedMsg := &unexpectedMessage{
		id:      "test-id",
		content: "unexpected message",
	}

	mockLLM.chatFunc = func(ctx context.Context, messages []message.Message) (message.Message, error) {
		return unexpectedMsg, nil
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	ctx := context.Background()
	result, err := react.Run(ctx, "Hello")

	if err == nil {
		t.Fatal("Expected error for unexpected response type, got nil")
	}

	if result != nil {
		t.Error("Expected nil result on error")
	}

	expectedError := "unexpected response type: *react.unexpectedMessage"
	if !strings.Contains(err.Error(), expectedError) {
		t.Errorf("Expected error to contain '%s', got '%s'", expectedError, err.Error())
	}
}

func TestReAct_handleToolCall(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	toolCallMessage := message.NewToolCallMessage(
		message.ToolName("view"),
		message.ToolArgumentValues{"path": "/attachments/report.txt"},
	)

	mockToolManager.callToolFunc = func(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
		if name != "view" {
			t.Errorf("Expected tool name 'view', got '%s'", name)
		}

		if args["path"] != "/attachments/report.txt" {
			t.Errorf("Expected path='/attachments/report.txt', got '%v'", args["path"])
		}

		return message.NewToolResultText("tool result"), nil
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	ctx := context.Background()
	result, err := react.handleToolCall(ctx, toolCallMessage)

	if err != nil {
		t.Fatalf("handleToolCall returned error: %v", err)
	}

	if result == nil {
		t.Fatal("handleToolCall returned nil result")
	}

	if result.Type() != message.MessageTypeToolResult {
		t.Errorf("Expected ToolResultMessage, got %v", result.Type())
	}

	// Check if it's a ToolResultMessage and verify content
	if toolResultMsg, ok := result.(*message.ToolResultMessage); ok {
		if toolResultMsg.Result != "tool result" {
			t.Errorf("Expected 'tool result', got '%s'", toolResultMsg.Result)
		}

		if toolResultMsg.Error != "" {
			t.Errorf("Expected empty error, got '%s'", toolResultMsg.Error)
		}
	} else {
		t.Error("Result is not a ToolResultMessage")
	}
}

func TestReAct_handleToolCall_Error(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	toolCallMessage := message.NewToolCallMessage(
		message.ToolName("view"),
		message.ToolArgumentValues{"path": "/x"},
	)

	expectedError := errors.New("tool execution failed")

	mockToolManager.callToolFunc = func(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
		return message.ToolResult{}, expectedError
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	ctx := context.Background()
	result, err := react.handleToolCall(ctx, toolCallMessage)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result == nil {
		t.Fatal("Expected result, got nil")
	}

	// Check that the result contains the error message
	if !strings.Contains(result.Content(), "Tool execution failed: tool execution failed") {
		t.Errorf("Expected result to contain 'Tool execution failed: tool execution failed', got %v", result.Content())
	}
}

// Test that state is properly managed across multiple invocations
func TestReAct_StateManagement(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	callCount := 0
	mockLLM.chatFunc = func(ctx context.Context, messages []message.Message) (message.Message, error) {
		callCount++
		// Each call adds a user message first, then calls LLM with all messages
		expectedCount := callCount*2 - 1
		if len(messages) != expectedCount {
			t.Errorf("Call %d: Expected %d messages, got %d", callCount, expectedCount, len(messages))
		}

		return message.NewChatMessage(message.MessageTypeAssistant, "response "+string(rune(callCount+'0'))), nil
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	ctx := context.Background()

	// First invocation
	_, err := react.Run(ctx, "Hello")
	if err != nil {
		t.Fatalf("First invoke error: %v", err)
	}

	// Second invocation - should have previous messages
	_, err = react.Run(ctx, "How are you?")
	if err != nil {
		t.Fatalf("Second invoke error: %v", err)
	}

	// Verify final state
	messages := react.state.GetMessages()
	if len(messages) != 4 { // 2 user + 2 assistant
		t.Errorf("Expected 4 messages in final state, got %d", len(messages))
	}
}

func TestReAct_ToolCallBatch(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	call1 := message.NewToolCallMessage("ls", message.ToolArgumentValues{"path": "/attachments"})
	call2 := message.NewToolCallMessage("ls", message.ToolArgumentValues{"path": "/history"})

	callCount := 0
	mockLLM.chatFunc = func(ctx context.Context, messages []message.Message) (message.Message, error) {
		callCount++
		if callCount == 1 {
			return message.NewToolCallBatch([]*message.ToolCallMessage{call1, call2}), nil
		}
		return message.NewChatMessage(message.MessageTypeAssistant, "Both listed"), nil
	}

	var calledPaths []string
	mockToolManager.callToolFunc = func(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
		calledPaths = append(calledPaths, args["path"].(string))
		return message.NewToolResultText("ok"), nil
	}

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	result, err := react.Run(context.Background(), "List both directories")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Content() != "Both listed" {
		t.Errorf("Expected final answer, got %q", result.Content())
	}
	if len(calledPaths) != 2 || calledPaths[0] != "/attachments" || calledPaths[1] != "/history" {
		t.Errorf("Expected both batch calls executed in order, got %v", calledPaths)
	}

	// user + 2x(call+result) + assistant
	if got := len(react.state.GetMessages()); got != 6 {
		t.Errorf("Expected 6 messages in state, got %d", got)
	}
}

func TestReAct_Cancellation(t *testing.T) {
	mockLLM := &mockLLM{}
	mockToolManager := &mockToolManager{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	react, _ := NewReAct(mockLLM, mockToolManager, state.NewMessageState(), 10)

	_, err := react.Run(ctx, "Hello")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
