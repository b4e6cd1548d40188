// Package state holds the turn-scoped conversation history for the agent
// loop. State is in-memory only; archived history is served back through the
// filesystem tools, not restored here.
package state

import (
	"github.com/fpt/contextfs/pkg/message"
)

// Chat context with conversation history
type MessageState struct {
	Messages []message.Message
	Metadata map[string]any
}

// NewMessageState creates a new message state
func NewMessageState() *MessageState {
	return &MessageState{
		Messages: make([]message.Message, 0),
		Metadata: make(map[string]interface{}),
	}
}

func (c *MessageState) GetMessages() []message.Message {
	return c.Messages
}

// AddMessage adds a message to the context
func (c *MessageState) AddMessage(msg message.Message) {
	c.Messages = append(c.Messages, msg)
}

// GetLastMessage returns the last message in the context
func (c *MessageState) GetLastMessage() message.Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Clear clears all messages from the context
func (c *MessageState) Clear() {
	c.Messages = make([]message.Message, 0)
}

// GetTotalTokenUsage returns the summed token usage across all messages
func (c *MessageState) GetTotalTokenUsage() (inputTokens, outputTokens, totalTokens int) {
	for _, msg := range c.Messages {
		inputTokens += msg.InputTokens()
		outputTokens += msg.OutputTokens()
		totalTokens += msg.TotalTokens()
	}
	return inputTokens, outputTokens, totalTokens
}
