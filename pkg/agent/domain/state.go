package domain

import (
	"github.com/fpt/contextfs/pkg/message"
)

// State holds the turn-scoped conversation history. Nothing here persists
// across turns.
type State interface {
	GetMessages() []message.Message
	AddMessage(msg message.Message)
	GetLastMessage() message.Message
	Clear()
	// GetTotalTokenUsage returns the total token usage across all messages
	GetTotalTokenUsage() (inputTokens, outputTokens, totalTokens int)
}
