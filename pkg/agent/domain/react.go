package domain

import (
	"context"

	"github.com/fpt/contextfs/pkg/message"
)

type AgentStatus string

const (
	AgentStatusRunning   = AgentStatus("running")
	AgentStatusCompleted = AgentStatus("completed")
)

type ReAct interface {
	// Run sends a prompt to the ReAct model and returns the response.
	// Optional images are base64-encoded attachments for vision models.
	Run(ctx context.Context, prompt string, images ...string) (message.Message, error)
	Close()
	GetStatus() AgentStatus
	GetLastMessage() message.Message
	ClearHistory()
}
