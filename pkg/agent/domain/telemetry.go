package domain

import (
	"github.com/fpt/contextfs/pkg/message"
)

// TokenUsageProvider is an optional extension that LLM clients can implement
// to expose token accounting information from the most recent API call.
//
// Implementations should return (usage, true) when token usage was available
// for the last Chat/ChatWithToolChoice/ChatWithStructure invocation, and
// (message.TokenUsage{}, false) if unavailable.
//
// Callers should treat this as a best-effort signal and not rely on it for
// strict billing; backends may omit or delay usage reporting.
type TokenUsageProvider interface {
	LastTokenUsage() (message.TokenUsage, bool)
}
