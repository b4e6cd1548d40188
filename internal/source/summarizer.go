package source

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fpt/contextfs/pkg/agent/domain"
	"github.com/fpt/contextfs/pkg/message"
)

// summarySampleBytes bounds how much attachment content is sent to the model.
const summarySampleBytes = 4 * 1024

// AttachmentSummary is the structured response schema for attachment
// summarization.
type AttachmentSummary struct {
	Description string `json:"description" jsonschema:"required,description=One short sentence describing what the file contains"`
}

// Summarizer fills in attachment descriptions with a structured LLM call so
// directory listings are self-describing. It is optional; attachments keep
// their existing descriptions when summarization fails.
type Summarizer struct {
	llm domain.StructuredLLM[AttachmentSummary]
}

// NewSummarizer creates a summarizer over the given structured client.
func NewSummarizer(llm domain.StructuredLLM[AttachmentSummary]) *Summarizer {
	return &Summarizer{llm: llm}
}

// Describe produces a one-line description for a single attachment.
func (s *Summarizer) Describe(ctx context.Context, att Attachment) (string, error) {
	prompt := fmt.Sprintf("Summarize the following file in one short sentence.\nName: %s\nMIME type: %s\n\n%s",
		att.Name, att.MimeType, sampleContent(att))

	summary, err := s.llm.ChatWithStructure(ctx, []message.Message{
		message.NewChatMessage(message.MessageTypeUser, prompt),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary.Description), nil
}

// DescribeAll fills empty descriptions in place. Failures are logged and the
// affected attachment is left undescribed; one bad file must not block the
// rest of the snapshot.
func (s *Summarizer) DescribeAll(ctx context.Context, attachments []Attachment) []Attachment {
	for i, att := range attachments {
		if att.Description != "" {
			continue
		}
		desc, err := s.Describe(ctx, att)
		if err != nil {
			sourceLogger.Warn("Attachment summarization failed", "name", att.Name, "error", err)
			continue
		}
		attachments[i].Description = desc
	}
	return attachments
}

// sampleContent returns a bounded, model-safe excerpt of the attachment.
func sampleContent(att Attachment) string {
	if strings.HasPrefix(att.MimeType, "image/") || !utf8.Valid(att.Data) {
		return fmt.Sprintf("(binary content, %d bytes)", len(att.Data))
	}
	data := att.Data
	truncated := false
	if len(data) > summarySampleBytes {
		data = data[:summarySampleBytes]
		truncated = true
	}
	sample := strings.ToValidUTF8(string(data), "")
	if truncated {
		sample += "\n(content truncated)"
	}
	return sample
}
