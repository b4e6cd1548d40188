package anthropic

import (
	"testing"
)

func TestSanitizeToolNameForAnthropic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tool with dot",
			input:    "fs.view",
			expected: "fs_view",
		},
		{
			name:     "tool with colons",
			input:    "server:tool:action",
			expected: "server_tool_action",
		},
		{
			name:     "simple tool name without special chars",
			input:    "ls",
			expected: "ls",
		},
		{
			name:     "tool name with hyphens (should be preserved)",
			input:    "tool-with-hyphens",
			expected: "tool-with-hyphens",
		},
		{
			name:     "long tool name exceeding 128 chars",
			input:    "very_long_tool_name_that_exceeds_the_maximum_length_of_128_characters_and_should_be_truncated_to_fit_anthropic_api_requirements_extra_text",
			expected: "very_long_tool_name_that_exceeds_the_maximum_length_of_128_characters_and_should_be_truncated_to_fit_anthropic_api_requirements_",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "tool with consecutive double underscores",
			input:    "tool__with__double__underscores",
			expected: "tool_with_double_underscores",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeToolNameForAnthropic(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeToolNameForAnthropic(%q) = %q, want %q", tt.input, result, tt.expected)
			}

			// Verify the result matches Anthropic's pattern requirements
			if len(result) > 128 {
				t.Errorf("sanitized name %q exceeds 128 character limit (length: %d)", result, len(result))
			}

			// Check that result only contains allowed characters: alphanumeric, underscore, hyphen
			for _, r := range result {
				if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
					t.Errorf("sanitized name %q contains invalid character: %c", result, r)
				}
			}
		})
	}
}

func TestDetectImageMediaType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "png signature",
			input:    "iVBORw0KGgoAAAANSUhEUg",
			expected: "image/png",
		},
		{
			name:     "jpeg default",
			input:    "/9j/4AAQSkZJRg",
			expected: "image/jpeg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectImageMediaType(tt.input); got != tt.expected {
				t.Errorf("detectImageMediaType(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
