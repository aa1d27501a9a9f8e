// Package llm formats chat prompts for Llama 3.1 style models and reads
// their responses.
package llm

import "strings"

// Roles understood by chat-tuned models. Any other role string is passed
// through unchanged.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Llama 3.1 chat template tokens.
const (
	BeginOfText = "<|begin_of_text|>"
	StartHeader = "<|start_header_id|>"
	EndHeader   = "<|end_header_id|>"
	EndOfTurn   = "<|eot_id|>"
	EndOfText   = "<|end_of_text|>"
)

// endOfTurnMarkers are checked in order; the first one present wins.
var endOfTurnMarkers = [...]string{EndOfTurn, EndOfText}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FormatMessages renders messages in the Llama 3.1 chat template and leaves
// an open assistant header so the model continues as the assistant.
// An empty role is rendered as "user".
func FormatMessages(messages []Message) string {
	var b strings.Builder
	b.WriteString(BeginOfText)
	for _, m := range messages {
		role := m.Role
		if role == "" {
			role = RoleUser
		}
		writeHeader(&b, role)
		b.WriteString(m.Content)
		b.WriteString(EndOfTurn)
		b.WriteByte('\n')
	}
	writeHeader(&b, RoleAssistant)
	return b.String()
}

func writeHeader(b *strings.Builder, role string) {
	b.WriteString(StartHeader)
	b.WriteString(role)
	b.WriteString(EndHeader)
	b.WriteByte('\n')
}

// ExtractAssistantResponse returns the completion part of a raw model
// response that echoes the prompt. If fullResponse does not start with
// prompt it is returned unchanged. Otherwise the prompt is removed, the
// remainder is cut at the first end-of-turn marker found and trimmed.
func ExtractAssistantResponse(prompt, fullResponse string) string {
	resp, ok := strings.CutPrefix(fullResponse, prompt)
	if !ok {
		return fullResponse
	}
	for _, marker := range endOfTurnMarkers {
		if before, _, found := strings.Cut(resp, marker); found {
			resp = before
			break
		}
	}
	return strings.TrimSpace(resp)
}
