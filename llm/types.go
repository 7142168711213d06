package llm

import (
	"github.com/samber/lo"
)

// Role represents the author of a transcript turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage represents a single turn in a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Sampling holds the fixed generation parameters for one kind of call.
type Sampling struct {
	Temperature float64
	MaxTokens   int
}

var (
	// AnalyzeSampling is used for single-move commentary.
	AnalyzeSampling = Sampling{Temperature: 0.5, MaxTokens: 200}
	// ChatSampling is used for conversational turns.
	ChatSampling = Sampling{Temperature: 0.7, MaxTokens: 1500}
)

// ValidationMaxTokens caps the completion used to probe a credential.
const ValidationMaxTokens = 1

// ValidationPrompt is the user turn sent when probing a credential.
const ValidationPrompt = "Hi"

// NewMessage creates a text turn.
func NewMessage(role Role, content string) ChatMessage {
	return ChatMessage{Role: role, Content: content}
}

// SplitSystem separates the first system turn from the rest of the transcript.
// Backends that take the system prompt as a dedicated field use this; any
// further system turns are dropped.
func SplitSystem(msgs []ChatMessage) (string, []ChatMessage) {
	var system string
	if m, ok := lo.Find(msgs, func(m ChatMessage) bool { return m.Role == RoleSystem }); ok {
		system = m.Content
	}
	turns := lo.Filter(msgs, func(m ChatMessage, _ int) bool { return m.Role != RoleSystem })
	return system, turns
}

// VisibleMessages returns the transcript without system turns.
func VisibleMessages(msgs []ChatMessage) []ChatMessage {
	_, turns := SplitSystem(msgs)
	return turns
}
