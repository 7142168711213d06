package openai

import (
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"
)

// ToOpenAIMessages converts a transcript to OpenAI chat message format.
// The system turn stays in the message list, which is how chat-completions
// backends expect it.
func ToOpenAIMessages(msgs []llm.ChatMessage) []openai.ChatCompletionMessage {
	return lo.Map(msgs, func(msg llm.ChatMessage, _ int) openai.ChatCompletionMessage {
		return ToOpenAIMessage(msg)
	})
}

// ToOpenAIMessage converts a single transcript turn to OpenAI format.
func ToOpenAIMessage(msg llm.ChatMessage) openai.ChatCompletionMessage {
	var role string
	switch msg.Role {
	case llm.RoleSystem:
		role = openai.ChatMessageRoleSystem
	case llm.RoleAssistant:
		role = openai.ChatMessageRoleAssistant
	default:
		role = openai.ChatMessageRoleUser
	}
	return openai.ChatCompletionMessage{Role: role, Content: msg.Content}
}
