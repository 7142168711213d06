package anthropic

import (
	"encoding/json"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/samber/lo"
)

// ToMessageParams converts non-system transcript turns to Anthropic message
// params. System turns must be split off first with llm.SplitSystem.
func ToMessageParams(msgs []llm.ChatMessage) []anthropic.MessageParam {
	return lo.Map(msgs, func(msg llm.ChatMessage, _ int) anthropic.MessageParam {
		return ToMessageParam(msg)
	})
}

// ToMessageParam converts a single transcript turn.
func ToMessageParam(msg llm.ChatMessage) anthropic.MessageParam {
	if msg.Role == llm.RoleAssistant {
		return anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content))
	}
	return anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content))
}

// buildSystemBlocks wraps the system prompt in the dedicated system field.
func buildSystemBlocks(systemPrompt string) []anthropic.TextBlockParam {
	if systemPrompt == "" {
		return nil
	}
	return []anthropic.TextBlockParam{{Text: systemPrompt}}
}

// firstText returns the text of the first text block of a reply.
func firstText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	for _, blockUnion := range msg.Content {
		if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
			return block.Text
		}
	}
	return ""
}

// errorBodyMessage extracts error.message from an Anthropic error body.
func errorBodyMessage(raw string) string {
	if raw == "" {
		return ""
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return ""
	}
	return body.Error.Message
}
