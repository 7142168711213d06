package ollama

import (
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/ollama/ollama/api"
	"github.com/samber/lo"
)

// ToOllamaMessages converts a transcript to Ollama chat messages. Ollama takes
// the system prompt as the first turn.
func ToOllamaMessages(msgs []llm.ChatMessage) []api.Message {
	return lo.Map(msgs, func(msg llm.ChatMessage, _ int) api.Message {
		return api.Message{Role: string(msg.Role), Content: msg.Content}
	})
}

// samplingOptions converts sampling parameters to Ollama model options.
func samplingOptions(s llm.Sampling) map[string]any {
	return map[string]any{
		"temperature": s.Temperature,
		"num_predict": s.MaxTokens,
	}
}
