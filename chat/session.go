// Package chat holds the follow-up conversation about an analysed game.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/prompt"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNoContext     = errors.New("no game context has been established")
	ErrBusy          = errors.New("a chat request is already pending")
)

// Session is an ordered transcript anchored on a game context. The transcript
// slice is replaced on every turn, never modified in place, so a snapshot
// returned by Messages stays consistent.
type Session struct {
	mu          sync.RWMutex
	provider    llm.Provider
	transcript  []llm.ChatMessage
	gameContext string
	pending     bool
	generation  uint64
	logger      zerolog.Logger
}

// NewSession creates an empty session answering through provider.
func NewSession(provider llm.Provider, logger zerolog.Logger) *Session {
	return &Session{
		provider: provider,
		logger:   logger.With().Str("component", "chat").Logger(),
	}
}

// SetProvider switches the provider used for subsequent turns.
func (s *Session) SetProvider(provider llm.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = provider
}

// Reset discards the transcript and the game context. A reply to a request
// issued before the reset is dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.gameContext = ""
	s.pending = false
	s.generation++
}

// Seed establishes gameContext and starts the transcript with the system
// preamble built from it. A reply to a request issued before the seed is
// dropped.
func (s *Session) Seed(gameContext string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameContext = gameContext
	s.transcript = []llm.ChatMessage{llm.NewMessage(llm.RoleSystem, prompt.ChatSystemPrompt(gameContext))}
	s.pending = false
	s.generation++
	s.logger.Debug().Int("context_length", len(gameContext)).Msg("Session seeded")
}

// Messages returns a copy of the full transcript.
func (s *Session) Messages() []llm.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]llm.ChatMessage(nil), s.transcript...)
}

// Visible returns the transcript without the system preamble.
func (s *Session) Visible() []llm.ChatMessage {
	return llm.VisibleMessages(s.Messages())
}

// GameContext returns the context the session is anchored on.
func (s *Session) GameContext() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameContext
}

// Pending reports whether a question is awaiting its answer.
func (s *Session) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Ask sends question with the whole transcript and appends the question and
// its answer on success. On failure or cancellation the transcript is left
// unchanged.
func (s *Session) Ask(ctx context.Context, question, credential string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	s.mu.Lock()
	if s.gameContext == "" {
		s.mu.Unlock()
		return "", ErrNoContext
	}
	if s.pending {
		s.mu.Unlock()
		return "", ErrBusy
	}
	base := s.transcript
	if len(base) == 0 || base[0].Role != llm.RoleSystem {
		base = append([]llm.ChatMessage{llm.NewMessage(llm.RoleSystem, prompt.ChatSystemPrompt(s.gameContext))}, base...)
	}
	next := make([]llm.ChatMessage, 0, len(base)+2)
	next = append(next, base...)
	next = append(next, llm.NewMessage(llm.RoleUser, question))
	provider := s.provider
	generation := s.generation
	s.pending = true
	s.mu.Unlock()

	s.logger.Debug().Int("turns", len(next)).Msg("Asking question")
	reply, err := provider.Chat(ctx, next, credential)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		// Reset or reseeded while the request was in flight.
		if err != nil {
			return "", err
		}
		return "", llm.ErrCancelled
	}
	s.pending = false
	if err != nil {
		return "", err
	}
	s.transcript = append(next, llm.NewMessage(llm.RoleAssistant, reply))
	return reply, nil
}
