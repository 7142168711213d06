package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/aschepis/backscratcher/chessinsight/game"
	"github.com/aschepis/backscratcher/chessinsight/insight"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// insightService implements InsightService by wrapping an insight.Orchestrator
type insightService struct {
	orchestrator *insight.Orchestrator
	provider     llm.ProviderConfig
	game         *game.Game
	eval         *analysis.GameEval
	credential   string
	logger       zerolog.Logger

	mu       sync.RWMutex
	analyses map[int]string
}

// NewInsightService creates an InsightService for one game. The credential
// is passed through to every provider call.
func NewInsightService(logger zerolog.Logger, orchestrator *insight.Orchestrator, provider llm.ProviderConfig, g *game.Game, eval *analysis.GameEval, credential string) InsightService {
	return &insightService{
		orchestrator: orchestrator,
		provider:     provider,
		game:         g,
		eval:         eval,
		credential:   credential,
		logger:       logger.With().Str("component", "insightService").Logger(),
	}
}

// Analyze runs the orchestrator over the configured game.
func (s *insightService) Analyze(ctx context.Context, onProgress ProgressCallback) (*insight.Result, error) {
	s.mu.Lock()
	s.analyses = nil
	credential := s.credential
	s.mu.Unlock()

	in := insight.Input{Eval: s.eval, Game: s.game, Credential: credential}
	result, err := s.orchestrator.Run(ctx, in, insight.ProgressFunc(onProgress))
	if result != nil {
		s.mu.Lock()
		s.analyses = result.MoveAnalyses
		s.mu.Unlock()
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("state", string(s.orchestrator.State())).Msg("Analysis did not complete")
	}
	return result, err
}

// Ask forwards a question to the chat session.
func (s *insightService) Ask(ctx context.Context, question string) (string, error) {
	s.mu.RLock()
	credential := s.credential
	s.mu.RUnlock()
	return s.orchestrator.Session().Ask(ctx, question, credential)
}

// Transcript returns the visible conversation.
func (s *insightService) Transcript() []llm.ChatMessage {
	return s.orchestrator.Session().Visible()
}

// MoveLabels returns display labels for the played moves.
func (s *insightService) MoveLabels() []string {
	return lo.Map(s.game.Moves, func(m game.Move, i int) string {
		dot := "."
		if m.Color == game.Black {
			dot = "..."
		}
		return fmt.Sprintf("%d%s %s", i/2+1, dot, m.SAN)
	})
}

// MoveInsight returns the commentary for moveIndex.
func (s *insightService) MoveInsight(moveIndex int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.analyses[moveIndex]
	return text, ok
}

// State returns the orchestrator state.
func (s *insightService) State() insight.State {
	return s.orchestrator.State()
}

// UseProvider switches provider and credential.
func (s *insightService) UseProvider(provider llm.Provider, credential string) {
	s.orchestrator.SetProvider(provider)
	s.mu.Lock()
	s.provider = provider.Config()
	s.credential = credential
	s.mu.Unlock()
}

// Info describes the session.
func (s *insightService) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionInfo{
		Provider: s.provider.Name,
		Model:    s.provider.Model,
		Game:     s.game.Metadata(),
		Moves:    len(s.game.Moves),
	}
}
