// Package opponent asks a language model provider to pick a move.
package opponent

import (
	"context"
	"regexp"
	"strings"

	"github.com/aschepis/backscratcher/chessinsight/game"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/prompt"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var makeMovePattern = regexp.MustCompile(`(?i)make_move\s+([a-h][1-8][a-h][1-8][qrbn]?)`)

// Move asks provider for a move in the position fen. It returns the move in
// machine notation and true only when the reply names a legal move.
func Move(ctx context.Context, provider llm.Provider, credential, fen string, logger zerolog.Logger) (string, bool) {
	logger = logger.With().Str("component", "opponent").Logger()

	legal, err := game.LegalMoves(fen)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid position")
		return "", false
	}
	if len(legal) == 0 {
		logger.Debug().Msg("No legal moves in position")
		return "", false
	}
	side, err := game.SideToMove(fen)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid position")
		return "", false
	}
	diagram, err := game.Diagram(fen)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid position")
		return "", false
	}

	messages := []llm.ChatMessage{
		llm.NewMessage(llm.RoleSystem, prompt.OpponentSystemPrompt),
		llm.NewMessage(llm.RoleUser, prompt.OpponentPrompt(side.Name(), diagram, legal)),
	}
	reply, err := provider.Chat(ctx, messages, credential)
	if err != nil {
		logger.Warn().Err(err).Msg("Opponent request failed")
		return "", false
	}

	move, ok := ParseMove(reply)
	if !ok {
		logger.Warn().Str("reply", reply).Msg("No move found in reply")
		return "", false
	}
	if !lo.Contains(legal, move) {
		logger.Warn().Str("move", move).Msg("Opponent chose an illegal move")
		return "", false
	}
	return move, true
}

// ParseMove extracts the first "make_move <uci>" command from a reply.
func ParseMove(reply string) (string, bool) {
	m := makeMovePattern.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}
