// Package prompt renders the text payloads sent to language model providers.
// Every function here is pure.
package prompt

import (
	"fmt"
	"strings"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
)

// MoveAnalysisSystemPrompt is the fixed instruction for single-move commentary.
const MoveAnalysisSystemPrompt = "You are a chess analysis expert. Given data about a single move in a chess game " +
	"(including Stockfish engine evaluation and principal variations), provide a concise 2-3 sentence analysis " +
	"of that move. Focus on what the move does strategically or tactically, and if it's a mistake or blunder, " +
	"explain what went wrong and why the engine's preferred line is better. Use algebraic notation when " +
	"referencing moves."

// InitialChatPrompt opens the conversation once the game context is built.
const InitialChatPrompt = "Give me a brief overview of this game in 3-5 sentences. " +
	"Highlight the key turning points and the overall flow of the game."

// FormatEval renders an evaluation. A mate score wins over a centipawn score;
// centipawns are shown in pawns with a sign and two decimals.
func FormatEval(cp, mate *int) string {
	if mate != nil {
		return fmt.Sprintf("M%d", *mate)
	}
	if cp != nil {
		sign := ""
		if *cp > 0 {
			sign = "+"
		}
		return fmt.Sprintf("%s%.2f", sign, float64(*cp)/100)
	}
	return "0.00"
}

// BuildMoveAnalysisPrompt renders one move analysis request.
func BuildMoveAnalysisPrompt(req *analysis.MoveAnalysisRequest, gameMetadata string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game: %s\n", gameMetadata)
	fmt.Fprintf(&b, "Move: %s (%s)", req.Label(), req.Color.Name())
	if req.Classification != "" {
		fmt.Fprintf(&b, " [%s]", req.Classification)
	}
	if req.Opening != "" {
		fmt.Fprintf(&b, " | Opening: %s", req.Opening)
	}
	fmt.Fprintf(&b, "\nPosition FEN: %s", req.FEN)
	fmt.Fprintf(&b, "\nEval after move: %s (depth %d)", FormatEval(req.Eval.CP, req.Eval.Mate), req.Eval.Depth)

	if len(req.Lines) > 0 {
		b.WriteString("\n\nEngine lines:")
		for _, line := range req.Lines {
			fmt.Fprintf(&b, "\n  PV%d: %s (%s, depth %d)",
				line.MultiPV, strings.Join(line.PVSAN, " "), FormatEval(line.CP, line.Mate), line.Depth)
		}
	}

	if req.BestMoveSAN != "" && req.BestMoveSAN != req.SAN {
		fmt.Fprintf(&b, "\nBest move was: %s", req.BestMoveSAN)
	}

	if req.Classification.IsError() {
		fmt.Fprintf(&b, "\n\nThis move is classified as a %s. Explain what went wrong and why the engine's preferred continuation is better.",
			req.Classification)
	}

	return b.String()
}

// ChatSystemPrompt wraps an assembled game context into the conversational
// system preamble.
func ChatSystemPrompt(gameContext string) string {
	return "You are a chess analysis assistant. You have deep knowledge of a chess game based on Stockfish " +
		"engine analysis. Use the game context below to answer the user's questions about the game, specific " +
		"moves, positions, strategies, and patterns.\n\n" +
		"Be conversational, insightful, and reference specific moves and positions when relevant. Use " +
		"algebraic notation. Keep responses focused and concise.\n\n" +
		"=== GAME CONTEXT ===\n" +
		gameContext +
		"\n=== END GAME CONTEXT ==="
}

// OpponentSystemPrompt instructs a provider to play one move.
const OpponentSystemPrompt = "You are a professional chess player. You will be given a board position, the list " +
	"of legal moves, and which color you play. Reply with ONLY `make_move <uci>` where <uci> is your chosen " +
	"move in UCI notation (e.g. e2e4). Do not include any other text."

// OpponentPrompt renders the position a provider is asked to move in.
func OpponentPrompt(colorName, diagram string, legalMoves []string) string {
	return strings.Join([]string{
		fmt.Sprintf("You play as %s.", colorName),
		"",
		"Current board:",
		diagram,
		"",
		"Legal moves: " + strings.Join(legalMoves, ", "),
		"",
		"What is your move?",
	}, "\n")
}
