package ui

import (
	"context"

	"github.com/aschepis/backscratcher/chessinsight/insight"
	"github.com/aschepis/backscratcher/chessinsight/llm"
)

// ProgressCallback receives the context building progress in [0, 99].
type ProgressCallback func(percent float64)

// InsightService provides an interface for front ends to drive the analysis
// of one game without coupling to the orchestrator.
type InsightService interface {
	// Analyze builds the game context and requests the opening overview.
	// A previous transcript is discarded.
	Analyze(ctx context.Context, onProgress ProgressCallback) (*insight.Result, error)

	// Ask sends a follow-up question and returns the answer.
	Ask(ctx context.Context, question string) (string, error)

	// Transcript returns the visible conversation (no system preamble).
	Transcript() []llm.ChatMessage

	// MoveLabels returns display labels for the played moves, "1. e4" or
	// "1... e5", indexed like MoveInsight.
	MoveLabels() []string

	// MoveInsight returns the generated commentary for a move index from the
	// last successful run.
	MoveInsight(moveIndex int) (string, bool)

	// State returns the orchestrator state.
	State() insight.State

	// Info describes the game and provider for display.
	Info() SessionInfo

	// UseProvider switches the provider and credential for subsequent runs
	// and questions.
	UseProvider(provider llm.Provider, credential string)
}

// SessionInfo provides basic information about the analysis session for UI display.
type SessionInfo struct {
	Provider string // display name, e.g. "OpenAI"
	Model    string
	Game     string // metadata header of the game
	Moves    int
}

// ErrorTitle returns the heading shown for err: the error kind title for
// provider errors, "Analysis Failed" otherwise.
func ErrorTitle(err error) string {
	if aErr, ok := llm.AsAnalysisError(err); ok {
		return aErr.Kind.Title()
	}
	return llm.ErrorKindUnknown.Title()
}

// ErrorMessage returns the user-facing message for err.
func ErrorMessage(err error) string {
	if aErr, ok := llm.AsAnalysisError(err); ok {
		return aErr.Message
	}
	return err.Error()
}
