// Package analysis holds the engine evaluation model of a finished game and
// derives the per-move analysis requests sent to language model providers.
package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
)

// MoveClassification is the quality label the evaluator attached to a move.
type MoveClassification string

const (
	Blunder    MoveClassification = "blunder"
	Mistake    MoveClassification = "mistake"
	Inaccuracy MoveClassification = "inaccuracy"
	Okay       MoveClassification = "okay"
	Excellent  MoveClassification = "excellent"
	Best       MoveClassification = "best"
	Forced     MoveClassification = "forced"
	Opening    MoveClassification = "opening"
	Perfect    MoveClassification = "perfect"
	Splendid   MoveClassification = "splendid"
)

var errorClassifications = []MoveClassification{Inaccuracy, Mistake, Blunder}

// IsError reports whether the classification marks an inaccuracy, mistake or
// blunder.
func (c MoveClassification) IsError() bool {
	return lo.Contains(errorClassifications, c)
}

// LineEval is one scored principal variation. At most one of CP and Mate is set.
type LineEval struct {
	PV      []string `json:"pv"`
	CP      *int     `json:"cp,omitempty"`
	Mate    *int     `json:"mate,omitempty"`
	Depth   int      `json:"depth"`
	MultiPV int      `json:"multiPv"`
}

// PositionEval is the engine evaluation of a single position.
type PositionEval struct {
	Lines              []LineEval         `json:"lines"`
	BestMove           string             `json:"bestMove,omitempty"`
	MoveClassification MoveClassification `json:"moveClassification,omitempty"`
	Opening            string             `json:"opening,omitempty"`
}

// Accuracy is the per-side accuracy percentage.
type Accuracy struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

// EstimatedElo is the per-side playing strength estimate.
type EstimatedElo struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

// GameEval is the completed evaluation of a game: one PositionEval per
// position, starting position included.
type GameEval struct {
	Positions    []PositionEval `json:"positions"`
	Accuracy     Accuracy       `json:"accuracy"`
	EstimatedElo *EstimatedElo  `json:"estimatedElo,omitempty"`
}

// MoveCount returns the number of plies the evaluation covers.
func (e *GameEval) MoveCount() int {
	if len(e.Positions) == 0 {
		return 0
	}
	return len(e.Positions) - 1
}

// DecodeGameEval reads a JSON encoded GameEval.
func DecodeGameEval(r io.Reader) (*GameEval, error) {
	var eval GameEval
	if err := json.NewDecoder(r).Decode(&eval); err != nil {
		return nil, fmt.Errorf("failed to decode game evaluation: %w", err)
	}
	return &eval, nil
}

// LoadGameEval reads a JSON encoded GameEval from path.
func LoadGameEval(path string) (*GameEval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open game evaluation: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return DecodeGameEval(f)
}
