package analysis

import (
	"fmt"
	"slices"

	"github.com/aschepis/backscratcher/chessinsight/game"
	"github.com/samber/lo"
)

// Score is an evaluation of the position reached by a move.
type Score struct {
	CP    *int
	Mate  *int
	Depth int
}

// EngineLine is one ranked engine line in both notations.
type EngineLine struct {
	PV      []string
	PVSAN   []string
	CP      *int
	Mate    *int
	Depth   int
	MultiPV int
}

// MoveAnalysisRequest describes one played move for commentary generation.
type MoveAnalysisRequest struct {
	MoveIndex      int
	SAN            string
	FEN            string // position before the move
	Color          game.Color
	MoveNumber     int
	Classification MoveClassification
	Opening        string
	Eval           Score
	Lines          []EngineLine // ordered by MultiPV ascending
	BestMove       string
	BestMoveSAN    string
}

// Label renders the move as "12. Nf3" for the first side of a move pair or
// "12... Nc6" for the second.
func (r *MoveAnalysisRequest) Label() string {
	dot := "."
	if r.Color == game.Black {
		dot = "..."
	}
	return fmt.Sprintf("%d%s %s", r.MoveNumber, dot, r.SAN)
}

// SANConverter converts machine-notation move sequences to algebraic notation
// anchored at a position.
type SANConverter interface {
	LineToSAN(fen string, uci []string) []string
}

// RequestBuilder derives move analysis requests from a game evaluation.
type RequestBuilder struct {
	notation SANConverter
}

// NewRequestBuilder creates a RequestBuilder using notation for conversion.
func NewRequestBuilder(notation SANConverter) *RequestBuilder {
	return &RequestBuilder{notation: notation}
}

// Build returns one request per played move, in play order. It fails only when
// the evaluation does not cover the history. History entries that are missing
// are skipped.
func (b *RequestBuilder) Build(eval *GameEval, history []game.Move) ([]*MoveAnalysisRequest, error) {
	if eval == nil {
		return nil, fmt.Errorf("game evaluation is required")
	}
	if eval.MoveCount() < len(history) {
		return nil, fmt.Errorf("evaluation covers %d moves but history has %d", eval.MoveCount(), len(history))
	}

	first := game.White
	if len(history) > 0 && history[0].Color != "" {
		first = history[0].Color
	}

	requests := make([]*MoveAnalysisRequest, 0, len(history))
	for i := 1; i < len(eval.Positions); i++ {
		moveIndex := i - 1
		if moveIndex >= len(history) || history[moveIndex].SAN == "" {
			continue
		}
		move := history[moveIndex]
		pos := eval.Positions[i]

		color := first
		if moveIndex%2 == 1 {
			color = first.Other()
		}

		req := &MoveAnalysisRequest{
			MoveIndex:      moveIndex,
			SAN:            move.SAN,
			FEN:            move.Before,
			Color:          color,
			MoveNumber:     moveIndex/2 + 1,
			Classification: pos.MoveClassification,
			Opening:        pos.Opening,
			Lines:          b.convertLines(move.Before, pos.Lines),
			BestMove:       pos.BestMove,
		}
		if len(req.Lines) > 0 {
			best := req.Lines[0]
			req.Eval = Score{CP: best.CP, Mate: best.Mate, Depth: best.Depth}
		}
		if pos.BestMove != "" {
			if san := b.notation.LineToSAN(move.Before, []string{pos.BestMove}); len(san) > 0 {
				req.BestMoveSAN = san[0]
			}
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (b *RequestBuilder) convertLines(fen string, lines []LineEval) []EngineLine {
	out := lo.Map(lines, func(line LineEval, _ int) EngineLine {
		el := EngineLine{
			PV:      append([]string(nil), line.PV...),
			PVSAN:   b.notation.LineToSAN(fen, line.PV),
			CP:      line.CP,
			Mate:    line.Mate,
			Depth:   line.Depth,
			MultiPV: line.MultiPV,
		}
		if el.Mate != nil {
			el.CP = nil
		}
		return el
	})
	slices.SortStableFunc(out, func(a, b EngineLine) int {
		return a.MultiPV - b.MultiPV
	})
	return out
}
