package game

import (
	"strings"

	"github.com/corentings/chess/v2"
)

// Notation converts engine lines between machine and algebraic notation using
// github.com/corentings/chess.
type Notation struct{}

// castlingRewrites maps king-takes-rook encodings to the standard king move.
var castlingRewrites = map[string]string{
	"e1h1": "e1g1",
	"e1a1": "e1c1",
	"e8h8": "e8g8",
	"e8a8": "e8c8",
}

// NormalizeCastling rewrites king-takes-rook castling moves to the standard
// two-square king move when a king stands on the origin square.
func NormalizeCastling(pos *chess.Position, uci string) string {
	target, ok := castlingRewrites[uci]
	if !ok || pos == nil {
		return uci
	}
	piece := pos.Board().Piece(squareOf(uci[:2]))
	if piece.Type() != chess.King {
		return uci
	}
	return target
}

func squareOf(name string) chess.Square {
	file := chess.File(name[0] - 'a')
	rank := chess.Rank(name[1] - '1')
	return chess.NewSquare(file, rank)
}

// gameFromFEN builds a game anchored at fen.
func gameFromFEN(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, err
	}
	return chess.NewGame(opt), nil
}

// LineToSAN converts a sequence of machine-notation moves to algebraic
// notation starting from fen. Moves that cannot be decoded are kept in
// machine notation, and the board stops advancing from that point on.
func (Notation) LineToSAN(fen string, uci []string) []string {
	out := make([]string, 0, len(uci))
	g, err := gameFromFEN(fen)
	if err != nil {
		return append(out, uci...)
	}

	stuck := false
	for _, raw := range uci {
		mv := strings.ToLower(strings.TrimSpace(raw))
		if stuck {
			out = append(out, mv)
			continue
		}
		pos := g.Position()
		mv = NormalizeCastling(pos, mv)
		decoded, err := chess.UCINotation{}.Decode(pos, mv)
		if err != nil {
			out = append(out, mv)
			stuck = true
			continue
		}
		san := chess.AlgebraicNotation{}.Encode(pos, decoded)
		if err := g.Move(decoded, nil); err != nil {
			out = append(out, mv)
			stuck = true
			continue
		}
		out = append(out, san)
	}
	return out
}

// MoveToSAN converts a single machine-notation move from fen, falling back to
// the input when it cannot be decoded.
func (n Notation) MoveToSAN(fen, uci string) string {
	san := n.LineToSAN(fen, []string{uci})
	if len(san) == 0 {
		return uci
	}
	return san[0]
}

// LegalMoves lists the legal moves from fen in machine notation.
func LegalMoves(fen string) ([]string, error) {
	g, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}
	var moves []string
	for _, mv := range g.ValidMoves() {
		moves = append(moves, mv.String())
	}
	return moves, nil
}

// SideToMove returns the side to move in fen.
func SideToMove(fen string) (Color, error) {
	g, err := gameFromFEN(fen)
	if err != nil {
		return White, err
	}
	return colorOf(g.Position().Turn()), nil
}

// Diagram renders the position as an ASCII board.
func Diagram(fen string) (string, error) {
	g, err := gameFromFEN(fen)
	if err != nil {
		return "", err
	}
	return g.Position().Board().Draw(), nil
}
