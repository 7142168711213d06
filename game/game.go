// Package game loads played games from PGN and exposes the move history the
// insight pipeline consumes: pre-move positions, algebraic and machine
// notation for every ply, and the tag metadata header.
package game

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/corentings/chess/v2"
)

// Color is the side that made a move.
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

// Name returns "White" or "Black".
func (c Color) Name() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// Other returns the opposing side.
func (c Color) Other() Color {
	if c == Black {
		return White
	}
	return Black
}

func colorOf(c chess.Color) Color {
	if c == chess.Black {
		return Black
	}
	return White
}

// Move is one ply of a played game.
type Move struct {
	Index  int    // zero-based ply index
	SAN    string // algebraic notation
	UCI    string // machine notation
	Before string // FEN of the position before the move
	Color  Color
}

// Game is a parsed game with its tags and move history.
type Game struct {
	Tags     map[string]string
	Moves    []Move
	StartFEN string
	FinalFEN string
}

var metadataTags = []string{
	"White", "Black", "WhiteElo", "BlackElo", "Event",
	"Date", "Result", "Termination", "TimeControl",
}

var tagPattern = regexp.MustCompile(`^\s*\[(\w+)\s+"((?:[^"\\]|\\.)*)"\]\s*$`)

// LoadPGN reads the first game of a PGN file.
func LoadPGN(path string) (*Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pgn: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Parse(f)
}

// Parse reads a single PGN game and replays it to build the move history.
// A FEN tag, when present, sets the starting position.
func Parse(r io.Reader) (*Game, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pgn: %w", err)
	}

	opt, err := chess.PGN(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgn: %w", err)
	}
	cg := chess.NewGame(opt)

	g := &Game{
		Tags:     parseTags(string(raw)),
		FinalFEN: cg.FEN(),
	}

	positions := cg.Positions()
	moves := cg.Moves()
	if len(positions) > 0 {
		g.StartFEN = positions[0].String()
	}
	notation := chess.AlgebraicNotation{}
	for i, mv := range moves {
		if i >= len(positions) {
			break
		}
		pos := positions[i]
		g.Moves = append(g.Moves, Move{
			Index:  i,
			SAN:    notation.Encode(pos, mv),
			UCI:    mv.String(),
			Before: pos.String(),
			Color:  colorOf(pos.Turn()),
		})
	}
	return g, nil
}

func parseTags(pgn string) map[string]string {
	tags := make(map[string]string)
	for _, line := range strings.Split(pgn, "\n") {
		m := tagPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if _, seen := tags[m[1]]; seen {
			continue
		}
		tags[m[1]] = strings.ReplaceAll(m[2], `\"`, `"`)
	}
	return tags
}

// Metadata renders the present header tags as "Key: Value" pairs joined with
// " | ", in a fixed order.
func (g *Game) Metadata() string {
	parts := make([]string, 0, len(metadataTags))
	for _, key := range metadataTags {
		if v := g.Tags[key]; v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", key, v))
		}
	}
	return strings.Join(parts, " | ")
}

// FirstMover returns the side that made the first move. Games without moves
// report White.
func (g *Game) FirstMover() Color {
	if len(g.Moves) == 0 {
		return White
	}
	return g.Moves[0].Color
}
