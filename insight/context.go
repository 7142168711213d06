package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
)

const (
	metadataHeader = "=== Game Metadata ==="
	analysisHeader = "=== Move-by-Move Analysis ==="
)

// moveLine renders one entry of the move-by-move section. An empty text gives
// the compact form used for skipped moves.
func moveLine(req *analysis.MoveAnalysisRequest, text string) string {
	line := "Move " + req.Label()
	if req.Classification != "" {
		line += fmt.Sprintf(" (%s)", req.Classification)
	}
	if text != "" {
		line += ": " + text
	}
	return line
}

// assembleContext joins the metadata header, the aggregate summary and the
// move lines into the game context handed to the chat session.
func assembleContext(metadata string, eval *analysis.GameEval, lines []string) string {
	parts := make([]string, 0, len(lines)+6)
	parts = append(parts,
		metadataHeader,
		metadata,
		fmt.Sprintf("White accuracy: %.1f%% | Black accuracy: %.1f%%", eval.Accuracy.White, eval.Accuracy.Black),
	)
	if elo := eval.EstimatedElo; elo != nil {
		parts = append(parts, fmt.Sprintf("Estimated ELO — White: %d, Black: %d",
			int(math.Round(elo.White)), int(math.Round(elo.Black))))
	}
	parts = append(parts, "", analysisHeader)
	parts = append(parts, lines...)
	return strings.Join(parts, "\n")
}
