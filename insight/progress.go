package insight

import (
	"math"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/samber/lo"
)

// MaxProgress is the asymptote of the progress curve. Progress never reaches
// 100 while context is being built.
const MaxProgress = 99.0

// progressRate sets how quickly the curve approaches MaxProgress.
const progressRate = 4.0

// Progress returns the reported percentage after completed of total items:
// 99 - 99*e^(-4*completed/total).
func Progress(completed, total int) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return MaxProgress - MaxProgress*math.Exp(-progressRate*float64(completed)/float64(total))
}

// skipped classifications get a compact line and no provider call.
var skipped = []analysis.MoveClassification{
	analysis.Opening,
	analysis.Forced,
	analysis.Best,
	analysis.Excellent,
}

// ShouldSkip reports whether a move with classification c needs no commentary.
func ShouldSkip(c analysis.MoveClassification) bool {
	return lo.Contains(skipped, c)
}
