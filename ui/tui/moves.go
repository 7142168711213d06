package tui

import (
	"fmt"

	"github.com/rivo/tview"
)

// refreshMoves reloads the move list from the last analysis
func (a *App) refreshMoves() {
	current := a.moves.GetCurrentItem()
	a.moves.Clear()

	labels := a.service.MoveLabels()
	if len(labels) == 0 {
		a.moves.AddItem("No moves", "", 0, nil)
		return
	}
	for i, label := range labels {
		index := i
		marker := " "
		if _, ok := a.service.MoveInsight(index); ok {
			marker = "*"
		}
		a.moves.AddItem(fmt.Sprintf("%s %s", marker, label), "", 0, func() {
			a.showMoveInsight(index)
		})
	}
	a.moves.SetChangedFunc(func(index int, _, _ string, _ rune) {
		a.showMoveInsight(index)
	})
	if current > 0 && current < len(labels) {
		a.moves.SetCurrentItem(current)
	}
}

// showMoveInsight displays the commentary generated for one move
func (a *App) showMoveInsight(index int) {
	labels := a.service.MoveLabels()
	if index < 0 || index >= len(labels) {
		return
	}
	a.detail.SetTitle(fmt.Sprintf("Move %s", labels[index]))
	text, ok := a.service.MoveInsight(index)
	if !ok {
		a.detail.SetText(a.theme.MutedTag + "No commentary for this move.[-]")
		return
	}
	a.detail.SetText(tview.Escape(text))
	a.detail.ScrollToBeginning()
}
