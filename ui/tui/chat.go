package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/aschepis/backscratcher/chessinsight/chat"
	"github.com/aschepis/backscratcher/chessinsight/insight"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/ui"
)

// startAnalysis cancels whatever is running and analyses the game again from
// scratch. A new run waits for the previous one to wind down.
func (a *App) startAnalysis() {
	ctx := a.beginOperation()

	a.mu.Lock()
	prev := a.analysisDone
	done := make(chan struct{})
	a.analysisDone = done
	a.mu.Unlock()

	a.transcript.Clear()
	a.detail.Clear()
	a.setStatus("Building AI context... 0%")

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		a.runAnalysis(ctx)
	}()
}

// runAnalysis processes one analysis run in the background
func (a *App) runAnalysis(ctx context.Context) {
	result, err := a.service.Analyze(ctx, func(percent float64) {
		a.app.QueueUpdateDraw(func() {
			a.setStatus(fmt.Sprintf("Building AI context... %d%%", int(percent)))
		})
	})

	a.app.QueueUpdateDraw(func() {
		switch {
		case err == nil:
			a.renderTranscript()
			a.refreshMoves()
			a.setStatus("Ready. Ask a question about the game.")
		case llm.IsCancelled(err) && result != nil:
			a.renderTranscript()
			a.refreshMoves()
			a.setStatus("Overview cancelled. Ask a question or press Ctrl-R to re-run.")
		case llm.IsCancelled(err):
			a.transcript.Clear()
			a.setStatus("Analysis cancelled. Press Ctrl-R to start again.")
		default:
			a.transcript.Clear()
			a.showError(err)
			if result != nil {
				a.refreshMoves()
				a.setStatus("Game context is ready but the overview failed. You can still ask questions.")
			} else {
				a.setStatus("Analysis failed. Press Ctrl-R to retry or Ctrl-S to change settings.")
			}
		}
	})

	if err == nil {
		a.notifyReady()
	}
}

// submitQuestion sends a follow-up question unless an analysis is running.
func (a *App) submitQuestion(question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return
	}
	switch a.service.State() {
	case insight.StateBuildingContext, insight.StateInitialChatPending:
		a.setStatus("Please wait for the analysis to finish.")
		return
	}

	_, _ = fmt.Fprintf(a.transcript, "%sYou[-]: %s\n\n", a.theme.UserTag, tview.Escape(question))
	_, _ = fmt.Fprintf(a.transcript, "%sThinking...[-]\n", a.theme.MutedTag)
	a.transcript.ScrollToEnd()
	a.setStatus("Waiting for an answer... (Esc to cancel)")

	ctx := a.beginOperation()
	go a.handleQuestion(ctx, question)
}

// handleQuestion asks the question in the background and redraws the transcript
func (a *App) handleQuestion(ctx context.Context, question string) {
	_, err := a.service.Ask(ctx, question)

	a.app.QueueUpdateDraw(func() {
		a.renderTranscript()
		switch {
		case err == nil:
			a.setStatus("Ready.")
		case llm.IsCancelled(err):
			a.setStatus("Question cancelled.")
		case errors.Is(err, chat.ErrNoContext):
			a.setStatus("There is no analysis yet. Press Ctrl-R to analyse the game.")
		case errors.Is(err, chat.ErrBusy):
			a.setStatus("Still answering the previous question.")
		default:
			a.showError(err)
			a.setStatus("The question could not be answered.")
		}
	})
}

// renderTranscript redraws the visible conversation
func (a *App) renderTranscript() {
	a.transcript.Clear()
	name := a.service.Info().Provider
	for _, msg := range a.service.Transcript() {
		text := tview.Escape(strings.TrimSpace(msg.Content))
		switch msg.Role {
		case llm.RoleUser:
			_, _ = fmt.Fprintf(a.transcript, "%sYou[-]: %s\n\n", a.theme.UserTag, text)
		case llm.RoleAssistant:
			_, _ = fmt.Fprintf(a.transcript, "%s%s[-]: %s\n\n", a.theme.AssistantTag, name, text)
		}
	}
	a.transcript.ScrollToEnd()
}

func (a *App) showError(err error) {
	_, _ = fmt.Fprintf(a.transcript, "%s%s[-]: %s\n\n",
		a.theme.ErrorTag, ui.ErrorTitle(err), tview.Escape(ui.ErrorMessage(err)))
	a.transcript.ScrollToEnd()
}
