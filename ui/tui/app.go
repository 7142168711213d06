// Package tui is the terminal front end: analysis progress, the game
// transcript, per-move commentary and follow-up questions.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/aschepis/backscratcher/chessinsight/ui"
	"github.com/aschepis/backscratcher/chessinsight/ui/themes"
	"github.com/rs/zerolog"
)

const footerHelp = "Enter: ask | Tab: switch pane | Ctrl-R: re-run analysis | Esc: cancel | Ctrl-S: settings | Ctrl-C: quit"

// Options configures the terminal UI.
type Options struct {
	Theme  string // theme name, empty for the default
	Notify bool   // desktop notification when the analysis is ready
}

// App represents the terminal UI application
type App struct {
	app        *tview.Application
	pages      *tview.Pages
	header     *tview.TextView
	transcript *tview.TextView
	moves      *tview.List
	detail     *tview.TextView
	input      *tview.InputField
	status     *tview.TextView

	service  ui.InsightService
	settings ui.SettingsService // nil when no settings database is open
	theme    themes.Theme
	notify   bool

	baseCtx      context.Context
	mu           sync.Mutex
	cancel       context.CancelFunc
	analysisDone chan struct{}

	logger zerolog.Logger
}

// NewApp creates a new App. settings may be nil.
func NewApp(logger zerolog.Logger, service ui.InsightService, settings ui.SettingsService, opts Options) (*App, error) {
	theme, err := themes.Get(opts.Theme)
	if err != nil {
		return nil, err
	}
	theme.Apply()

	return &App{
		app:      tview.NewApplication(),
		pages:    tview.NewPages(),
		service:  service,
		settings: settings,
		theme:    theme,
		notify:   opts.Notify,
		baseCtx:  context.Background(),
		logger:   logger.With().Str("component", "tui").Logger(),
	}, nil
}

// setupUI initializes the UI components and layout
func (a *App) setupUI() {
	a.header = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)
	a.header.SetBorder(true)
	a.updateHeader()

	a.transcript = tview.NewTextView()
	a.transcript.SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true).
		SetBorder(true).
		SetTitle("AI Insights")

	a.moves = tview.NewList().ShowSecondaryText(false)
	a.moves.SetBorder(true).SetTitle("Moves")

	a.detail = tview.NewTextView()
	a.detail.SetDynamicColors(true).
		SetWordWrap(true).
		SetBorder(true).
		SetTitle("Move Insight")

	a.input = tview.NewInputField().
		SetLabel("Ask: ").
		SetPlaceholder("Ask about the game, a move or a plan...")
	a.input.SetBorder(true)
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		question := a.input.GetText()
		a.input.SetText("")
		a.submitQuestion(question)
	})

	a.status = tview.NewTextView().SetDynamicColors(true)

	footer := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(footerHelp)

	sidebar := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.moves, 0, 2, false).
		AddItem(a.detail, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexColumn).
			AddItem(sidebar, 32, 0, false).
			AddItem(a.transcript, 0, 1, false), 0, 1, false).
		AddItem(a.input, 3, 0, true).
		AddItem(a.status, 1, 0, false).
		AddItem(footer, 1, 0, false)

	a.pages.AddPage("main", layout, true, true)
	a.refreshMoves()

	focusOrder := []tview.Primitive{a.input, a.transcript, a.moves}
	a.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyCtrlC:
			a.cancelOperation()
			a.app.Stop()
			return nil
		case tcell.KeyCtrlR:
			a.startAnalysis()
			return nil
		case tcell.KeyCtrlS:
			a.showSettings()
			return nil
		case tcell.KeyEsc:
			if name, _ := a.pages.GetFrontPage(); name != "main" {
				return ev
			}
			if a.cancelOperation() {
				a.setStatus("Cancelling...")
			}
			return nil
		case tcell.KeyTab:
			if name, _ := a.pages.GetFrontPage(); name != "main" {
				return ev
			}
			current := a.app.GetFocus()
			for i, p := range focusOrder {
				if p == current {
					a.app.SetFocus(focusOrder[(i+1)%len(focusOrder)])
					return nil
				}
			}
			a.app.SetFocus(a.input)
			return nil
		}
		return ev
	})
}

func (a *App) updateHeader() {
	info := a.service.Info()
	game := info.Game
	if game == "" {
		game = "Untitled game"
	}
	a.header.SetText(fmt.Sprintf("%s  [::d](%d plies, %s %s)[::-]",
		tview.Escape(game), info.Moves, info.Provider, info.Model))
}

func (a *App) setStatus(text string) {
	a.status.SetText(text)
}

// beginOperation cancels the running operation and returns the context for
// the next one.
func (a *App) beginOperation() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(a.baseCtx)
	a.cancel = cancel
	return ctx
}

// cancelOperation cancels the running operation and reports whether there
// was one.
func (a *App) cancelOperation() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel == nil {
		return false
	}
	a.cancel()
	a.cancel = nil
	return true
}

// Run starts the application and the first analysis. It returns when the
// user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.baseCtx = ctx
	a.setupUI()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			a.app.Stop()
		case <-stop:
		}
	}()

	a.startAnalysis()
	err := a.app.SetRoot(a.pages, true).SetFocus(a.input).Run()
	a.cancelOperation()
	return err
}
