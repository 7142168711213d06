// Package insight turns a game evaluation into commentary: it drives the
// per-move analysis calls, assembles the game context and opens the chat.
package insight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/aschepis/backscratcher/chessinsight/chat"
	"github.com/aschepis/backscratcher/chessinsight/game"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/prompt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State represents the phase of an analysis run
type State string

const (
	StateIdle               State = "idle"
	StateBuildingContext    State = "building_context"
	StateContextReady       State = "context_ready"
	StateInitialChatPending State = "initial_chat_pending"
	StateReady              State = "ready"
	StateFailed             State = "failed"
	StateCancelled          State = "cancelled"
)

// ErrRunning is returned when Run is called while another run is active.
var ErrRunning = errors.New("analysis already running")

// Input is everything one analysis run needs.
type Input struct {
	Eval       *analysis.GameEval
	Game       *game.Game
	Credential string
}

// Result is the outcome of a run. On initial chat failure GameContext is set
// and Overview is empty.
type Result struct {
	GameContext  string
	MoveAnalyses map[int]string // keyed by move index; skipped moves are absent
	Overview     string
}

// ProgressFunc receives the building progress in [0, 99].
type ProgressFunc func(percent float64)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStateHook registers fn to be called after every state transition.
func WithStateHook(fn func(State)) Option {
	return func(o *Orchestrator) {
		o.onState = fn
	}
}

// Orchestrator runs the analysis state machine. Outbound calls are issued one
// at a time, in move order.
type Orchestrator struct {
	provider llm.Provider
	builder  *analysis.RequestBuilder
	session  *chat.Session
	onState  func(State)
	logger   zerolog.Logger

	mu          sync.RWMutex
	state       State
	progress    float64
	gameContext string
	running     bool
	runID       string
}

// New creates an orchestrator that analyses through provider and seeds session.
func New(provider llm.Provider, builder *analysis.RequestBuilder, session *chat.Session, logger zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		builder:  builder,
		session:  session,
		state:    StateIdle,
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetProvider switches the provider for subsequent runs and chat turns.
func (o *Orchestrator) SetProvider(provider llm.Provider) {
	o.mu.Lock()
	o.provider = provider
	o.mu.Unlock()
	o.session.SetProvider(provider)
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Progress returns the last reported building progress.
func (o *Orchestrator) Progress() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.progress
}

// GameContext returns the context built by the last run, if any.
func (o *Orchestrator) GameContext() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.gameContext
}

// RunID identifies the current or last run in logs. Empty before the first run.
func (o *Orchestrator) RunID() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.runID
}

// Session returns the chat session seeded by runs.
func (o *Orchestrator) Session() *chat.Session {
	return o.session
}

// Run builds the game context and requests the opening overview. Any previous
// transcript and progress are discarded first.
//
// Cancelling ctx while the context is being built stops at the next move
// boundary, discards partial results and returns an error satisfying
// llm.IsCancelled. The overview request is cancelled immediately, and the
// built context is kept.
func (o *Orchestrator) Run(ctx context.Context, in Input, onProgress ProgressFunc) (*Result, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrRunning
	}
	o.running = true
	o.runID = uuid.NewString()
	provider := o.provider
	o.progress = 0
	o.gameContext = ""
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	if in.Eval == nil || in.Game == nil {
		o.setState(StateFailed)
		return nil, fmt.Errorf("game and evaluation are required")
	}

	o.session.Reset()
	o.setState(StateBuildingContext)
	start := time.Now()

	gameContext, analyses, err := o.buildContext(ctx, provider, in, onProgress)
	o.resetProgress()
	if err != nil {
		if llm.IsCancelled(err) {
			o.setState(StateCancelled)
		} else {
			o.setState(StateFailed)
		}
		return nil, err
	}

	o.mu.Lock()
	o.gameContext = gameContext
	o.mu.Unlock()
	o.setState(StateContextReady)
	o.logger.Debug().
		Str("run_id", o.RunID()).
		Int("length", len(gameContext)).
		Int("analysed", len(analyses)).
		Dur("duration", time.Since(start)).
		Msg("Game context assembled")

	result := &Result{GameContext: gameContext, MoveAnalyses: analyses}

	o.session.Seed(gameContext)
	o.setState(StateInitialChatPending)
	overview, err := o.session.Ask(ctx, prompt.InitialChatPrompt, in.Credential)
	if err != nil {
		if llm.IsCancelled(err) {
			o.setState(StateContextReady)
		} else {
			o.setState(StateFailed)
		}
		return result, fmt.Errorf("failed to start chat: %w", err)
	}

	result.Overview = overview
	o.setState(StateReady)
	return result, nil
}

func (o *Orchestrator) buildContext(ctx context.Context, provider llm.Provider, in Input, onProgress ProgressFunc) (string, map[int]string, error) {
	requests, err := o.builder.Build(in.Eval, in.Game.Moves)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build analysis requests: %w", err)
	}

	metadata := in.Game.Metadata()
	// Analysis calls run to completion once issued; ctx is only polled
	// between moves.
	callCtx := context.WithoutCancel(ctx)

	lines := make([]string, 0, len(requests))
	analyses := make(map[int]string)
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			o.logger.Info().Int("completed", i).Int("total", len(requests)).Msg("Context building cancelled")
			return "", nil, fmt.Errorf("%w: %w", llm.ErrCancelled, err)
		}

		if ShouldSkip(req.Classification) {
			o.logger.Debug().Str("move", req.Label()).Str("classification", string(req.Classification)).Msg("Skipping move")
			lines = append(lines, moveLine(req, ""))
		} else {
			o.logger.Debug().Str("move", req.Label()).Msg("Analyzing move")
			text, err := provider.AnalyzeMove(callCtx, req, metadata, in.Credential)
			if err != nil {
				return "", nil, fmt.Errorf("failed to analyze move %s: %w", req.Label(), err)
			}
			lines = append(lines, moveLine(req, text))
			analyses[req.MoveIndex] = text
		}

		o.reportProgress(Progress(i+1, len(requests)), onProgress)
	}

	return assembleContext(metadata, in.Eval, lines), analyses, nil
}

func (o *Orchestrator) reportProgress(p float64, onProgress ProgressFunc) {
	o.mu.Lock()
	o.progress = p
	o.mu.Unlock()
	if onProgress != nil {
		onProgress(p)
	}
}

func (o *Orchestrator) resetProgress() {
	o.mu.Lock()
	o.progress = 0
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	prev := o.state
	o.state = s
	runID := o.runID
	o.mu.Unlock()

	o.logger.Info().Str("run_id", runID).Str("from", string(prev)).Str("to", string(s)).Msg("State transition")
	if o.onState != nil {
		o.onState(s)
	}
}
