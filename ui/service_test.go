package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/aschepis/backscratcher/chessinsight/chat"
	"github.com/aschepis/backscratcher/chessinsight/game"
	"github.com/aschepis/backscratcher/chessinsight/insight"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/rs/zerolog"
)

const miniature = `[White "Alice"]
[Black "Bob"]

1. e4 e5 2. Qh5 Ke7 3. Qxe5# 1-0
`

type echoProvider struct {
	credentials []string
}

func (p *echoProvider) AnalyzeMove(ctx context.Context, req *analysis.MoveAnalysisRequest, gameMetadata, credential string) (string, error) {
	p.credentials = append(p.credentials, credential)
	return "insight for " + req.SAN, nil
}

func (p *echoProvider) Chat(ctx context.Context, messages []llm.ChatMessage, credential string) (string, error) {
	p.credentials = append(p.credentials, credential)
	return "echo: " + messages[len(messages)-1].Content, nil
}

func (p *echoProvider) ValidateCredential(ctx context.Context, credential string) bool { return true }

func (p *echoProvider) Config() llm.ProviderConfig {
	return llm.ProviderConfig{ID: "echo", Name: "Echo", Model: "echo-1"}
}

func newTestService(t *testing.T, p *echoProvider) InsightService {
	t.Helper()
	g, err := game.Parse(strings.NewReader(miniature))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	eval := &analysis.GameEval{Positions: make([]analysis.PositionEval, len(g.Moves)+1)}
	eval.Positions[1].MoveClassification = analysis.Opening
	eval.Positions[4].MoveClassification = analysis.Blunder

	logger := zerolog.Nop()
	o := insight.New(p, analysis.NewRequestBuilder(game.Notation{}), chat.NewSession(p, logger), logger)
	return NewInsightService(logger, o, p.Config(), g, eval, "sk-test")
}

func TestInsightService_AnalyzeAndAsk(t *testing.T) {
	p := &echoProvider{}
	s := newTestService(t, p)

	result, err := s.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !strings.Contains(result.GameContext, "Move 2... Ke7 (blunder): insight for Ke7") {
		t.Errorf("Unexpected context:\n%s", result.GameContext)
	}
	if s.State() != insight.StateReady {
		t.Errorf("Expected ready state, got %s", s.State())
	}

	if text, ok := s.MoveInsight(3); !ok || text != "insight for Ke7" {
		t.Errorf("Unexpected move insight %q (%v)", text, ok)
	}
	if _, ok := s.MoveInsight(0); ok {
		t.Error("Skipped opening move should have no insight")
	}

	answer, err := s.Ask(context.Background(), "Why Ke7?")
	if err != nil || answer != "echo: Why Ke7?" {
		t.Fatalf("Unexpected answer %q err=%v", answer, err)
	}
	if n := len(s.Transcript()); n != 4 {
		t.Errorf("Expected 4 visible turns, got %d", n)
	}
	for _, c := range p.credentials {
		if c != "sk-test" {
			t.Fatalf("Expected credential on every call, got %q", c)
		}
	}
}

func TestInsightService_Info(t *testing.T) {
	s := newTestService(t, &echoProvider{})
	info := s.Info()
	if info.Provider != "Echo" || info.Model != "echo-1" || info.Moves != 5 {
		t.Errorf("Unexpected info %+v", info)
	}
	if info.Game != "White: Alice | Black: Bob" {
		t.Errorf("Unexpected game header %q", info.Game)
	}
}

func TestInsightService_MoveLabels(t *testing.T) {
	s := newTestService(t, &echoProvider{})
	labels := s.MoveLabels()
	want := []string{"1. e4", "1... e5", "2. Qh5", "2... Ke7", "3. Qxe5#"}
	if len(labels) != len(want) {
		t.Fatalf("Expected %d labels, got %v", len(want), labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestErrorTitle(t *testing.T) {
	tests := []struct {
		err   error
		title string
		msg   string
	}{
		{llm.ClassifyStatus("OpenAI", 401, "", nil), "Invalid API Key", "Invalid API key. Please check your OpenAI API key in settings."},
		{llm.ClassifyStatus("OpenAI", 429, "", nil), "Rate Limit Exceeded", "Rate limit exceeded. Please wait a moment and try again."},
		{llm.NewNetworkError(nil), "Network Error", "Network error. Please check your connection."},
		{errors.New("boom"), "Analysis Failed", "boom"},
	}
	for _, tt := range tests {
		if got := ErrorTitle(tt.err); got != tt.title {
			t.Errorf("ErrorTitle(%v) = %q, want %q", tt.err, got, tt.title)
		}
		if got := ErrorMessage(tt.err); got != tt.msg {
			t.Errorf("ErrorMessage(%v) = %q, want %q", tt.err, got, tt.msg)
		}
	}
}
