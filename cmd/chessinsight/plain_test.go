package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aschepis/backscratcher/chessinsight/insight"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/ui"
)

type fakeService struct {
	result   *insight.Result
	err      error
	askErr   error
	progress []float64
	asked    []string
}

func (s *fakeService) Analyze(ctx context.Context, onProgress ui.ProgressCallback) (*insight.Result, error) {
	for _, p := range s.progress {
		onProgress(p)
	}
	return s.result, s.err
}

func (s *fakeService) Ask(ctx context.Context, question string) (string, error) {
	s.asked = append(s.asked, question)
	if s.askErr != nil {
		return "", s.askErr
	}
	return "answer to " + question, nil
}

func (s *fakeService) Transcript() []llm.ChatMessage { return nil }
func (s *fakeService) MoveLabels() []string { return nil }
func (s *fakeService) MoveInsight(moveIndex int) (string, bool) { return "", false }
func (s *fakeService) State() insight.State { return insight.StateReady }
func (s *fakeService) UseProvider(provider llm.Provider, cred string) {}
func (s *fakeService) Info() ui.SessionInfo {
	return ui.SessionInfo{Provider: "OpenAI", Model: "gpt-4o-mini", Game: "White: A | Black: B"}
}

func TestRunPlain(t *testing.T) {
	svc := &fakeService{
		result:   &insight.Result{GameContext: "=== Game Metadata ===", Overview: "A sharp game."},
		progress: []float64{10, 10.4, 50},
	}
	var out, errOut bytes.Buffer
	in := strings.NewReader("Who was better?\n\n   \nWhy?\nquit\nignored\n")

	if err := runPlain(context.Background(), svc, in, &out, &errOut); err != nil {
		t.Fatalf("runPlain failed: %v", err)
	}

	if len(svc.asked) != 2 || svc.asked[0] != "Who was better?" || svc.asked[1] != "Why?" {
		t.Errorf("Unexpected questions %v", svc.asked)
	}
	for _, want := range []string{"OpenAI (gpt-4o-mini)", "=== Game Metadata ===", "A sharp game.", "answer to Why?"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Output missing %q:\n%s", want, out.String())
		}
	}
	if got := strings.Count(errOut.String(), "10%"); got != 1 {
		t.Errorf("Expected one report per whole percent, got %d in %q", got, errOut.String())
	}
}

func TestRunPlain_AnalysisFailure(t *testing.T) {
	svc := &fakeService{err: llm.ClassifyStatus("OpenAI", 401, "bad key", nil)}
	var out, errOut bytes.Buffer

	err := runPlain(context.Background(), svc, strings.NewReader("question\n"), &out, &errOut)
	if !llm.IsInvalidKeyError(err) {
		t.Fatalf("Expected invalid key error, got %v", err)
	}
	if len(svc.asked) != 0 {
		t.Error("No questions should be asked without a context")
	}
}

func TestRunPlain_OverviewFailureKeepsContext(t *testing.T) {
	svc := &fakeService{
		result: &insight.Result{GameContext: "ctx"},
		err:    errors.New("failed to start chat: boom"),
		askErr: llm.NewNetworkError(errors.New("offline")),
	}
	var out, errOut bytes.Buffer

	if err := runPlain(context.Background(), svc, strings.NewReader("still there?\n"), &out, &errOut); err != nil {
		t.Fatalf("runPlain failed: %v", err)
	}
	if len(svc.asked) != 1 {
		t.Errorf("Expected the question to be asked, got %v", svc.asked)
	}
	if !strings.Contains(errOut.String(), "Analysis Failed: failed to start chat: boom") {
		t.Errorf("Expected overview failure, got %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "Network Error") {
		t.Errorf("Expected ask failure to be reported, got %q", errOut.String())
	}
}
