package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/prompt"
	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    [][]llm.ChatMessage
	release  chan struct{}
	received chan struct{}
}

func (p *fakeProvider) AnalyzeMove(ctx context.Context, req *analysis.MoveAnalysisRequest, gameMetadata, credential string) (string, error) {
	return "", errors.New("not used")
}

func (p *fakeProvider) Chat(ctx context.Context, messages []llm.ChatMessage, credential string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]llm.ChatMessage(nil), messages...))
	release, received := p.release, p.received
	reply, err := p.reply, p.err
	p.mu.Unlock()

	if received != nil {
		received <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", llm.ClassifyTransportError(ctx, ctx.Err())
		}
	}
	return reply, err
}

func (p *fakeProvider) ValidateCredential(ctx context.Context, credential string) bool { return true }

func (p *fakeProvider) Config() llm.ProviderConfig {
	return llm.ProviderConfig{ID: "fake", Name: "Fake"}
}

func (p *fakeProvider) lastCall() []llm.ChatMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return nil
	}
	return p.calls[len(p.calls)-1]
}

func TestAsk_AppendsQuestionAndAnswer(t *testing.T) {
	p := &fakeProvider{reply: "Black collapsed after Qxf7#."}
	s := NewSession(p, zerolog.Nop())
	s.Seed("=== Game Metadata ===\nWhite vs Black")

	reply, err := s.Ask(context.Background(), "  Why did Black lose?  ", "sk-test")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if reply != "Black collapsed after Qxf7#." {
		t.Errorf("Unexpected reply %q", reply)
	}

	sent := p.lastCall()
	if len(sent) != 2 || sent[0].Role != llm.RoleSystem || sent[1].Content != "Why did Black lose?" {
		t.Fatalf("Unexpected messages sent: %+v", sent)
	}
	if !strings.Contains(sent[0].Content, "White vs Black") {
		t.Error("System preamble should embed the game context")
	}

	msgs := s.Messages()
	if len(msgs) != 3 || msgs[2].Role != llm.RoleAssistant || msgs[2].Content != reply {
		t.Errorf("Unexpected transcript: %+v", msgs)
	}
	if visible := s.Visible(); len(visible) != 2 || visible[0].Role != llm.RoleUser {
		t.Errorf("Visible transcript should hide the preamble: %+v", visible)
	}
}

func TestAsk_SendsWholeTranscript(t *testing.T) {
	p := &fakeProvider{reply: "answer"}
	s := NewSession(p, zerolog.Nop())
	s.Seed("context")

	for _, q := range []string{"first", "second", "third"} {
		if _, err := s.Ask(context.Background(), q, ""); err != nil {
			t.Fatalf("Ask(%q) failed: %v", q, err)
		}
	}
	if n := len(p.lastCall()); n != 6 {
		t.Errorf("Expected 6 messages in the third request, got %d", n)
	}
	if n := len(s.Messages()); n != 7 {
		t.Errorf("Expected 7 transcript entries, got %d", n)
	}
}

func TestAsk_Rejections(t *testing.T) {
	p := &fakeProvider{reply: "answer"}
	s := NewSession(p, zerolog.Nop())

	if _, err := s.Ask(context.Background(), "question", ""); !errors.Is(err, ErrNoContext) {
		t.Errorf("Expected ErrNoContext, got %v", err)
	}
	s.Seed("context")
	if _, err := s.Ask(context.Background(), "   ", ""); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("Expected ErrEmptyQuestion, got %v", err)
	}
	if len(p.calls) != 0 {
		t.Errorf("Rejected questions must not reach the provider")
	}
}

func TestAsk_FailureLeavesTranscriptUnchanged(t *testing.T) {
	p := &fakeProvider{err: &llm.AnalysisError{Kind: llm.ErrorKindRateLimit, Message: "slow down"}}
	s := NewSession(p, zerolog.Nop())
	s.Seed("context")
	before := s.Messages()

	_, err := s.Ask(context.Background(), "question", "")
	if !llm.IsRateLimitError(err) {
		t.Fatalf("Expected rate limit error, got %v", err)
	}
	if after := s.Messages(); len(after) != len(before) {
		t.Errorf("Transcript changed on failure: %+v", after)
	}
	if s.Pending() {
		t.Error("Pending should clear after failure")
	}
}

func TestAsk_BusyAndCancelled(t *testing.T) {
	p := &fakeProvider{
		reply:    "late",
		release:  make(chan struct{}),
		received: make(chan struct{}, 1),
	}
	s := NewSession(p, zerolog.Nop())
	s.Seed("context")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Ask(ctx, "slow question", "")
		done <- err
	}()
	<-p.received

	if !s.Pending() {
		t.Error("Expected pending while the request is in flight")
	}
	if _, err := s.Ask(context.Background(), "another", ""); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}

	cancel()
	err := <-done
	if !llm.IsCancelled(err) {
		t.Fatalf("Expected cancellation, got %v", err)
	}
	if _, ok := llm.AsAnalysisError(err); ok {
		t.Error("Cancellation must not surface as an AnalysisError")
	}
	if n := len(s.Messages()); n != 1 {
		t.Errorf("Transcript changed on cancel: %d entries", n)
	}
}

func TestReset_DropsInFlightReply(t *testing.T) {
	p := &fakeProvider{
		reply:    "stale",
		release:  make(chan struct{}),
		received: make(chan struct{}, 1),
	}
	s := NewSession(p, zerolog.Nop())
	s.Seed("old game")

	done := make(chan error, 1)
	go func() {
		_, err := s.Ask(context.Background(), "question", "")
		done <- err
	}()
	<-p.received
	s.Reset()
	close(p.release)

	if err := <-done; !llm.IsCancelled(err) {
		t.Errorf("Expected stale reply to be dropped, got %v", err)
	}
	if len(s.Messages()) != 0 || s.GameContext() != "" {
		t.Error("Reset should leave the session empty")
	}
}

func TestSeed_DuringPendingQuestion(t *testing.T) {
	p := &fakeProvider{
		reply:    "stale",
		release:  make(chan struct{}),
		received: make(chan struct{}, 1),
	}
	s := NewSession(p, zerolog.Nop())
	s.Seed("old game")

	done := make(chan error, 1)
	go func() {
		_, err := s.Ask(context.Background(), "question", "")
		done <- err
	}()
	<-p.received
	s.Seed("new game")
	if s.Pending() {
		t.Error("Seed should clear the pending request")
	}
	close(p.release)

	if err := <-done; !llm.IsCancelled(err) {
		t.Fatalf("Expected stale reply to be dropped, got %v", err)
	}

	p.mu.Lock()
	p.release = nil
	p.reply = "fresh"
	p.mu.Unlock()

	reply, err := s.Ask(context.Background(), "who won?", "")
	if err != nil {
		t.Fatalf("Ask after reseeding failed: %v", err)
	}
	if reply != "fresh" {
		t.Errorf("Unexpected reply %q", reply)
	}
	msgs := s.Messages()
	if len(msgs) != 3 || msgs[0].Content != prompt.ChatSystemPrompt("new game") || msgs[1].Content != "who won?" {
		t.Errorf("Unexpected transcript %+v", msgs)
	}
}
