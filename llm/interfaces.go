package llm

import (
	"context"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
)

// Provider is the capability shared by every backend adapter.
// Credentials are supplied per call and never retained by the implementation.
type Provider interface {
	// AnalyzeMove renders one move-analysis request into a prompt, sends it
	// with the fixed commentary instruction and returns the generated text.
	AnalyzeMove(ctx context.Context, req *analysis.MoveAnalysisRequest, gameMetadata, credential string) (string, error)

	// Chat sends the whole ordered transcript and returns the new assistant
	// text. If ctx is cancelled the error satisfies IsCancelled.
	Chat(ctx context.Context, messages []ChatMessage, credential string) (string, error)

	// ValidateCredential reports whether the backend accepted the credential.
	// Transport failures resolve to false.
	ValidateCredential(ctx context.Context, credential string) bool

	// Config returns the immutable configuration the adapter was built with.
	Config() ProviderConfig
}
