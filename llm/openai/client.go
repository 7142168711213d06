package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/prompt"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"
)

// Reasoning models reject max_tokens and any temperature other than 1.
var reasoningModelPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

// reasoningTokenAllowance is added to the output cap of reasoning models,
// whose hidden reasoning tokens count against max_completion_tokens.
const reasoningTokenAllowance = 2048

// IsReasoningModel reports whether model belongs to a reasoning series.
func IsReasoningModel(model string) bool {
	return lo.SomeBy(reasoningModelPrefixes, func(prefix string) bool {
		return strings.HasPrefix(model, prefix)
	})
}

// Client implements llm.Provider for OpenAI-compatible chat-completions
// backends. The same client serves OpenAI and DeepSeek; only the
// ProviderConfig differs.
type Client struct {
	cfg        llm.ProviderConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ llm.Provider = (*Client)(nil)

// NewClient creates a new Client.
// If httpClient is nil, http.DefaultClient is used.
func NewClient(cfg llm.ProviderConfig, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "openai").Str("provider", cfg.ID).Logger(),
	}
}

// Config implements llm.Provider.
func (c *Client) Config() llm.ProviderConfig {
	return c.cfg
}

// sdk builds an SDK client bound to the per-call credential. Credentials are
// never stored on the Client.
func (c *Client) sdk(credential string) *openai.Client {
	config := openai.DefaultConfig(credential)
	if c.cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(c.cfg.BaseURL, "/")
	}
	if c.cfg.Organization != "" {
		config.OrgID = c.cfg.Organization
	}
	config.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(config)
}

// AnalyzeMove implements llm.Provider.
func (c *Client) AnalyzeMove(ctx context.Context, req *analysis.MoveAnalysisRequest, gameMetadata, credential string) (string, error) {
	msgs := []llm.ChatMessage{
		llm.NewMessage(llm.RoleSystem, prompt.MoveAnalysisSystemPrompt),
		llm.NewMessage(llm.RoleUser, prompt.BuildMoveAnalysisPrompt(req, gameMetadata)),
	}
	return c.complete(ctx, "analyze", msgs, llm.AnalyzeSampling, credential)
}

// Chat implements llm.Provider.
func (c *Client) Chat(ctx context.Context, messages []llm.ChatMessage, credential string) (string, error) {
	return c.complete(ctx, "chat", messages, llm.ChatSampling, credential)
}

// ValidateCredential implements llm.Provider. Backends with a models listing
// endpoint are probed there, others with a one-token completion.
func (c *Client) ValidateCredential(ctx context.Context, credential string) bool {
	start := time.Now()
	var err error
	if c.cfg.ListModels {
		_, err = c.sdk(credential).ListModels(ctx)
	} else {
		msgs := []llm.ChatMessage{llm.NewMessage(llm.RoleUser, llm.ValidationPrompt)}
		_, err = c.sdk(credential).CreateChatCompletion(ctx, c.completionRequest(msgs, llm.Sampling{MaxTokens: llm.ValidationMaxTokens}))
	}
	c.logger.Debug().
		Str("purpose", "validate").
		Bool("list_models", c.cfg.ListModels).
		Dur("duration", time.Since(start)).
		Bool("ok", err == nil).
		Msg("Credential validation finished")
	return err == nil
}

func (c *Client) complete(ctx context.Context, purpose string, msgs []llm.ChatMessage, sampling llm.Sampling, credential string) (string, error) {
	start := time.Now()
	c.logger.Debug().
		Str("purpose", purpose).
		Str("model", c.cfg.Model).
		Int("messages", len(msgs)).
		Msg("Sending chat completion request")

	resp, err := c.sdk(credential).CreateChatCompletion(ctx, c.completionRequest(msgs, sampling))
	if err != nil {
		convErr := c.convertError(ctx, err)
		if !llm.IsCancelled(convErr) {
			c.logger.Warn().Err(convErr).Str("purpose", purpose).Msg("Chat completion request failed")
		}
		return "", convErr
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.NewEmptyResponseError(c.cfg.Name)
	}

	c.logger.Debug().
		Str("purpose", purpose).
		Dur("duration", time.Since(start)).
		Int("output_tokens", resp.Usage.CompletionTokens).
		Msg("Chat completion request finished")
	return resp.Choices[0].Message.Content, nil
}

// completionRequest builds the request for the configured model. Reasoning
// models get max_completion_tokens, low effort and the default temperature.
func (c *Client) completionRequest(msgs []llm.ChatMessage, sampling llm.Sampling) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: ToOpenAIMessages(msgs),
	}
	if IsReasoningModel(c.cfg.Model) {
		req.MaxCompletionTokens = sampling.MaxTokens + reasoningTokenAllowance
		req.ReasoningEffort = "low"
		return req
	}
	req.Temperature = float32(sampling.Temperature)
	req.MaxTokens = sampling.MaxTokens
	return req
}

// convertError converts go-openai errors to llm errors.
func (c *Client) convertError(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return llm.ClassifyStatus(c.cfg.Name, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	// Non-JSON error bodies surface as RequestError with only the status.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return llm.ClassifyStatus(c.cfg.Name, reqErr.HTTPStatusCode, "", err)
	}

	return llm.ClassifyTransportError(ctx, err)
}
