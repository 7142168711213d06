package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/prompt"
	"github.com/rs/zerolog"
)

const apiVersion = "2023-06-01"

// Client implements llm.Provider for Anthropic's messages API.
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
		logger:     logger.With().Str("component", "anthropic").Logger(),
	}
}

// Config implements llm.Provider.
func (c *Client) Config() llm.ProviderConfig {
	return c.cfg
}

// sdk builds an SDK client bound to the per-call credential. Retries are
// disabled: failures surface to the caller on the first attempt.
func (c *Client) sdk(credential string) anthropic.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(credential),
		option.WithHeader("anthropic-version", apiVersion),
		option.WithHeader("anthropic-dangerous-direct-browser-access", "true"),
		option.WithMaxRetries(0),
		option.WithHTTPClient(c.httpClient),
	}
	if c.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(c.cfg.BaseURL, "/")+"/"))
	}
	return anthropic.NewClient(opts...)
}

// AnalyzeMove implements llm.Provider.
func (c *Client) AnalyzeMove(ctx context.Context, req *analysis.MoveAnalysisRequest, gameMetadata, credential string) (string, error) {
	msgs := []llm.ChatMessage{
		llm.NewMessage(llm.RoleSystem, prompt.MoveAnalysisSystemPrompt),
		llm.NewMessage(llm.RoleUser, prompt.BuildMoveAnalysisPrompt(req, gameMetadata)),
	}
	return c.send(ctx, "analyze", msgs, llm.AnalyzeSampling, credential)
}

// Chat implements llm.Provider. The system turn is sent in the dedicated
// system field and excluded from the message list.
func (c *Client) Chat(ctx context.Context, messages []llm.ChatMessage, credential string) (string, error) {
	return c.send(ctx, "chat", messages, llm.ChatSampling, credential)
}

// ValidateCredential implements llm.Provider with a one-token message.
func (c *Client) ValidateCredential(ctx context.Context, credential string) bool {
	start := time.Now()
	client := c.sdk(credential)
	_, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: llm.ValidationMaxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(llm.ValidationPrompt))},
	})
	c.logger.Debug().
		Str("purpose", "validate").
		Dur("duration", time.Since(start)).
		Bool("ok", err == nil).
		Msg("Credential validation finished")
	return err == nil
}

func (c *Client) send(ctx context.Context, purpose string, msgs []llm.ChatMessage, sampling llm.Sampling, credential string) (string, error) {
	start := time.Now()
	system, turns := llm.SplitSystem(msgs)

	c.logger.Debug().
		Str("purpose", purpose).
		Str("model", c.cfg.Model).
		Int("messages", len(turns)).
		Msg("Sending messages request")

	client := c.sdk(credential)
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.cfg.Model),
		MaxTokens:   int64(sampling.MaxTokens),
		System:      buildSystemBlocks(system),
		Messages:    ToMessageParams(turns),
		Temperature: anthropic.Float(sampling.Temperature),
	})
	if err != nil {
		convErr := c.convertError(ctx, err)
		if !llm.IsCancelled(convErr) {
			c.logger.Warn().Err(convErr).Str("purpose", purpose).Msg("Messages request failed")
		}
		return "", convErr
	}

	text := firstText(message)
	if text == "" {
		return "", llm.NewEmptyResponseError(c.cfg.Name)
	}

	c.logger.Debug().
		Str("purpose", purpose).
		Dur("duration", time.Since(start)).
		Int64("output_tokens", message.Usage.OutputTokens).
		Msg("Messages request finished")
	return text, nil
}

// convertError converts Anthropic SDK errors to llm errors.
func (c *Client) convertError(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return llm.ClassifyStatus(c.cfg.Name, apiErr.StatusCode, errorBodyMessage(apiErr.RawJSON()), err)
	}
	return llm.ClassifyTransportError(ctx, err)
}
