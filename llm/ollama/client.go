package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aschepis/backscratcher/chessinsight/analysis"
	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/prompt"
	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
)

// Client implements llm.Provider for a local Ollama server. Ollama has no
// credentials; the credential argument is ignored.
type Client struct {
	cfg    llm.ProviderConfig
	client *api.Client
	logger zerolog.Logger
}

var _ llm.Provider = (*Client)(nil)

// NewClient creates a new Client for the host in cfg.BaseURL.
// If httpClient is nil, http.DefaultClient is used.
func NewClient(cfg llm.ProviderConfig, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL, err := parseHost(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}
	return &Client{
		cfg:    cfg,
		client: api.NewClient(baseURL, httpClient),
		logger: logger.With().Str("component", "ollama").Logger(),
	}, nil
}

// parseHost parses a host string into a URL.
func parseHost(host string) (*url.URL, error) {
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}
	// If host doesn't have a scheme, add http://
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(strings.TrimRight(host, "/"))
}

// Config implements llm.Provider.
func (c *Client) Config() llm.ProviderConfig {
	return c.cfg
}

// AnalyzeMove implements llm.Provider.
func (c *Client) AnalyzeMove(ctx context.Context, req *analysis.MoveAnalysisRequest, gameMetadata, _ string) (string, error) {
	msgs := []llm.ChatMessage{
		llm.NewMessage(llm.RoleSystem, prompt.MoveAnalysisSystemPrompt),
		llm.NewMessage(llm.RoleUser, prompt.BuildMoveAnalysisPrompt(req, gameMetadata)),
	}
	return c.chat(ctx, "analyze", msgs, llm.AnalyzeSampling)
}

// Chat implements llm.Provider.
func (c *Client) Chat(ctx context.Context, messages []llm.ChatMessage, _ string) (string, error) {
	return c.chat(ctx, "chat", messages, llm.ChatSampling)
}

// ValidateCredential implements llm.Provider by listing local models.
func (c *Client) ValidateCredential(ctx context.Context, _ string) bool {
	start := time.Now()
	_, err := c.client.List(ctx)
	c.logger.Debug().
		Str("purpose", "validate").
		Dur("duration", time.Since(start)).
		Bool("ok", err == nil).
		Msg("Credential validation finished")
	return err == nil
}

func (c *Client) chat(ctx context.Context, purpose string, msgs []llm.ChatMessage, sampling llm.Sampling) (string, error) {
	start := time.Now()
	c.logger.Debug().
		Str("purpose", purpose).
		Str("model", c.cfg.Model).
		Int("messages", len(msgs)).
		Msg("Sending chat request")

	chatReq := &api.ChatRequest{
		Model:    c.cfg.Model,
		Messages: ToOllamaMessages(msgs),
		Stream:   new(bool), // false for non-streaming
		Options:  samplingOptions(sampling),
	}

	var content strings.Builder
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		convErr := c.convertError(ctx, err)
		if !llm.IsCancelled(convErr) {
			c.logger.Warn().Err(convErr).Str("purpose", purpose).Msg("Chat request failed")
		}
		return "", convErr
	}

	if content.Len() == 0 {
		return "", llm.NewEmptyResponseError(c.cfg.Name)
	}

	c.logger.Debug().
		Str("purpose", purpose).
		Dur("duration", time.Since(start)).
		Msg("Chat request finished")
	return content.String(), nil
}

// convertError converts Ollama client errors to llm errors.
func (c *Client) convertError(ctx context.Context, err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode != 0 {
		return llm.ClassifyStatus(c.cfg.Name, statusErr.StatusCode, statusErr.ErrorMessage, err)
	}
	var statusErrPtr *api.StatusError
	if errors.As(err, &statusErrPtr) && statusErrPtr.StatusCode != 0 {
		return llm.ClassifyStatus(c.cfg.Name, statusErrPtr.StatusCode, statusErrPtr.ErrorMessage, err)
	}
	return llm.ClassifyTransportError(ctx, err)
}
