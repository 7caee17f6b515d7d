package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"content-analyzer/internal/application/port/output"
)

var _ output.ScorerPort = (*ScorerAdapter)(nil)

// systemPrompt pins every scoring call to JSON output; the per-task
// framing arrives in the payload.
const systemPrompt = "You are a specialized AI agent for social media content analysis. " +
	"Always respond with valid JSON in the format specified by the prompt."

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 2000
)

// ScorerAdapter backs the scoring collaborator with any OpenAI-compatible
// chat completion endpoint. Deadlines are enforced through ctx; the
// underlying HTTP request is cancelled with it.
type ScorerAdapter struct {
	client *openai.Client
	model  string
	logger output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	fields := []any{
		"method", req.Method,
		"url", req.URL.String(),
		"duration", time.Since(start),
	}
	if err != nil {
		t.logger.Warn("HTTP request failed", append(fields, "error", err)...)
		return resp, err
	}
	t.logger.Debug("HTTP request", append(fields, "status", resp.StatusCode)...)
	return resp, nil
}

func NewScorerAdapter(cfg Config) *ScorerAdapter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	if cfg.Logger != nil {
		clientCfg.HTTPClient = &http.Client{
			Transport: &loggingTransport{
				base:   http.DefaultTransport,
				logger: cfg.Logger,
			},
		}
	}

	return &ScorerAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

func (a *ScorerAdapter) Call(ctx context.Context, taskName string, payload string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion for %s: %w", taskName, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion for %s: no choices in response", taskName)
	}

	return resp.Choices[0].Message.Content, nil
}
