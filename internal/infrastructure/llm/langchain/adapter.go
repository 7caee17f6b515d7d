package langchain

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"content-analyzer/internal/application/port/output"
)

var _ output.ScorerPort = (*ScorerAdapter)(nil)

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 2000
)

// ScorerAdapter is the alternative scoring collaborator, built on
// langchaingo. The two adapters are interchangeable behind ScorerPort;
// provider choice is a wiring decision, not an engine concern.
type ScorerAdapter struct {
	model  llms.Model
	logger output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  output.LoggerPort
}

func NewScorerAdapter(cfg Config) (*ScorerAdapter, error) {
	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
	}

	model, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain model: %w", err)
	}

	return &ScorerAdapter{
		model:  model,
		logger: cfg.Logger,
	}, nil
}

func (a *ScorerAdapter) Call(ctx context.Context, taskName string, payload string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, a.model, payload,
		llms.WithTemperature(defaultTemperature),
		llms.WithMaxTokens(defaultMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate for %s: %w", taskName, err)
	}

	if a.logger != nil {
		a.logger.Debug("Langchain generation completed", "task", taskName, "responseLen", len(out))
	}

	return out, nil
}
