package di

import (
	"fmt"

	"content-analyzer/internal/application/port/input"
	"content-analyzer/internal/application/port/output"
	"content-analyzer/internal/application/service"
	"content-analyzer/internal/domain/entity"
	"content-analyzer/internal/infrastructure/llm/langchain"
	"content-analyzer/internal/infrastructure/llm/openrouter"
	"content-analyzer/internal/infrastructure/logger"
	"content-analyzer/internal/usecase/consolidator"
	"content-analyzer/internal/usecase/coordinator"
	"content-analyzer/internal/usecase/escalation"
	"content-analyzer/internal/usecase/executor"
	"content-analyzer/internal/usecase/phaserunner"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderLangchain  = "langchain"
)

type Container struct {
	Logger      output.LoggerPort
	Scorer      output.ScorerPort
	Registry    *service.TaskRegistry
	Coordinator *coordinator.Coordinator
	Analyzer    input.Analyzer
}

type Config struct {
	APIKey   string
	Model    string
	BaseURL  string
	Provider string
	LogLevel string

	Phase           phaserunner.Config
	Escalation      escalation.Config
	ItemConcurrency int

	// Descriptors overrides the stock task table; nil selects the default
	// seventeen-task configuration.
	Descriptors []entity.TaskDescriptor
}

func NewContainer(cfg Config) (*Container, error) {
	log, err := logger.NewZapAdapter(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	descriptors := cfg.Descriptors
	if descriptors == nil {
		descriptors = service.DefaultDescriptors()
	}
	registry, err := service.NewTaskRegistry(descriptors)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("invalid task configuration: %w", err)
	}

	scorer, err := newScorer(cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	escCfg := cfg.Escalation
	if escCfg.RiskTask == "" {
		escCfg = escalation.DefaultConfig()
	}

	exec := executor.New(scorer, log)
	runner := phaserunner.New(registry, exec, log, cfg.Phase)
	cons := consolidator.New(registry.Weights())
	esc := escalation.New(escCfg, registry.Weights())
	coord := coordinator.New(runner, cons, esc, log, cfg.ItemConcurrency)

	return &Container{
		Logger:      log,
		Scorer:      scorer,
		Registry:    registry,
		Coordinator: coord,
		Analyzer:    coord,
	}, nil
}

func newScorer(cfg Config, log output.LoggerPort) (output.ScorerPort, error) {
	switch cfg.Provider {
	case ProviderLangchain:
		scorer, err := langchain.NewScorerAdapter(langchain.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Logger:  log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create langchain scorer: %w", err)
		}
		return scorer, nil
	case ProviderOpenRouter, "":
		adapterCfg := openrouter.DefaultConfig(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			adapterCfg.BaseURL = cfg.BaseURL
		}
		adapterCfg.Logger = log
		return openrouter.NewScorerAdapter(adapterCfg), nil
	default:
		return nil, fmt.Errorf("unknown scoring provider %q", cfg.Provider)
	}
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
