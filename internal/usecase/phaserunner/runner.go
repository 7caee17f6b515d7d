package phaserunner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"content-analyzer/internal/application/port/output"
	"content-analyzer/internal/application/service"
	"content-analyzer/internal/domain/entity"
	"content-analyzer/internal/usecase/executor"
)

type Mode string

const (
	// ModeParallel fans every independent task out concurrently.
	ModeParallel Mode = "parallel"
	// ModeSequential runs independent tasks one at a time. Same contract,
	// same code path; only the fan-out limit differs.
	ModeSequential Mode = "sequential"
)

const DefaultPhaseDeadline = 5 * time.Minute

type Config struct {
	Mode          Mode
	PhaseDeadline time.Duration
}

func DefaultConfig() Config {
	return Config{
		Mode:          ModeParallel,
		PhaseDeadline: DefaultPhaseDeadline,
	}
}

// Runner executes the two task phases for one item. Independent tasks
// share a phase-wide deadline; dependent tasks run strictly in
// declaration order with their own per-task timeouts only.
type Runner struct {
	registry *service.TaskRegistry
	executor *executor.UseCase
	logger   output.LoggerPort
	cfg      Config
}

func New(registry *service.TaskRegistry, exec *executor.UseCase, logger output.LoggerPort, cfg Config) *Runner {
	if cfg.Mode == "" {
		cfg.Mode = ModeParallel
	}
	if cfg.PhaseDeadline <= 0 {
		cfg.PhaseDeadline = DefaultPhaseDeadline
	}
	return &Runner{
		registry: registry,
		executor: exec,
		logger:   logger,
		cfg:      cfg,
	}
}

// Run executes both phases and returns their outcomes.
func (r *Runner) Run(ctx context.Context, input string) (entity.PhaseOutcome, entity.PhaseOutcome) {
	independent := r.RunIndependent(ctx, input)
	dependent := r.RunDependent(ctx, input, independent)
	return independent, dependent
}

// RunIndependent fans the independent tasks out under the phase deadline.
// Tasks unfinished at the deadline are recorded as timed out; finished
// tasks keep their real results. No task's failure cancels a sibling.
func (r *Runner) RunIndependent(ctx context.Context, input string) entity.PhaseOutcome {
	descriptors := r.registry.Independent()
	start := time.Now()

	r.logger.Info("Independent phase started",
		"tasks", len(descriptors),
		"mode", r.cfg.Mode,
		"phaseDeadline", r.cfg.PhaseDeadline,
	)

	phaseCtx, cancel := context.WithTimeout(ctx, r.cfg.PhaseDeadline)
	defer cancel()

	var mu sync.Mutex
	completed := make(map[string]entity.TaskResult, len(descriptors))

	g := &errgroup.Group{}
	if r.cfg.Mode == ModeSequential {
		g.SetLimit(1)
	}

	for _, desc := range descriptors {
		desc := desc
		g.Go(func() error {
			res := r.executor.Execute(phaseCtx, desc, input, nil)
			mu.Lock()
			completed[desc.Name] = res
			mu.Unlock()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	deadlineHit := false
	select {
	case <-done:
	case <-phaseCtx.Done():
		deadlineHit = true
		r.logger.Warn("Independent phase deadline hit", "deadline", r.cfg.PhaseDeadline)
	}

	mu.Lock()
	results := make(map[string]entity.TaskResult, len(descriptors))
	for name, res := range completed {
		results[name] = res
	}
	mu.Unlock()

	// Anything still pending at the deadline gets a timeout record with
	// the neutral score; stragglers finishing later are ignored.
	for _, desc := range descriptors {
		if _, ok := results[desc.Name]; !ok {
			results[desc.Name] = entity.TaskResult{
				TaskName:    desc.Name,
				Status:      entity.StatusTimeout,
				Score:       entity.DefaultScore,
				Payload:     map[string]any{},
				ErrorDetail: "phase deadline exceeded",
			}
		}
	}

	outcome := entity.PhaseOutcome{
		Phase:       entity.PhaseIndependent,
		Results:     results,
		DeadlineHit: deadlineHit,
		Duration:    time.Since(start),
	}

	r.logger.Info("Independent phase finished",
		"duration", outcome.Duration,
		"deadlineHit", outcome.DeadlineHit,
	)

	return outcome
}

// RunDependent executes dependent tasks sequentially in declaration
// order. Each task sees every independent result plus the dependent
// results produced before it; only the runner appends to that map, and
// only between invocations.
func (r *Runner) RunDependent(ctx context.Context, input string, independent entity.PhaseOutcome) entity.PhaseOutcome {
	descriptors := r.registry.Dependent()
	start := time.Now()

	r.logger.Info("Dependent phase started", "tasks", len(descriptors))

	prior := make(map[string]entity.TaskResult, len(independent.Results)+len(descriptors))
	for name, res := range independent.Results {
		prior[name] = res
	}

	results := make(map[string]entity.TaskResult, len(descriptors))
	for _, desc := range descriptors {
		res := r.executor.Execute(ctx, desc, input, prior)
		results[desc.Name] = res
		prior[desc.Name] = res
	}

	outcome := entity.PhaseOutcome{
		Phase:    entity.PhaseDependent,
		Results:  results,
		Duration: time.Since(start),
	}

	r.logger.Info("Dependent phase finished", "duration", outcome.Duration)

	return outcome
}
