package executor

import (
	"context"
	"errors"
	"time"

	"content-analyzer/internal/application/port/output"
	"content-analyzer/internal/domain/entity"
	"content-analyzer/internal/infrastructure/prompts"
)

// UseCase runs one task against the scoring collaborator and normalizes
// every outcome into a TaskResult. Execute never returns an error: a task
// that fails in any way degrades to the neutral default score so that
// consolidation always sees a defined value.
type UseCase struct {
	scorer output.ScorerPort
	logger output.LoggerPort
}

func New(scorer output.ScorerPort, logger output.LoggerPort) *UseCase {
	return &UseCase{
		scorer: scorer,
		logger: logger,
	}
}

// Execute applies the descriptor's timeout around the collaborator call.
// The wait ends at the deadline even if the collaborator ignores
// cancellation; the underlying call is then abandoned, which can leak the
// request until the collaborator itself gives up.
func (uc *UseCase) Execute(ctx context.Context, desc entity.TaskDescriptor, input string, prior map[string]entity.TaskResult) entity.TaskResult {
	start := time.Now()

	prompt, err := prompts.Render(desc, input, prior)
	if err != nil {
		uc.logger.Error("Prompt rendering failed", "task", desc.Name, "error", err)
		return uc.failed(desc, entity.StatusExecutionError, start, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, desc.Timeout)
	defer cancel()

	type callOutcome struct {
		raw string
		err error
	}
	done := make(chan callOutcome, 1)

	go func() {
		raw, callErr := uc.scorer.Call(callCtx, desc.Name, prompt)
		done <- callOutcome{raw: raw, err: callErr}
	}()

	var raw string
	select {
	case <-callCtx.Done():
		uc.logger.Warn("Task timed out", "task", desc.Name, "timeout", desc.Timeout)
		return uc.failed(desc, entity.StatusTimeout, start, callCtx.Err())
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				uc.logger.Warn("Task timed out", "task", desc.Name, "timeout", desc.Timeout)
				return uc.failed(desc, entity.StatusTimeout, start, out.err)
			}
			uc.logger.Error("Scoring call failed", "task", desc.Name, "error", out.err)
			return uc.failed(desc, entity.StatusExecutionError, start, out.err)
		}
		raw = out.raw
	}

	payload, err := ParsePayload(raw)
	if err != nil {
		uc.logger.Warn("Unparseable task output", "task", desc.Name, "error", err)
		return uc.failed(desc, entity.StatusMalformedOutput, start, err)
	}

	status := entity.StatusSuccess
	if isFallback(payload) {
		status = entity.StatusFallback
	}

	result := entity.TaskResult{
		TaskName: desc.Name,
		Status:   status,
		Score:    ExtractScore(payload),
		Payload:  payload,
		Duration: time.Since(start),
	}

	uc.logger.Info("Task completed",
		"task", desc.Name,
		"status", result.Status,
		"score", result.Score,
		"duration", result.Duration,
	)

	return result
}

func (uc *UseCase) failed(desc entity.TaskDescriptor, status entity.TaskStatus, start time.Time, err error) entity.TaskResult {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return entity.TaskResult{
		TaskName:    desc.Name,
		Status:      status,
		Score:       entity.DefaultScore,
		Payload:     map[string]any{},
		Duration:    time.Since(start),
		ErrorDetail: detail,
	}
}
