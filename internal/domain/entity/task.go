package entity

import "time"

type Phase string

const (
	PhaseIndependent Phase = "independent"
	PhaseDependent   Phase = "dependent"
)

type TaskStatus string

const (
	StatusSuccess         TaskStatus = "success"
	StatusTimeout         TaskStatus = "timeout"
	StatusExecutionError  TaskStatus = "execution_error"
	StatusMalformedOutput TaskStatus = "malformed_output"
	StatusFallback        TaskStatus = "fallback"
)

const (
	MinScore = 0.0
	MaxScore = 10.0

	// DefaultScore is the neutral midpoint substituted when a task fails,
	// so an undefined value never reaches consolidation.
	DefaultScore = 5.0
)

// TaskDescriptor is immutable for the lifetime of a run.
type TaskDescriptor struct {
	Name    string
	Weight  float64
	Phase   Phase
	Timeout time.Duration
}

// IsScoring reports whether the task contributes to the consolidated
// score. Zero-weight tasks are meta tasks (consolidation, validation).
func (d TaskDescriptor) IsScoring() bool {
	return d.Weight > 0
}

// TaskResult is created once by the executor and never mutated.
type TaskResult struct {
	TaskName    string
	Status      TaskStatus
	Score       float64
	Payload     map[string]any
	Duration    time.Duration
	ErrorDetail string
}

type PhaseOutcome struct {
	Phase       Phase
	Results     map[string]TaskResult
	DeadlineHit bool
	Duration    time.Duration
}
