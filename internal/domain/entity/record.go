package entity

import "time"

type RunState string

const (
	StatePending            RunState = "pending"
	StateIndependentRunning RunState = "independent_running"
	StateDependentRunning   RunState = "dependent_running"
	StateConsolidating      RunState = "consolidating"
	StateEscalating         RunState = "escalating"
	StateComplete           RunState = "complete"
)

// AnalysisRecord is the final output for one post. It is assembled by the
// run coordinator and immutable once State reaches StateComplete.
type AnalysisRecord struct {
	RecordID      string
	RunID         string
	PostID        string
	Independent   PhaseOutcome
	Dependent     PhaseOutcome
	Score         ConsolidatedScore
	Escalation    EscalationDecision
	TotalDuration time.Duration
	State         RunState

	// Err marks a record that could not be fully assembled. The batch
	// still emits it so one bad item never aborts the others.
	Err string
}
