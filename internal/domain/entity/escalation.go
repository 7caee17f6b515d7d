package entity

// EscalationDecision routes an item to human review. Reasons are ordered
// by rule evaluation order and name the rule that fired.
type EscalationDecision struct {
	Required bool
	Reasons  []string
}
