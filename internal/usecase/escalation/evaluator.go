package escalation

import (
	"fmt"
	"math"
	"sort"

	"github.com/ysmood/gson"

	"content-analyzer/internal/domain/entity"
)

// Thresholds are the tunable escalation cutoffs. The numbers are
// configuration, not policy baked into the rules.
type Thresholds struct {
	RiskProbability   float64
	CompliancePenalty float64
	Inconsistency     float64
}

type Config struct {
	Thresholds Thresholds

	// RiskTask/RiskField designate the scoring task whose reported
	// probability triggers rule one (e.g. tone-inversion probability).
	RiskTask  string
	RiskField string

	// ComplianceTask/ComplianceField designate the task whose reported
	// penalty triggers rule two.
	ComplianceTask  string
	ComplianceField string
}

func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{
			RiskProbability:   0.7,
			CompliancePenalty: 0.3,
			Inconsistency:     2.5,
		},
		RiskTask:        "sarcasm_sentinel",
		RiskField:       "p_sarcasm",
		ComplianceTask:  "banned_phrase_skeptic",
		ComplianceField: "tone_penalty",
	}
}

// violationFlags are payload fields any task may set to force review.
var violationFlags = []string{"policy_violation", "manipulation_detected", "repriced"}

// Evaluator applies the fixed rule set over the final result set. Pure:
// it never re-runs a task and has no side effects.
type Evaluator struct {
	cfg     Config
	weights map[string]float64
}

func New(cfg Config, weights map[string]float64) *Evaluator {
	return &Evaluator{cfg: cfg, weights: weights}
}

func (e *Evaluator) Evaluate(results map[string]entity.TaskResult, _ entity.ConsolidatedScore) entity.EscalationDecision {
	var reasons []string

	if p, ok := e.payloadNumber(results, e.cfg.RiskTask, e.cfg.RiskField); ok && p > e.cfg.Thresholds.RiskProbability {
		reasons = append(reasons, fmt.Sprintf(
			"risk probability %.2f above %.2f (%s.%s)",
			p, e.cfg.Thresholds.RiskProbability, e.cfg.RiskTask, e.cfg.RiskField))
	}

	if p, ok := e.payloadNumber(results, e.cfg.ComplianceTask, e.cfg.ComplianceField); ok && p > e.cfg.Thresholds.CompliancePenalty {
		reasons = append(reasons, fmt.Sprintf(
			"compliance penalty %.2f above %.2f (%s.%s)",
			p, e.cfg.Thresholds.CompliancePenalty, e.cfg.ComplianceTask, e.cfg.ComplianceField))
	}

	if d := e.scoreDispersion(results); d > e.cfg.Thresholds.Inconsistency {
		reasons = append(reasons, fmt.Sprintf(
			"score dispersion %.2f above %.2f (tasks disagree)",
			d, e.cfg.Thresholds.Inconsistency))
	}

	reasons = append(reasons, e.violationReasons(results)...)

	return entity.EscalationDecision{
		Required: len(reasons) > 0,
		Reasons:  reasons,
	}
}

// payloadNumber reads a numeric field from a designated task's payload.
// Only successful results count: a defaulted or timed-out task never
// triggers a threshold rule.
func (e *Evaluator) payloadNumber(results map[string]entity.TaskResult, task, field string) (float64, bool) {
	res, ok := results[task]
	if !ok || res.Status != entity.StatusSuccess {
		return 0, false
	}
	g := gson.New(res.Payload)
	if !g.Has(field) {
		return 0, false
	}
	v, ok := g.Get(field).Val().(float64)
	return v, ok
}

// scoreDispersion is the standard deviation of the raw scores reported by
// scoring tasks.
func (e *Evaluator) scoreDispersion(results map[string]entity.TaskResult) float64 {
	var scores []float64
	for name, w := range e.weights {
		if w <= 0 {
			continue
		}
		if res, ok := results[name]; ok {
			scores = append(scores, res.Score)
		}
	}
	if len(scores) < 2 {
		return 0
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))

	var sumSq float64
	for _, s := range scores {
		d := s - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(scores)))
}

// violationReasons collects hard policy-violation flags from every task
// payload, in sorted task order so decisions are deterministic.
func (e *Evaluator) violationReasons(results map[string]entity.TaskResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var reasons []string
	for _, name := range names {
		res := results[name]
		if res.Status != entity.StatusSuccess {
			continue
		}
		g := gson.New(res.Payload)
		for _, flag := range violationFlags {
			if !g.Has(flag) {
				continue
			}
			if b, ok := g.Get(flag).Val().(bool); ok && b {
				reasons = append(reasons, fmt.Sprintf("policy violation flagged (%s.%s)", name, flag))
			}
		}
	}
	return reasons
}
