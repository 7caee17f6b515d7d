package service

import (
	"fmt"
	"math"
	"time"

	"content-analyzer/internal/domain/entity"
)

// weightEpsilon bounds the accepted drift when scoring weights are
// checked against 1.0.
const weightEpsilon = 1e-6

// TaskRegistry is the static task table for one run configuration.
// Construction validates the table and fails fast: a miscalibrated weight
// table would silently produce wrong scores for every item.
type TaskRegistry struct {
	descriptors []entity.TaskDescriptor
	byName      map[string]entity.TaskDescriptor
}

func NewTaskRegistry(descriptors []entity.TaskDescriptor) (*TaskRegistry, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("task registry: no descriptors")
	}

	byName := make(map[string]entity.TaskDescriptor, len(descriptors))
	weightSum := 0.0
	scoringTasks := 0
	dependentSeen := false

	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("task registry: descriptor with empty name")
		}
		if _, exists := byName[d.Name]; exists {
			return nil, fmt.Errorf("task registry: duplicate task %q", d.Name)
		}
		if d.Weight < 0 {
			return nil, fmt.Errorf("task registry: task %q has negative weight %v", d.Name, d.Weight)
		}
		if d.Timeout <= 0 {
			return nil, fmt.Errorf("task registry: task %q has non-positive timeout %v", d.Name, d.Timeout)
		}

		switch d.Phase {
		case entity.PhaseIndependent:
			if dependentSeen {
				return nil, fmt.Errorf("task registry: independent task %q declared after a dependent task", d.Name)
			}
		case entity.PhaseDependent:
			dependentSeen = true
		default:
			return nil, fmt.Errorf("task registry: task %q has unknown phase %q", d.Name, d.Phase)
		}

		byName[d.Name] = d
		if d.IsScoring() {
			weightSum += d.Weight
			scoringTasks++
		}
	}

	if scoringTasks == 0 {
		return nil, fmt.Errorf("task registry: no scoring tasks (all weights are zero)")
	}
	if math.Abs(weightSum-1.0) > weightEpsilon {
		return nil, fmt.Errorf("task registry: scoring weights sum to %v, want 1.0", weightSum)
	}

	out := make([]entity.TaskDescriptor, len(descriptors))
	copy(out, descriptors)

	return &TaskRegistry{descriptors: out, byName: byName}, nil
}

// Independent returns the independent-phase descriptors in declaration order.
func (r *TaskRegistry) Independent() []entity.TaskDescriptor {
	return r.byPhase(entity.PhaseIndependent)
}

// Dependent returns the dependent-phase descriptors in declaration order.
// This order is the one strict execution-order guarantee in the engine.
func (r *TaskRegistry) Dependent() []entity.TaskDescriptor {
	return r.byPhase(entity.PhaseDependent)
}

func (r *TaskRegistry) byPhase(phase entity.Phase) []entity.TaskDescriptor {
	result := make([]entity.TaskDescriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Phase == phase {
			result = append(result, d)
		}
	}
	return result
}

func (r *TaskRegistry) Get(name string) (entity.TaskDescriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

func (r *TaskRegistry) All() []entity.TaskDescriptor {
	result := make([]entity.TaskDescriptor, len(r.descriptors))
	copy(result, r.descriptors)
	return result
}

// Weights returns the weight table over all tasks, meta tasks included
// with weight zero.
func (r *TaskRegistry) Weights() map[string]float64 {
	weights := make(map[string]float64, len(r.descriptors))
	for _, d := range r.descriptors {
		weights[d.Name] = d.Weight
	}
	return weights
}

const (
	defaultTaskTimeout      = 30 * time.Second
	defaultDependentTimeout = 60 * time.Second
)

// DefaultDescriptors is the stock seventeen-task analysis table: fifteen
// weighted independent scoring tasks plus the two dependent meta tasks
// that consume every prior result. Weights sum to exactly 1.0.
func DefaultDescriptors() []entity.TaskDescriptor {
	independent := []struct {
		name   string
		weight float64
	}{
		{"summary", 0.085},
		{"preprocessor", 0.0425},
		{"context_evaluator", 0.1275},
		{"fact_checker", 0.153},
		{"depth_analyzer", 0.102},
		{"relevance_analyzer", 0.1275},
		{"structure_analyzer", 0.068},
		{"reflective", 0.0595},
		{"metadata_ranking", 0.051},
		{"consensus", 0.034},
		{"sarcasm_sentinel", 0.03},
		{"echo_mapper", 0.05},
		{"latency_guard", 0.02},
		{"slop_filter", 0.03},
		{"banned_phrase_skeptic", 0.02},
	}

	descriptors := make([]entity.TaskDescriptor, 0, len(independent)+2)
	for _, t := range independent {
		descriptors = append(descriptors, entity.TaskDescriptor{
			Name:    t.name,
			Weight:  t.weight,
			Phase:   entity.PhaseIndependent,
			Timeout: defaultTaskTimeout,
		})
	}

	descriptors = append(descriptors,
		entity.TaskDescriptor{
			Name:    "score_consolidator",
			Phase:   entity.PhaseDependent,
			Timeout: defaultDependentTimeout,
		},
		entity.TaskDescriptor{
			Name:    "validator",
			Phase:   entity.PhaseDependent,
			Timeout: defaultDependentTimeout,
		},
	)

	return descriptors
}
