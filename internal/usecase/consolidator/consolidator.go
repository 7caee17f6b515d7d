package consolidator

import (
	"math"
	"sort"

	"content-analyzer/internal/domain/entity"
)

// Consolidator combines weighted task scores into one bounded value.
// Pure and deterministic: task names are visited in sorted order so the
// floating-point accumulation never depends on map iteration.
type Consolidator struct {
	weights map[string]float64
}

func New(weights map[string]float64) *Consolidator {
	return &Consolidator{weights: weights}
}

func (c *Consolidator) Consolidate(results map[string]entity.TaskResult) entity.ConsolidatedScore {
	names := make([]string, 0, len(c.weights))
	for name, w := range c.weights {
		if w > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var weightedSum float64
	scores := make([]float64, 0, len(names))

	for _, name := range names {
		score := entity.DefaultScore
		if res, ok := results[name]; ok {
			score = res.Score
		}
		weightedSum += c.weights[name] * score
		scores = append(scores, score)
	}

	// Scoring weights are validated to sum to 1.0 at construction, so the
	// weighted sum is already in [0, 10] when every score is.
	value := clamp(weightedSum, entity.MinScore, entity.MaxScore)

	return entity.ConsolidatedScore{
		Value:          value,
		Confidence:     confidence(scores, value),
		QualityTier:    Tier(value),
		Recommendation: Recommend(Tier(value)),
	}
}

// confidence is one minus the normalized dispersion of individual scores
// around the weighted mean: agreeing tasks yield high confidence.
func confidence(scores []float64, mean float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	var sumSq float64
	for _, s := range scores {
		d := s - mean
		sumSq += d * d
	}
	stddev := math.Sqrt(sumSq / float64(len(scores)))

	halfRange := (entity.MaxScore - entity.MinScore) / 2
	return clamp(1-stddev/halfRange, 0, 1)
}

func Tier(value float64) entity.QualityTier {
	switch {
	case value >= 8.0:
		return entity.TierExcellent
	case value >= 6.0:
		return entity.TierGood
	case value >= 4.0:
		return entity.TierAverage
	case value >= 2.0:
		return entity.TierPoor
	default:
		return entity.TierVeryPoor
	}
}

func Recommend(tier entity.QualityTier) entity.Recommendation {
	switch tier {
	case entity.TierExcellent, entity.TierGood:
		return entity.RecommendApprove
	case entity.TierAverage:
		return entity.RecommendReview
	default:
		return entity.RecommendReject
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
