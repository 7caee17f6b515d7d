package consolidator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"content-analyzer/internal/domain/entity"
)

func result(name string, status entity.TaskStatus, score float64) entity.TaskResult {
	return entity.TaskResult{TaskName: name, Status: status, Score: score}
}

func TestConsolidate_WeightedAverage(t *testing.T) {
	c := New(map[string]float64{"alpha": 0.5, "beta": 0.5})

	score := c.Consolidate(map[string]entity.TaskResult{
		"alpha": result("alpha", entity.StatusSuccess, 6.0),
		"beta":  result("beta", entity.StatusSuccess, 8.0),
	})

	assert.InDelta(t, 7.0, score.Value, 1e-9)
	assert.Equal(t, entity.TierGood, score.QualityTier)
	assert.Equal(t, entity.RecommendApprove, score.Recommendation)
	// Scores 6 and 8 around mean 7: stddev 1, confidence 1 - 1/5.
	assert.InDelta(t, 0.8, score.Confidence, 1e-9)
}

func TestConsolidate_MissingTaskGetsNeutralScore(t *testing.T) {
	c := New(map[string]float64{"fact_checker": 0.5, "relevance_analyzer": 0.5})

	score := c.Consolidate(map[string]entity.TaskResult{
		"relevance_analyzer": result("relevance_analyzer", entity.StatusSuccess, 9.0),
	})

	assert.InDelta(t, 7.0, score.Value, 1e-9)
}

func TestConsolidate_TimedOutTaskContributesDefault(t *testing.T) {
	c := New(map[string]float64{"fact_checker": 0.5, "relevance_analyzer": 0.5})

	score := c.Consolidate(map[string]entity.TaskResult{
		"fact_checker":       result("fact_checker", entity.StatusTimeout, entity.DefaultScore),
		"relevance_analyzer": result("relevance_analyzer", entity.StatusSuccess, 9.0),
	})

	assert.InDelta(t, 7.0, score.Value, 1e-9)
	assert.Equal(t, entity.TierGood, score.QualityTier)
}

func TestConsolidate_MetaTasksExcluded(t *testing.T) {
	c := New(map[string]float64{"alpha": 1.0, "score_consolidator": 0, "validator": 0})

	score := c.Consolidate(map[string]entity.TaskResult{
		"alpha":              result("alpha", entity.StatusSuccess, 4.0),
		"score_consolidator": result("score_consolidator", entity.StatusSuccess, 10.0),
		"validator":          result("validator", entity.StatusSuccess, 10.0),
	})

	assert.InDelta(t, 4.0, score.Value, 1e-9)
}

func TestConsolidate_AllAgreeFullConfidence(t *testing.T) {
	c := New(map[string]float64{"alpha": 0.3, "beta": 0.7})

	score := c.Consolidate(map[string]entity.TaskResult{
		"alpha": result("alpha", entity.StatusSuccess, 6.0),
		"beta":  result("beta", entity.StatusSuccess, 6.0),
	})

	assert.InDelta(t, 1.0, score.Confidence, 1e-9)
}

func TestConsolidate_WithinBounds(t *testing.T) {
	c := New(map[string]float64{"alpha": 1.0})

	low := c.Consolidate(map[string]entity.TaskResult{
		"alpha": result("alpha", entity.StatusSuccess, 0.0),
	})
	high := c.Consolidate(map[string]entity.TaskResult{
		"alpha": result("alpha", entity.StatusSuccess, 10.0),
	})

	assert.GreaterOrEqual(t, low.Value, entity.MinScore)
	assert.LessOrEqual(t, high.Value, entity.MaxScore)
	assert.Equal(t, entity.TierVeryPoor, low.QualityTier)
	assert.Equal(t, entity.TierExcellent, high.QualityTier)
}

func TestConsolidate_Deterministic(t *testing.T) {
	weights := map[string]float64{
		"alpha": 0.153, "beta": 0.127, "gamma": 0.102, "delta": 0.085,
		"epsilon": 0.2, "zeta": 0.133, "eta": 0.1, "theta": 0.1,
	}
	c := New(weights)

	results := make(map[string]entity.TaskResult, len(weights))
	scores := []float64{7.3, 4.1, 8.8, 2.2, 9.9, 5.5, 6.6, 3.3}
	i := 0
	for name := range weights {
		results[name] = result(name, entity.StatusSuccess, scores[i])
		i++
	}

	first := c.Consolidate(results)
	for range 50 {
		again := c.Consolidate(results)
		assert.Equal(t, first.Value, again.Value)
		assert.Equal(t, first.Confidence, again.Confidence)
	}
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		value float64
		tier  entity.QualityTier
	}{
		{10.0, entity.TierExcellent},
		{8.0, entity.TierExcellent},
		{7.99, entity.TierGood},
		{6.0, entity.TierGood},
		{5.99, entity.TierAverage},
		{4.0, entity.TierAverage},
		{3.99, entity.TierPoor},
		{2.0, entity.TierPoor},
		{1.99, entity.TierVeryPoor},
		{0.0, entity.TierVeryPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.tier, Tier(tt.value), "value %v", tt.value)
	}
}

func TestRecommendations(t *testing.T) {
	assert.Equal(t, entity.RecommendApprove, Recommend(entity.TierExcellent))
	assert.Equal(t, entity.RecommendApprove, Recommend(entity.TierGood))
	assert.Equal(t, entity.RecommendReview, Recommend(entity.TierAverage))
	assert.Equal(t, entity.RecommendReject, Recommend(entity.TierPoor))
	assert.Equal(t, entity.RecommendReject, Recommend(entity.TierVeryPoor))
}
