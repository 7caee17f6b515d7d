package coordinator

import "content-analyzer/internal/domain/entity"

// BatchSummary is the roll-up over one batch run. Per-item and per-task
// failure counts are reported here instead of ever halting the batch.
type BatchSummary struct {
	RunID        string
	Items        int
	ItemFailures int
	TaskFailures int
	Escalations  int
	MeanScore    float64
}

func (c *Coordinator) Summary(records []*entity.AnalysisRecord) BatchSummary {
	summary := BatchSummary{RunID: c.runID, Items: len(records)}

	var scoreSum float64
	scored := 0

	for _, record := range records {
		if record.Err != "" {
			summary.ItemFailures++
			continue
		}
		if record.Escalation.Required {
			summary.Escalations++
		}
		scoreSum += record.Score.Value
		scored++

		for _, outcome := range []entity.PhaseOutcome{record.Independent, record.Dependent} {
			for _, res := range outcome.Results {
				if res.Status != entity.StatusSuccess {
					summary.TaskFailures++
				}
			}
		}
	}

	if scored > 0 {
		summary.MeanScore = scoreSum / float64(scored)
	}
	return summary
}
