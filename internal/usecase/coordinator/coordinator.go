package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"content-analyzer/internal/application/port/input"
	"content-analyzer/internal/application/port/output"
	"content-analyzer/internal/domain/entity"
	"content-analyzer/internal/infrastructure/prompts"
	"content-analyzer/internal/usecase/consolidator"
	"content-analyzer/internal/usecase/escalation"
	"content-analyzer/internal/usecase/phaserunner"
)

var _ input.Analyzer = (*Coordinator)(nil)

// Coordinator sequences phase runner, consolidator and escalation
// evaluator for each post and assembles the final record. Items in a
// batch are isolated: one item's failure never aborts the others.
type Coordinator struct {
	runner       *phaserunner.Runner
	consolidator *consolidator.Consolidator
	escalator    *escalation.Evaluator
	logger       output.LoggerPort

	runID           string
	itemConcurrency int
}

func New(
	runner *phaserunner.Runner,
	cons *consolidator.Consolidator,
	esc *escalation.Evaluator,
	logger output.LoggerPort,
	itemConcurrency int,
) *Coordinator {
	if itemConcurrency < 1 {
		itemConcurrency = 1
	}
	return &Coordinator{
		runner:          runner,
		consolidator:    cons,
		escalator:       esc,
		logger:          logger,
		runID:           uuid.NewString(),
		itemConcurrency: itemConcurrency,
	}
}

// Analyze walks one post through the full state machine. The returned
// record is immutable once it reaches StateComplete.
func (c *Coordinator) Analyze(ctx context.Context, post entity.Post) *entity.AnalysisRecord {
	start := time.Now()

	record := &entity.AnalysisRecord{
		RecordID: uuid.NewString(),
		RunID:    c.runID,
		PostID:   post.ID,
		State:    entity.StatePending,
	}

	itemLog := c.logger.WithField("post", post.ID)
	itemLog.Info("Analysis started")

	input := prompts.ComposeInput(post)

	c.transition(record, entity.StateIndependentRunning, itemLog)
	record.Independent = c.runner.RunIndependent(ctx, input)

	c.transition(record, entity.StateDependentRunning, itemLog)
	record.Dependent = c.runner.RunDependent(ctx, input, record.Independent)

	merged := mergeResults(record.Independent, record.Dependent)

	c.transition(record, entity.StateConsolidating, itemLog)
	record.Score = c.consolidator.Consolidate(merged)

	c.transition(record, entity.StateEscalating, itemLog)
	record.Escalation = c.escalator.Evaluate(merged, record.Score)

	record.TotalDuration = time.Since(start)
	c.transition(record, entity.StateComplete, itemLog)

	itemLog.Info("Analysis complete",
		"score", record.Score.Value,
		"tier", record.Score.QualityTier,
		"escalation", record.Escalation.Required,
		"duration", record.TotalDuration,
	)

	return record
}

// AnalyzeBatch streams one record per post in input order. A panic while
// assembling one record becomes an error-marker record; the batch always
// completes for every item.
func (c *Coordinator) AnalyzeBatch(ctx context.Context, posts []entity.Post) <-chan *entity.AnalysisRecord {
	out := make(chan *entity.AnalysisRecord)

	go func() {
		defer close(out)

		if c.itemConcurrency == 1 {
			for _, post := range posts {
				select {
				case out <- c.analyzeItem(ctx, post):
				case <-ctx.Done():
					return
				}
			}
			return
		}

		// Bounded fan-out with ordered emission: each item gets its own
		// slot channel; the emitter drains slots in input order.
		slots := make([]chan *entity.AnalysisRecord, len(posts))
		for i := range slots {
			slots[i] = make(chan *entity.AnalysisRecord, 1)
		}

		g := &errgroup.Group{}
		g.SetLimit(c.itemConcurrency)
		go func() {
			for i, post := range posts {
				i, post := i, post
				g.Go(func() error {
					slots[i] <- c.analyzeItem(ctx, post)
					return nil
				})
			}
			_ = g.Wait()
		}()

		for i := range posts {
			select {
			case record := <-slots[i]:
				select {
				case out <- record:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (c *Coordinator) analyzeItem(ctx context.Context, post entity.Post) (record *entity.AnalysisRecord) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Analysis panicked", "post", post.ID, "panic", r)
			record = &entity.AnalysisRecord{
				RecordID: uuid.NewString(),
				RunID:    c.runID,
				PostID:   post.ID,
				State:    entity.StateComplete,
				Err:      fmt.Sprintf("analysis failed: %v", r),
			}
		}
	}()
	return c.Analyze(ctx, post)
}

func (c *Coordinator) transition(record *entity.AnalysisRecord, next entity.RunState, log output.LoggerPort) {
	log.Debug("State transition", "from", record.State, "to", next)
	record.State = next
}

func mergeResults(independent, dependent entity.PhaseOutcome) map[string]entity.TaskResult {
	merged := make(map[string]entity.TaskResult, len(independent.Results)+len(dependent.Results))
	for name, res := range independent.Results {
		merged[name] = res
	}
	for name, res := range dependent.Results {
		merged[name] = res
	}
	return merged
}
