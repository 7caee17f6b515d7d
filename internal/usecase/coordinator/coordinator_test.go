package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-analyzer/internal/application/port/output"
	"content-analyzer/internal/application/service"
	"content-analyzer/internal/domain/entity"
	"content-analyzer/internal/infrastructure/logger"
	"content-analyzer/internal/usecase/consolidator"
	"content-analyzer/internal/usecase/escalation"
	"content-analyzer/internal/usecase/executor"
	"content-analyzer/internal/usecase/phaserunner"
)

// scriptedScorer answers per task name and can fail for any prompt whose
// rendered input mentions the poison marker.
type scriptedScorer struct {
	mu        sync.Mutex
	responses map[string]string
	poison    string
}

func (s *scriptedScorer) Call(_ context.Context, taskName string, payload string) (string, error) {
	if s.poison != "" && strings.Contains(payload, s.poison) {
		return "", errors.New("scorer rejected input")
	}

	s.mu.Lock()
	response, ok := s.responses[taskName]
	s.mu.Unlock()
	if !ok {
		response = `{"agent_score": 5.0}`
	}
	return response, nil
}

func testCoordinator(t *testing.T, scorer *scriptedScorer, itemConcurrency int) *Coordinator {
	t.Helper()

	registry, err := service.NewTaskRegistry([]entity.TaskDescriptor{
		{Name: "alpha", Weight: 0.6, Phase: entity.PhaseIndependent, Timeout: time.Second},
		{Name: "beta", Weight: 0.4, Phase: entity.PhaseIndependent, Timeout: time.Second},
		{Name: "validator", Phase: entity.PhaseDependent, Timeout: time.Second},
	})
	require.NoError(t, err)

	log := logger.NewNop()
	exec := executor.New(scorer, log)
	runner := phaserunner.New(registry, exec, log, phaserunner.DefaultConfig())
	cons := consolidator.New(registry.Weights())
	esc := escalation.New(escalation.DefaultConfig(), registry.Weights())

	return New(runner, cons, esc, log, itemConcurrency)
}

func testPost(id string) entity.Post {
	return entity.Post{
		ID:   id,
		Text: "Interesting take on compiler design tradeoffs.",
		Author: entity.AuthorProfile{
			Username:  "devwriter",
			Followers: 1200,
		},
	}
}

func TestAnalyze_FullPipeline(t *testing.T) {
	scorer := &scriptedScorer{responses: map[string]string{
		"alpha":     `{"agent_score": 8.0}`,
		"beta":      `{"agent_score": 6.0}`,
		"validator": `{"agent_score": 7.0, "validation_passed": true}`,
	}}
	coord := testCoordinator(t, scorer, 1)

	record := coord.Analyze(context.Background(), testPost("post-1"))

	assert.Equal(t, entity.StateComplete, record.State)
	assert.Equal(t, "post-1", record.PostID)
	assert.NotEmpty(t, record.RecordID)
	assert.NotEmpty(t, record.RunID)
	assert.Empty(t, record.Err)

	assert.Len(t, record.Independent.Results, 2)
	assert.Len(t, record.Dependent.Results, 1)

	// 0.6*8 + 0.4*6
	assert.InDelta(t, 7.2, record.Score.Value, 1e-9)
	assert.Equal(t, entity.TierGood, record.Score.QualityTier)
	assert.False(t, record.Escalation.Required)
	assert.Greater(t, record.TotalDuration, time.Duration(0))
}

func TestAnalyze_DegradedTasksStillComplete(t *testing.T) {
	scorer := &scriptedScorer{responses: map[string]string{
		"alpha": "no json here",
		"beta":  `{"agent_score": 9.0}`,
	}}
	coord := testCoordinator(t, scorer, 1)

	record := coord.Analyze(context.Background(), testPost("post-1"))

	assert.Equal(t, entity.StateComplete, record.State)
	assert.Equal(t, entity.StatusMalformedOutput, record.Independent.Results["alpha"].Status)
	// 0.6*5 + 0.4*9
	assert.InDelta(t, 6.6, record.Score.Value, 1e-9)
}

// stateLogger records every state transition it is asked to log.
type stateLogger struct {
	mu     sync.Mutex
	states []string
}

func (l *stateLogger) Debug(msg string, args ...any) {
	if msg != "State transition" || len(args) < 4 {
		return
	}
	l.mu.Lock()
	l.states = append(l.states, fmt.Sprint(args[3]))
	l.mu.Unlock()
}

func (l *stateLogger) Info(string, ...any)                     {}
func (l *stateLogger) Warn(string, ...any)                     {}
func (l *stateLogger) Error(string, ...any)                    {}
func (l *stateLogger) WithField(string, any) output.LoggerPort { return l }
func (l *stateLogger) WithFields(map[string]any) output.LoggerPort {
	return l
}
func (l *stateLogger) Close() error { return nil }

func TestAnalyze_StateTransitionOrder(t *testing.T) {
	registry, err := service.NewTaskRegistry([]entity.TaskDescriptor{
		{Name: "alpha", Weight: 1.0, Phase: entity.PhaseIndependent, Timeout: time.Second},
		{Name: "validator", Phase: entity.PhaseDependent, Timeout: time.Second},
	})
	require.NoError(t, err)

	log := &stateLogger{}
	exec := executor.New(&scriptedScorer{}, log)
	runner := phaserunner.New(registry, exec, log, phaserunner.DefaultConfig())
	cons := consolidator.New(registry.Weights())
	esc := escalation.New(escalation.DefaultConfig(), registry.Weights())
	coord := New(runner, cons, esc, log, 1)

	record := coord.Analyze(context.Background(), testPost("post-1"))

	assert.Equal(t, entity.StateComplete, record.State)
	assert.Equal(t, []string{
		string(entity.StateIndependentRunning),
		string(entity.StateDependentRunning),
		string(entity.StateConsolidating),
		string(entity.StateEscalating),
		string(entity.StateComplete),
	}, log.states)
}

func TestAnalyzeBatch_OrderPreserved(t *testing.T) {
	coord := testCoordinator(t, &scriptedScorer{}, 1)

	posts := make([]entity.Post, 5)
	for i := range posts {
		posts[i] = testPost(fmt.Sprintf("post-%d", i))
	}

	var got []string
	for record := range coord.AnalyzeBatch(context.Background(), posts) {
		got = append(got, record.PostID)
	}

	assert.Equal(t, []string{"post-0", "post-1", "post-2", "post-3", "post-4"}, got)
}

func TestAnalyzeBatch_ConcurrentOrderPreserved(t *testing.T) {
	coord := testCoordinator(t, &scriptedScorer{}, 3)

	posts := make([]entity.Post, 7)
	for i := range posts {
		posts[i] = testPost(fmt.Sprintf("post-%d", i))
	}

	var got []string
	for record := range coord.AnalyzeBatch(context.Background(), posts) {
		got = append(got, record.PostID)
	}

	require.Len(t, got, 7)
	for i, id := range got {
		assert.Equal(t, fmt.Sprintf("post-%d", i), id)
	}
}

func TestAnalyzeBatch_ItemFailureIsolated(t *testing.T) {
	scorer := &scriptedScorer{poison: "poison-pill"}
	coord := testCoordinator(t, scorer, 1)

	posts := []entity.Post{
		testPost("post-0"),
		{ID: "post-1", Text: "this post is a poison-pill for the scorer"},
		testPost("post-2"),
	}

	var records []*entity.AnalysisRecord
	for record := range coord.AnalyzeBatch(context.Background(), posts) {
		records = append(records, record)
	}

	require.Len(t, records, 3)

	// The poisoned item degrades to all-default scores but still yields
	// a complete record; its neighbors are untouched.
	poisoned := records[1]
	assert.Equal(t, entity.StateComplete, poisoned.State)
	assert.InDelta(t, entity.DefaultScore, poisoned.Score.Value, 1e-9)
	for _, res := range poisoned.Independent.Results {
		assert.Equal(t, entity.StatusExecutionError, res.Status)
	}

	for _, i := range []int{0, 2} {
		assert.Equal(t, entity.StateComplete, records[i].State)
		for _, res := range records[i].Independent.Results {
			assert.Equal(t, entity.StatusSuccess, res.Status)
		}
	}
}

func TestAnalyzeBatch_CancelClosesStream(t *testing.T) {
	coord := testCoordinator(t, &scriptedScorer{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	posts := []entity.Post{testPost("post-0"), testPost("post-1")}

	// The channel must close promptly on cancellation; emitted records,
	// if any, are still complete ones.
	count := 0
	for record := range coord.AnalyzeBatch(ctx, posts) {
		count++
		assert.Equal(t, entity.StateComplete, record.State)
	}
	assert.LessOrEqual(t, count, len(posts))
}

func TestSummary(t *testing.T) {
	scorer := &scriptedScorer{responses: map[string]string{
		"alpha": `{"agent_score": 8.0}`,
		"beta":  "broken output",
	}}
	coord := testCoordinator(t, scorer, 1)

	posts := []entity.Post{testPost("post-0"), testPost("post-1")}

	var records []*entity.AnalysisRecord
	for record := range coord.AnalyzeBatch(context.Background(), posts) {
		records = append(records, record)
	}

	summary := coord.Summary(records)

	assert.Equal(t, 2, summary.Items)
	assert.Zero(t, summary.ItemFailures)
	// beta fails on both items.
	assert.Equal(t, 2, summary.TaskFailures)
	// 0.6*8 + 0.4*5 per item.
	assert.InDelta(t, 6.8, summary.MeanScore, 1e-9)
	assert.NotEmpty(t, summary.RunID)
}
