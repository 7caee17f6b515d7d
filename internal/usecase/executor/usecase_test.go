package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-analyzer/internal/domain/entity"
	"content-analyzer/internal/infrastructure/logger"
)

// stubScorer returns a canned response after an optional delay. The delay
// deliberately ignores context cancellation to exercise the deadline
// guarantee on the executor side.
type stubScorer struct {
	response string
	err      error
	delay    time.Duration
}

func (s *stubScorer) Call(_ context.Context, _ string, _ string) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.response, s.err
}

func testDescriptor(timeout time.Duration) entity.TaskDescriptor {
	return entity.TaskDescriptor{
		Name:    "fact_checker",
		Weight:  0.153,
		Phase:   entity.PhaseIndependent,
		Timeout: timeout,
	}
}

func TestExecute_Success(t *testing.T) {
	uc := New(&stubScorer{response: `{"agent_score": 8.0, "assessment": "well sourced"}`}, logger.NewNop())

	res := uc.Execute(context.Background(), testDescriptor(time.Second), "input", nil)

	assert.Equal(t, entity.StatusSuccess, res.Status)
	assert.Equal(t, 8.0, res.Score)
	assert.Equal(t, "well sourced", res.Payload["assessment"])
	assert.Empty(t, res.ErrorDetail)
}

func TestExecute_CallError(t *testing.T) {
	uc := New(&stubScorer{err: errors.New("upstream unavailable")}, logger.NewNop())

	res := uc.Execute(context.Background(), testDescriptor(time.Second), "input", nil)

	assert.Equal(t, entity.StatusExecutionError, res.Status)
	assert.Equal(t, entity.DefaultScore, res.Score)
	assert.Empty(t, res.Payload)
	assert.Contains(t, res.ErrorDetail, "upstream unavailable")
}

func TestExecute_DeadlineErrorMapsToTimeout(t *testing.T) {
	uc := New(&stubScorer{err: context.DeadlineExceeded}, logger.NewNop())

	res := uc.Execute(context.Background(), testDescriptor(time.Second), "input", nil)

	assert.Equal(t, entity.StatusTimeout, res.Status)
	assert.Equal(t, entity.DefaultScore, res.Score)
}

func TestExecute_TimeoutBoundsWait(t *testing.T) {
	uc := New(&stubScorer{
		response: `{"agent_score": 9.0}`,
		delay:    300 * time.Millisecond,
	}, logger.NewNop())

	start := time.Now()
	res := uc.Execute(context.Background(), testDescriptor(50*time.Millisecond), "input", nil)
	elapsed := time.Since(start)

	assert.Equal(t, entity.StatusTimeout, res.Status)
	assert.Equal(t, entity.DefaultScore, res.Score)
	// The wait must end at the task timeout, not at the collaborator's pace.
	assert.Less(t, elapsed, 250*time.Millisecond)
}

func TestExecute_MalformedOutput(t *testing.T) {
	uc := New(&stubScorer{response: "I refuse to answer in JSON."}, logger.NewNop())

	res := uc.Execute(context.Background(), testDescriptor(time.Second), "input", nil)

	assert.Equal(t, entity.StatusMalformedOutput, res.Status)
	assert.Equal(t, entity.DefaultScore, res.Score)
	assert.NotEmpty(t, res.ErrorDetail)
}

func TestExecute_FallbackSelfReport(t *testing.T) {
	uc := New(&stubScorer{response: `{"fallback": true, "agent_score": 5.0}`}, logger.NewNop())

	res := uc.Execute(context.Background(), testDescriptor(time.Second), "input", nil)

	assert.Equal(t, entity.StatusFallback, res.Status)
	assert.Equal(t, 5.0, res.Score)
}

func TestExecute_SalvagesFencedOutput(t *testing.T) {
	uc := New(&stubScorer{
		response: "Analysis below.\n```json\n{\"agent_score\": 6.5}\n```",
	}, logger.NewNop())

	res := uc.Execute(context.Background(), testDescriptor(time.Second), "input", nil)

	require.Equal(t, entity.StatusSuccess, res.Status)
	assert.Equal(t, 6.5, res.Score)
}
