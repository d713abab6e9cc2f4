package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompensation_RollbackRunsStepsInReverse(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	c := NewCompensation(obs)
	var order []string
	c.Register("first", "res-1", func(context.Context) error { order = append(order, "first"); return nil })
	c.Register("second", "res-2", func(context.Context) error { order = append(order, "second"); return nil })
	assert.Equal(t, 2, c.Len())

	c.Rollback(context.Background(), errors.New("boom"))
	assert.Equal(t, []string{"second", "first"}, order)

	attempted := obs.ofType(EventCompensationAttempted)
	require.Len(t, attempted, 2)
	assert.Equal(t, "boom", attempted[0].Fields["cause"])
}

func TestCompensation_ConsumedOnce(t *testing.T) {
	t.Parallel()

	c := NewCompensation(&recordingObserver{})
	runs := 0
	c.Register("undo", "res", func(context.Context) error { runs++; return nil })

	c.Rollback(context.Background(), errors.New("first"))
	c.Rollback(context.Background(), errors.New("second"))
	assert.Equal(t, 1, runs)
	assert.Zero(t, c.Len())
}

func TestCompensation_ReleaseSkipsSteps(t *testing.T) {
	t.Parallel()

	c := NewCompensation(&recordingObserver{})
	c.Register("undo", "res", func(context.Context) error {
		t.Fatal("released steps must not run")
		return nil
	})

	c.Release()
	c.Rollback(context.Background(), errors.New("late failure"))
}

func TestCompensation_UndoFailureReported(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	c := NewCompensation(obs)
	c.Register("first", "res-1", func(context.Context) error { return nil })
	c.Register("second", "res-2", func(context.Context) error { return errors.New("still attached") })

	c.Rollback(context.Background(), errors.New("boom"))

	failures := obs.ofType(EventCompensationFailed)
	require.Len(t, failures, 1)
	assert.Equal(t, "res-2", failures[0].Resource)
	assert.Len(t, obs.ofType(EventCompensationAttempted), 2, "later steps still run")
}

func TestCompensation_IgnoresCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCompensation(&recordingObserver{})
	var undoErr error
	c.Register("undo", "res", func(ctx context.Context) error {
		undoErr = ctx.Err()
		return nil
	})
	c.Rollback(ctx, context.Canceled)
	assert.NoError(t, undoErr)
}
