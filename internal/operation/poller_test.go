package operation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns a FetchFunc that yields the given statuses in order.
func scripted(t *testing.T, statuses ...Status) (FetchFunc, *int) {
	t.Helper()
	calls := 0
	return func(_ context.Context, name string) (*Operation, error) {
		require.Less(t, calls, len(statuses), "fetched more often than scripted")
		op := &Operation{Name: name, Status: statuses[calls]}
		calls++
		return op, nil
	}, &calls
}

// countingSleep records every interval the poller waits.
func countingSleep(slept *[]time.Duration) SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestPoller_PollHandle_Done(t *testing.T) {
	t.Parallel()

	fetch, calls := scripted(t, StatusPending, StatusDone)
	var slept []time.Duration
	p := NewPoller(logr.Discard(), WithSleep(countingSleep(&slept)))

	h := NewPollHandle(&Operation{Name: "op-1", Status: StatusPending}, fetch, 0)
	op, err := p.Wait(context.Background(), h)
	require.NoError(t, err)

	assert.Equal(t, StatusDone, op.Status)
	assert.Equal(t, "op-1", op.Name)
	assert.Equal(t, 2, *calls)
	assert.Equal(t, []time.Duration{DefaultPollInterval, DefaultPollInterval}, slept)
}

func TestPoller_PollHandle_Aborting(t *testing.T) {
	t.Parallel()

	fetch, _ := scripted(t, StatusAborting)
	var slept []time.Duration
	p := NewPoller(logr.Discard(), WithSleep(countingSleep(&slept)))

	_, err := p.Wait(context.Background(), NewPollHandle(&Operation{Name: "op-2", Status: StatusPending}, fetch, time.Second))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOperationFailed)

	var failed *FailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, StatusAborting, failed.Operation.Status)
	assert.Equal(t, []time.Duration{time.Second}, slept)
}

func TestPoller_DoneWithErrors(t *testing.T) {
	t.Parallel()

	p := NewPoller(logr.Discard(), WithSleep(countingSleep(new([]time.Duration))))
	h := NewPollHandle(&Operation{Name: "op-3", Status: StatusPending}, func(_ context.Context, name string) (*Operation, error) {
		return &Operation{Name: name, Status: StatusDone, Errors: []Failure{{Code: "QUOTA_EXCEEDED", Message: "no CPUs left"}}}, nil
	}, 0)

	_, err := p.Wait(context.Background(), h)
	assert.ErrorIs(t, err, ErrOperationFailed)
	assert.Contains(t, err.Error(), "QUOTA_EXCEEDED: no CPUs left")
}

func TestPoller_AlreadyTerminal(t *testing.T) {
	t.Parallel()

	fetch, calls := scripted(t)
	p := NewPoller(logr.Discard(), WithSleep(countingSleep(new([]time.Duration))))

	op, err := p.Wait(context.Background(), NewPollHandle(&Operation{Name: "op", Status: StatusDone}, fetch, 0))
	require.NoError(t, err)
	assert.Equal(t, "op", op.Name)
	assert.Zero(t, *calls)
}

func TestPoller_FetchErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	boom := errors.New("connection reset")
	h := NewPollHandle(&Operation{Name: "op-4", Status: StatusPending}, func(_ context.Context, _ string) (*Operation, error) {
		calls++
		return nil, boom
	}, 0)
	p := NewPoller(logr.Discard(), WithSleep(countingSleep(new([]time.Duration))))

	_, err := p.Wait(context.Background(), h)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, boom)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "op-4", fetchErr.Last.Name)
}

func TestPoller_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch, calls := scripted(t, StatusDone)
	p := NewPoller(logr.Discard())
	_, err := p.Wait(ctx, NewPollHandle(&Operation{Name: "op", Status: StatusPending}, fetch, time.Hour))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, *calls)
}

func TestPoller_EventHandle(t *testing.T) {
	t.Parallel()

	events := make(chan Event, 3)
	events <- Event{Type: EventProgress, Operation: &Operation{Name: "vm", Status: StatusPending, Progress: 40}}
	events <- Event{Type: EventProgress, Operation: &Operation{Name: "vm", Status: StatusPending, Progress: 90}}
	events <- Event{Type: EventComplete, Operation: &Operation{Name: "vm", Status: StatusDone, Progress: 100}}
	close(events)

	var slept []time.Duration
	p := NewPoller(logr.Discard(), WithSleep(countingSleep(&slept)))
	h := NewEventHandle(&Operation{Name: "vm", Status: StatusPending}, events, logr.Discard())

	op, err := p.Wait(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, op.Status)
	assert.Equal(t, 100, op.Progress)
	assert.Empty(t, slept)
}

func TestPoller_EventHandle_Failures(t *testing.T) {
	t.Parallel()
	p := NewPoller(logr.Discard())

	t.Run("error event", func(t *testing.T) {
		t.Parallel()
		events := make(chan Event, 1)
		events <- Event{Type: EventError, Err: errors.New("wait failed")}
		_, err := p.Wait(context.Background(), NewEventHandle(&Operation{Name: "a"}, events, logr.Discard()))
		var fetchErr *FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})

	t.Run("complete with errors", func(t *testing.T) {
		t.Parallel()
		events := make(chan Event, 1)
		events <- Event{Type: EventComplete, Operation: &Operation{Name: "b", Status: StatusDone, Errors: []Failure{{Message: "disk quota"}}}}
		_, err := p.Wait(context.Background(), NewEventHandle(&Operation{Name: "b"}, events, logr.Discard()))
		assert.ErrorIs(t, err, ErrOperationFailed)
	})

	t.Run("stream closed", func(t *testing.T) {
		t.Parallel()
		events := make(chan Event)
		close(events)
		_, err := p.Wait(context.Background(), NewEventHandle(&Operation{Name: "c"}, events, logr.Discard()))
		assert.ErrorIs(t, err, errStreamClosed)
	})
}

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusPending, NormalizeStatus("RUNNING"))
	assert.Equal(t, StatusPending, NormalizeStatus("running"))
	assert.Equal(t, StatusPending, NormalizeStatus("PENDING"))
	assert.Equal(t, StatusDone, NormalizeStatus("DONE"))
	assert.Equal(t, StatusDone, NormalizeStatus("success"))
	assert.Equal(t, StatusDone, NormalizeStatus("error"))
	assert.Equal(t, StatusAborting, NormalizeStatus("ABORTING"))
}

func TestPoller_StreamHandleStartsLazily(t *testing.T) {
	t.Parallel()

	started := 0
	h := NewStreamHandle(&Operation{Name: "lazy", Status: StatusPending}, func(ctx context.Context) <-chan Event {
		started++
		ch := make(chan Event, 2)
		go func() {
			defer close(ch)
			Emit(ctx, ch, Event{Type: EventProgress, Operation: &Operation{Name: "lazy", Progress: 50}})
			Emit(ctx, ch, Event{Type: EventComplete, Operation: &Operation{Name: "lazy", Status: StatusDone}})
		}()
		return ch
	}, logr.Discard())

	assert.Zero(t, started)
	assert.Equal(t, "lazy", h.Operation().Name)

	op, err := NewPoller(logr.Discard()).Wait(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, op.Status)
	assert.Equal(t, 1, started)
}

func TestPoller_EmptySnapshotIsFetchError(t *testing.T) {
	t.Parallel()

	calls := 0
	h := NewPollHandle(&Operation{Name: "op-5", Status: StatusPending}, func(_ context.Context, _ string) (*Operation, error) {
		calls++
		return nil, nil
	}, 0)
	p := NewPoller(logr.Discard(), WithSleep(countingSleep(new([]time.Duration))))

	_, err := p.Wait(context.Background(), h)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrEmptySnapshot)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "op-5", fetchErr.Last.Name)
	assert.Equal(t, "op-5", h.Operation().Name, "last good record is kept")
}

// nilHandle fetches nothing without reporting an error.
type nilHandle struct{ op *Operation }

func (h *nilHandle) Operation() *Operation { return h.op }

func (h *nilHandle) Interval() time.Duration { return 0 }

func (h *nilHandle) Fetch(context.Context) (*Operation, error) { return nil, nil }

func TestPoller_EmptySnapshotFromAnyHandle(t *testing.T) {
	t.Parallel()

	p := NewPoller(logr.Discard())
	_, err := p.Wait(context.Background(), &nilHandle{op: &Operation{Name: "op-6", Status: StatusPending}})
	assert.ErrorIs(t, err, ErrEmptySnapshot)
}

func TestFailedError_NilOperation(t *testing.T) {
	t.Parallel()

	err := &FailedError{}
	assert.Equal(t, "operation failed", err.Error())
	assert.ErrorIs(t, err, ErrOperationFailed)
}
