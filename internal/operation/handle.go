package operation

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
)

// DefaultPollInterval is the fixed delay between re-fetches of a poll-driven operation.
const DefaultPollInterval = 2 * time.Second

// Handle is an in-flight operation the Poller can drive.
type Handle interface {
	// Operation returns the last known snapshot.
	Operation() *Operation
	// Fetch returns the next snapshot.
	Fetch(ctx context.Context) (*Operation, error)
	// Interval is the delay the Poller waits before each Fetch.
	Interval() time.Duration
}

// FetchFunc re-reads an operation by name.
type FetchFunc func(ctx context.Context, name string) (*Operation, error)

// PollHandle re-fetches an operation by name on a fixed interval.
type PollHandle struct {
	op       *Operation
	fetch    FetchFunc
	interval time.Duration
}

// NewPollHandle returns a handle for op. fetch must query the same region or
// zone the operation was started in. A non-positive interval uses DefaultPollInterval.
func NewPollHandle(op *Operation, fetch FetchFunc, interval time.Duration) *PollHandle {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollHandle{op: op, fetch: fetch, interval: interval}
}

func (h *PollHandle) Operation() *Operation { return h.op }

func (h *PollHandle) Interval() time.Duration { return h.interval }

func (h *PollHandle) Fetch(ctx context.Context) (*Operation, error) {
	op, err := h.fetch(ctx, h.op.Name)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, ErrEmptySnapshot
	}
	h.op = op
	return op, nil
}

// EventType classifies an operation event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is emitted by an event-driven operation.
type Event struct {
	Type      EventType
	Operation *Operation
	Err       error
}

// errStreamClosed is reported when the event stream ends without a terminal event.
var errStreamClosed = errors.New("event stream closed before the operation completed")

// Stream starts delivering events for an operation. It is called once, with
// the context of the first Fetch, and must close the channel when it stops.
type Stream func(ctx context.Context) <-chan Event

// EventHandle consumes an event stream. Progress events are logged and never
// change the lifecycle state.
type EventHandle struct {
	op     *Operation
	events <-chan Event
	start  Stream
	logger logr.Logger
}

// NewEventHandle returns a handle for op reading from events.
func NewEventHandle(op *Operation, events <-chan Event, logger logr.Logger) *EventHandle {
	return &EventHandle{op: op, events: events, logger: logger}
}

// NewStreamHandle returns a handle for op whose events are produced by start.
// Nothing runs until the handle is first fetched, so a handle that is never
// waited on costs nothing.
func NewStreamHandle(op *Operation, start Stream, logger logr.Logger) *EventHandle {
	return &EventHandle{op: op, start: start, logger: logger}
}

func (h *EventHandle) Operation() *Operation { return h.op }

// Interval is zero; Fetch blocks until the next terminal event.
func (h *EventHandle) Interval() time.Duration { return 0 }

func (h *EventHandle) Fetch(ctx context.Context) (*Operation, error) {
	if h.events == nil && h.start != nil {
		h.events = h.start(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case ev, ok := <-h.events:
			if !ok {
				return nil, errStreamClosed
			}
			switch ev.Type {
			case EventError:
				return nil, ev.Err
			case EventComplete:
				if ev.Operation != nil {
					h.op = ev.Operation
				}
				if !h.op.Terminal() {
					h.op.Status = StatusDone
				}
				return h.op, nil
			default:
				if ev.Operation != nil {
					h.op.Progress = ev.Operation.Progress
					h.logger.V(1).Info("operation progress",
						"operation", ev.Operation.Name,
						"status", ev.Operation.Status,
						"progress", ev.Operation.Progress)
				}
			}
		}
	}
}

// Emit sends ev on ch unless ctx is done first.
func Emit(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
