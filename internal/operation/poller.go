package operation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Poller drives handles to a terminal state. There is no backoff and no
// retry limit: a handle is re-fetched until it settles or a fetch fails.
type Poller struct {
	logger logr.Logger
	sleep  SleepFunc
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithSleep replaces the interval sleep (useful for testing).
func WithSleep(fn SleepFunc) PollerOption {
	return func(p *Poller) {
		p.sleep = fn
	}
}

// NewPoller creates a Poller.
func NewPoller(logger logr.Logger, opts ...PollerOption) *Poller {
	p := &Poller{logger: logger, sleep: sleepContext}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until h is terminal. A successful DONE record is returned as is;
// DONE with errors or ABORTING yields a *FailedError carrying the record. A
// failed fetch yields a *FetchError immediately. Cancelling ctx abandons the
// wait; the provider keeps running the operation.
func (p *Poller) Wait(ctx context.Context, h Handle) (*Operation, error) {
	start := time.Now()
	kind := handleKind(h)
	op := h.Operation()
	if op == nil {
		return nil, fmt.Errorf("no operation to wait for")
	}
	log := p.logger.WithValues("operation", op.Name)
	log.V(1).Info("waiting for operation", "kind", kind, "status", op.Status)

	for !op.Terminal() {
		if d := h.Interval(); d > 0 {
			if err := p.sleep(ctx, d); err != nil {
				recordWait(outcomeCanceled, time.Since(start).Seconds())
				return nil, fmt.Errorf("stopped waiting for operation %s: %w", op.Name, err)
			}
		}

		next, err := h.Fetch(ctx)
		fetchTotal.WithLabelValues(kind).Inc()
		if err == nil && next == nil {
			err = ErrEmptySnapshot
		}
		if err != nil {
			recordWait(outcomeFetchError, time.Since(start).Seconds())
			return nil, &FetchError{Last: op, Err: err}
		}
		op = next
		log.V(1).Info("operation status", "status", op.Status, "progress", op.Progress)
	}

	if op.Failed() {
		recordWait(outcomeFailed, time.Since(start).Seconds())
		return nil, &FailedError{Operation: op}
	}
	recordWait(outcomeDone, time.Since(start).Seconds())
	log.V(1).Info("operation done", "duration", time.Since(start).Round(time.Millisecond))
	return op, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
