package provisioning

import (
	"context"
	"sync"
)

// UndoFunc issues the request that reverses one completed step.
type UndoFunc func(ctx context.Context) error

type compensationStep struct {
	name     string
	resource string
	undo     UndoFunc
}

// Compensation records rollback steps for a multi-step provisioning attempt.
// It is consumed exactly once, either by Rollback or by Release.
type Compensation struct {
	observer Observer

	mu       sync.Mutex
	steps    []compensationStep
	consumed bool
}

// NewCompensation creates an empty Compensation reporting to observer.
func NewCompensation(observer Observer) *Compensation {
	return &Compensation{observer: observer}
}

// Register adds a rollback step. Steps run in reverse registration order.
func (c *Compensation) Register(name, resource string, undo UndoFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, compensationStep{name: name, resource: resource, undo: undo})
}

// Len returns the number of pending steps.
func (c *Compensation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps)
}

// Rollback issues every registered step once. Undo errors are reported and
// counted but not returned; the caller returns cause unchanged. Rollback
// ignores cancellation of ctx so a caller timeout still releases resources.
func (c *Compensation) Rollback(ctx context.Context, cause error) {
	steps := c.take()
	ctx = context.WithoutCancel(ctx)
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		LogCompensationAttempted(c.observer, step.name, step.resource, cause)
		compensationsTotal.WithLabelValues(compensationAttempted).Inc()
		if err := step.undo(ctx); err != nil {
			LogCompensationFailed(c.observer, step.name, step.resource, err)
			compensationsTotal.WithLabelValues(compensationFailed).Inc()
		}
	}
}

// Release drops all steps without running them.
func (c *Compensation) Release() {
	c.take()
}

func (c *Compensation) take() []compensationStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.consumed {
		return nil
	}
	c.consumed = true
	steps := c.steps
	c.steps = nil
	return steps
}
