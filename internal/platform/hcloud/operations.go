package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/gkectl/internal/operation"
	"github.com/imamik/gkectl/internal/util/retry"
)

// DeleteOperation encapsulates deletion logic for any hcloud resource.
// A missing resource is reported through the found result rather than an
// error so callers decide whether deletion is idempotent. Locked resources
// are retried with exponential backoff.
type DeleteOperation[T any] struct {
	Name         string
	ResourceType string

	// Get retrieves the resource by name
	Get func(ctx context.Context, name string) (T, *hcloud.Response, error)

	// Delete removes the resource and returns the action to wait for, if any
	Delete func(ctx context.Context, resource T) (*hcloud.Action, *hcloud.Response, error)
}

// Execute performs the delete with retry logic and timeout handling.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) (action *hcloud.Action, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, client.timeouts.Delete)
	defer cancel()

	err = retry.Do(ctx, func() error {
		resource, _, err := op.Get(ctx, op.Name)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to get %s: %w", op.ResourceType, err))
		}
		if reflect.ValueOf(resource).IsNil() {
			found = false
			return nil
		}
		found = true

		action, _, err = op.Delete(ctx, resource)
		if err != nil {
			if isResourceLocked(err) {
				return err // Retryable
			}
			return retry.Permanent(err)
		}
		return nil
	},
		retry.WithRetries(client.timeouts.RetryMaxAttempts),
		retry.WithDelay(client.timeouts.RetryInitialDelay))
	return action, found, err
}

// step starts follow-up actions once the previous ones finished.
type step func(ctx context.Context) ([]*hcloud.Action, error)

// actionOperation describes actions as a single operation record.
func actionOperation(resource string, actions ...*hcloud.Action) *operation.Operation {
	op := &operation.Operation{Name: resource, Status: operation.StatusDone, TargetLink: resource}
	var started []*hcloud.Action
	for _, a := range actions {
		if a != nil {
			started = append(started, a)
		}
	}
	if len(started) == 0 {
		op.Result = resource
		return op
	}

	first := started[0]
	op.Name = fmt.Sprintf("action-%d", first.ID)
	op.Type = first.Command
	op.Raw = started

	done := 0
	for _, a := range started {
		switch a.Status {
		case hcloud.ActionStatusRunning:
			op.Status = operation.StatusPending
		case hcloud.ActionStatusError:
			op.Errors = append(op.Errors, operation.Failure{Code: a.ErrorCode, Message: a.ErrorMessage})
			done++
		default:
			done++
		}
	}
	op.Progress = done * 100 / len(started)
	if op.Status == operation.StatusDone && len(op.Errors) == 0 {
		op.Result = resource
	}
	return op
}

// actionHandle returns an event-driven handle over actions. Follow-up steps
// run after the started actions finish successfully; their actions are
// awaited in turn. Each finished action yields a progress event.
func (c *RealClient) actionHandle(resource string, actions []*hcloud.Action, then ...step) operation.Handle {
	current := actionOperation(resource, actions...)
	if len(then) > 0 && current.Status == operation.StatusDone && len(current.Errors) == 0 {
		// Follow-up steps still need to run.
		current.Status = operation.StatusPending
		current.Result = nil
	}

	name, typ := current.Name, current.Type
	return operation.NewStreamHandle(current, func(ctx context.Context) <-chan operation.Event {
		events := make(chan operation.Event, 1)
		go func() {
			defer close(events)

			pending := actions
			steps := then
			for {
				failures, err := c.waitActions(ctx, name, pending, events)
				if err != nil {
					operation.Emit(ctx, events, operation.Event{Type: operation.EventError, Err: err})
					return
				}
				if len(failures) > 0 || len(steps) == 0 {
					final := &operation.Operation{
						Name:       name,
						Type:       typ,
						Status:     operation.StatusDone,
						Progress:   100,
						TargetLink: resource,
						Errors:     failures,
					}
					if len(failures) == 0 {
						final.Result = resource
					}
					operation.Emit(ctx, events, operation.Event{Type: operation.EventComplete, Operation: final})
					return
				}

				next, err := steps[0](ctx)
				if err != nil {
					operation.Emit(ctx, events, operation.Event{Type: operation.EventError, Err: err})
					return
				}
				pending, steps = next, steps[1:]
			}
		}()
		return events
	}, c.logger)
}

// waitActions blocks until all actions finished and returns the failed ones.
func (c *RealClient) waitActions(ctx context.Context, name string, actions []*hcloud.Action, events chan<- operation.Event) ([]operation.Failure, error) {
	var started []*hcloud.Action
	for _, a := range actions {
		if a != nil {
			started = append(started, a)
		}
	}
	if len(started) == 0 {
		return nil, nil
	}

	var failures []operation.Failure
	finished := 0
	err := c.client.Action.WaitForFunc(ctx, func(update *hcloud.Action) error {
		finished++
		if update.Status == hcloud.ActionStatusError {
			failures = append(failures, operation.Failure{Code: update.ErrorCode, Message: update.ErrorMessage})
		}
		operation.Emit(ctx, events, operation.Event{
			Type: operation.EventProgress,
			Operation: &operation.Operation{
				Name:     name,
				Type:     update.Command,
				Status:   operation.StatusPending,
				Progress: finished * 100 / len(started),
			},
		})
		return nil
	}, started...)
	if err != nil {
		return nil, err
	}
	return failures, nil
}
