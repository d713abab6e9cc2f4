package gcp

import (
	"context"
	"strconv"

	compute "google.golang.org/api/compute/v1"
	container "google.golang.org/api/container/v1"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/imamik/gkectl/internal/address"
	"github.com/imamik/gkectl/internal/operation"
)

// fromContainer converts a GKE operation.
func fromContainer(op *container.Operation) *operation.Operation {
	out := &operation.Operation{
		Name:       op.Name,
		Type:       op.OperationType,
		Status:     operation.NormalizeStatus(op.Status),
		TargetLink: op.TargetLink,
		Raw:        op,
	}
	if op.Error != nil && (op.Error.Message != "" || op.Error.Code != 0) {
		out.Errors = append(out.Errors, operation.Failure{
			Code:    strconv.FormatInt(op.Error.Code, 10),
			Message: op.Error.Message,
		})
	}
	if out.Status == operation.StatusDone && len(out.Errors) == 0 {
		out.Result = op.TargetLink
	}
	return out
}

// fromCompute converts a Compute Engine operation.
func fromCompute(op *compute.Operation) *operation.Operation {
	out := &operation.Operation{
		Name:       op.Name,
		Type:       op.OperationType,
		Status:     operation.NormalizeStatus(op.Status),
		Progress:   int(op.Progress),
		TargetLink: op.TargetLink,
		Raw:        op,
	}
	if op.Error != nil {
		for _, e := range op.Error.Errors {
			out.Errors = append(out.Errors, operation.Failure{Code: e.Code, Message: e.Message})
		}
	}
	if out.Status == operation.StatusDone && len(out.Errors) == 0 {
		out.Result = op.TargetLink
	}
	return out
}

// gkeHandle returns a poll-driven handle that re-reads op in the location it was started in.
func (c *Client) gkeHandle(loc address.Address, op *container.Operation) operation.Handle {
	return operation.NewPollHandle(fromContainer(op), func(ctx context.Context, name string) (*operation.Operation, error) {
		var (
			cur *container.Operation
			err error
		)
		if loc.Zonal() {
			cur, err = c.container.Projects.Zones.Operations.Get(loc.Project, loc.Location.Value, name).Context(ctx).Do()
		} else {
			cur, err = c.container.Projects.Locations.Operations.Get(loc.OperationPath(name)).Context(ctx).Do()
		}
		if err != nil {
			return nil, err
		}
		return fromContainer(cur), nil
	}, c.pollInterval)
}

// computeWaitFunc blocks on the operations Wait endpoint for one round.
type computeWaitFunc func(ctx context.Context, name string) (*compute.Operation, error)

func (c *Client) zoneWait(zone string) computeWaitFunc {
	return func(ctx context.Context, name string) (*compute.Operation, error) {
		return c.compute.ZoneOperations.Wait(c.project, zone, name).Context(ctx).Do()
	}
}

func (c *Client) regionWait(region string) computeWaitFunc {
	return func(ctx context.Context, name string) (*compute.Operation, error) {
		return c.compute.RegionOperations.Wait(c.project, region, name).Context(ctx).Do()
	}
}

func (c *Client) globalWait() computeWaitFunc {
	return func(ctx context.Context, name string) (*compute.Operation, error) {
		return c.compute.GlobalOperations.Wait(c.project, name).Context(ctx).Do()
	}
}

// computeHandle returns an event-driven handle for op. Once waited on, a
// watcher calls the Wait endpoint until the operation is DONE, emitting a
// progress event per round and a single complete or error event at the end.
func (c *Client) computeHandle(op *compute.Operation, waitFn computeWaitFunc) operation.Handle {
	current := fromCompute(op)
	return operation.NewStreamHandle(current, func(ctx context.Context) <-chan operation.Event {
		events := make(chan operation.Event, 1)
		go func() {
			defer close(events)
			if current.Terminal() {
				operation.Emit(ctx, events, operation.Event{Type: operation.EventComplete, Operation: current})
				return
			}
			err := wait.PollUntilContextCancel(ctx, c.pollInterval, true, func(ctx context.Context) (bool, error) {
				cur, err := waitFn(ctx, op.Name)
				if err != nil {
					return false, err
				}
				next := fromCompute(cur)
				if next.Terminal() {
					operation.Emit(ctx, events, operation.Event{Type: operation.EventComplete, Operation: next})
					return true, nil
				}
				operation.Emit(ctx, events, operation.Event{Type: operation.EventProgress, Operation: next})
				return false, nil
			})
			if err != nil {
				operation.Emit(ctx, events, operation.Event{Type: operation.EventError, Err: err})
			}
		}()
		return events
	}, c.logger)
}
