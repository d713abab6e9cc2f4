// Package operation tracks provider-side asynchronous operations to a
// terminal state.
//
// Providers expose two shapes of in-flight operation. Poll-driven handles are
// identified by name and re-fetched on a fixed interval (GKE operations).
// Event-driven handles deliver progress and completion events on a stream
// (Compute Engine waits, Hetzner Cloud actions). Both are adapted to the
// [Handle] interface and driven by a single [Poller].
package operation

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the collapsed lifecycle state of an operation.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusDone     Status = "DONE"
	StatusAborting Status = "ABORTING"
)

// NormalizeStatus collapses a provider status into PENDING, DONE or ABORTING.
// Unknown states count as pending; the operation is re-fetched until it settles.
func NormalizeStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "DONE", "SUCCESS", "ERROR":
		return StatusDone
	case "ABORTING", "ABORTED", "CANCELLED":
		return StatusAborting
	default:
		return StatusPending
	}
}

// Failure is a single error reported by the provider for an operation.
type Failure struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (f Failure) String() string {
	if f.Code == "" {
		return f.Message
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// Operation is a snapshot of a provider-side asynchronous task.
type Operation struct {
	Name       string    `json:"name"`
	Type       string    `json:"type,omitempty"`
	Status     Status    `json:"status"`
	Progress   int       `json:"progress,omitempty"`
	TargetLink string    `json:"targetLink,omitempty"`
	Errors     []Failure `json:"errors,omitempty"`
	Result     any       `json:"result,omitempty"`

	// Raw is the last provider record, kept for diagnostics.
	Raw any `json:"-"`
}

// Terminal reports whether the operation reached DONE or ABORTING.
func (o *Operation) Terminal() bool {
	return o != nil && (o.Status == StatusDone || o.Status == StatusAborting)
}

// Failed reports whether a terminal operation did not succeed.
func (o *Operation) Failed() bool {
	return o.Status == StatusAborting || (o.Status == StatusDone && len(o.Errors) > 0)
}

// ErrOperationFailed is wrapped by FailedError.
var ErrOperationFailed = errors.New("operation failed")

// ErrEmptySnapshot is reported through FetchError when a fetch returns no record.
var ErrEmptySnapshot = errors.New("provider returned no operation record")

// FailedError is returned when an operation ends in ABORTING or DONE with errors.
type FailedError struct {
	Operation *Operation
}

func (e *FailedError) Error() string {
	op := e.Operation
	if op == nil {
		return ErrOperationFailed.Error()
	}
	if len(op.Errors) == 0 {
		return fmt.Sprintf("operation %s failed with status %s", op.Name, op.Status)
	}
	msgs := make([]string, 0, len(op.Errors))
	for _, f := range op.Errors {
		msgs = append(msgs, f.String())
	}
	return fmt.Sprintf("operation %s failed: %s", op.Name, strings.Join(msgs, "; "))
}

func (e *FailedError) Unwrap() error {
	return ErrOperationFailed
}

// FetchError is returned when re-fetching an operation's status fails.
// The wait is aborted; the operation may still complete on the provider side.
type FetchError struct {
	Last *Operation
	Err  error
}

func (e *FetchError) Error() string {
	name := ""
	if e.Last != nil {
		name = e.Last.Name
	}
	return fmt.Sprintf("couldn't get operation %s: %v", name, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
