package provisioning

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/gkectl/internal/operation"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	// Event emits a structured event
	Event(event Event)

	// Logger returns the underlying logger with the observer's fields attached
	Logger() logr.Logger

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Kind      string            // Resource kind (e.g., "cluster", "instance")
	Message   string            // Human-readable message
	Resource  string            // Resource path or name if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
	Err       error             // Cause, for failure events
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventOperationSubmitted indicates a mutating request was accepted by the provider.
	EventOperationSubmitted EventType = "operation.submitted"
	// EventOperationCompleted indicates a waited-on operation finished successfully.
	EventOperationCompleted EventType = "operation.completed"
	// EventOperationFailed indicates a submit or wait failed.
	EventOperationFailed EventType = "operation.failed"

	// EventCompensationAttempted indicates a rollback step is being issued.
	EventCompensationAttempted EventType = "compensation.attempted"
	// EventCompensationFailed indicates a rollback step could not be issued.
	EventCompensationFailed EventType = "compensation.failed"
)

// LogObserver implements Observer on top of a logr.Logger.
type LogObserver struct {
	logger        logr.Logger
	contextFields map[string]string
}

// NewLogObserver creates a new logger-backed observer.
func NewLogObserver(logger logr.Logger) *LogObserver {
	return &LogObserver{
		logger:        logger,
		contextFields: make(map[string]string),
	}
}

// Logger implements Observer interface.
func (o *LogObserver) Logger() logr.Logger {
	return o.logger.WithValues(keyValues(o.contextFields)...)
}

// Event implements Observer interface. Failure events are logged as errors,
// everything else at info level.
func (o *LogObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	fields := make(map[string]string, len(o.contextFields)+len(event.Fields))
	maps.Copy(fields, o.contextFields)
	maps.Copy(fields, event.Fields)

	kv := []any{"event", string(event.Type)}
	if event.Kind != "" {
		kv = append(kv, "kind", event.Kind)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, keyValues(fields)...)

	if event.Err != nil {
		o.logger.Error(event.Err, event.Message, kv...)
		return
	}
	o.logger.Info(event.Message, kv...)
}

// WithFields implements Observer interface.
func (o *LogObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	maps.Copy(newFields, o.contextFields)
	maps.Copy(newFields, fields)

	return &LogObserver{
		logger:        o.logger,
		contextFields: newFields,
	}
}

// keyValues flattens fields into sorted logr key/value pairs.
func keyValues(fields map[string]string) []any {
	kv := make([]any, 0, 2*len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		kv = append(kv, k, fields[k])
	}
	return kv
}

// Helper functions for common events

// LogOperationSubmitted logs an accepted mutating request.
func LogOperationSubmitted(observer Observer, kind, resource string, op *operation.Operation) {
	observer.Event(Event{
		Type:     EventOperationSubmitted,
		Kind:     kind,
		Resource: resource,
		Message:  fmt.Sprintf("%s operation submitted", kind),
		Fields:   operationFields(op),
	})
}

// LogOperationCompleted logs an operation that reached DONE without errors.
func LogOperationCompleted(observer Observer, kind, resource string, op *operation.Operation, duration time.Duration) {
	fields := operationFields(op)
	fields["duration"] = duration.Round(time.Millisecond).String()
	observer.Event(Event{
		Type:     EventOperationCompleted,
		Kind:     kind,
		Resource: resource,
		Message:  fmt.Sprintf("%s operation completed", kind),
		Fields:   fields,
	})
}

// LogOperationFailed logs a failed submit or wait.
func LogOperationFailed(observer Observer, kind, resource string, err error) {
	observer.Event(Event{
		Type:     EventOperationFailed,
		Kind:     kind,
		Resource: resource,
		Message:  fmt.Sprintf("%s operation failed", kind),
		Err:      err,
	})
}

// LogCompensationAttempted logs a rollback step about to be issued.
func LogCompensationAttempted(observer Observer, step, resource string, cause error) {
	var fields map[string]string
	if cause != nil {
		fields = map[string]string{"cause": cause.Error()}
	}
	observer.Event(Event{
		Type:     EventCompensationAttempted,
		Kind:     step,
		Resource: resource,
		Message:  fmt.Sprintf("rolling back: %s", step),
		Fields:   fields,
	})
}

// LogCompensationFailed logs a rollback step the provider rejected.
// The resource has to be removed by hand.
func LogCompensationFailed(observer Observer, step, resource string, err error) {
	observer.Event(Event{
		Type:     EventCompensationFailed,
		Kind:     step,
		Resource: resource,
		Message:  fmt.Sprintf("rollback failed, %s must be removed manually", resource),
		Err:      err,
	})
}

func operationFields(op *operation.Operation) map[string]string {
	fields := map[string]string{}
	if op == nil {
		return fields
	}
	fields["operation"] = op.Name
	fields["status"] = string(op.Status)
	return fields
}
