package spec

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ValidationError.
var (
	ErrMissingField   = errors.New("missing required field")
	ErrMissingCluster = errors.New("missing cluster")
	ErrFileNotFound   = errors.New("file not found")
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrInvalidValue   = errors.New("invalid value")
)

// ValidationError reports a parameter that failed local validation.
// It is always raised before any request reaches the provider.
type ValidationError struct {
	Field   string // Parameter that failed validation
	Message string // Human-readable detail
	Err     error  // One of the sentinel errors above
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &ValidationError{Field: field, Err: ErrMissingField}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Err: ErrInvalidValue}
}

// MissingCluster reports a node pool operation without a parent cluster.
func MissingCluster() error {
	return &ValidationError{Field: "cluster", Message: "a cluster is required for node pool operations", Err: ErrMissingCluster}
}
