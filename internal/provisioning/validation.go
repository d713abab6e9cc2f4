package provisioning

import (
	"github.com/imamik/gkectl/internal/spec"
)

// field is a named parameter checked before any request is sent.
type field struct {
	name  string
	value string
}

// requireFields returns a ValidationError for the first empty field.
func requireFields(fields ...field) error {
	for _, f := range fields {
		if f.value == "" {
			return &spec.ValidationError{Field: f.name, Err: spec.ErrMissingField}
		}
	}
	return nil
}
