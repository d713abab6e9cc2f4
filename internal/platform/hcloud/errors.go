package hcloud

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/gkectl/internal/provider"
)

// ErrUnsupported is returned for compute records Hetzner Cloud has no equivalent for.
var ErrUnsupported = errors.New("not supported by the hcloud backend")

// isResourceLocked checks if an error indicates a resource is locked.
// Locked resources typically occur while another action runs on them.
// These errors are retryable.
func isResourceLocked(err error) bool {
	return isHCloudErrorCode(err,
		hcloud.ErrorCodeLocked,
		hcloud.ErrorCodeConflict,
		hcloud.ErrorCodeResourceLocked,
		hcloud.ErrorCodeResourceUnavailable,
	)
}

// isHCloudErrorCode checks if the error is an hcloud API error with one of the given codes.
func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// notFound reports a lookup by name that came back empty. hcloud-go returns
// a nil resource rather than an error in that case.
func notFound(op, kind, name string) error {
	return &provider.RequestError{
		Op:       op,
		Resource: name,
		Code:     http.StatusNotFound,
		Message:  fmt.Sprintf("%s %q not found", kind, name),
		Err:      hcloud.Error{Code: hcloud.ErrorCodeNotFound, Message: kind + " not found"},
	}
}

// unsupported reports a request the backend cannot express.
func unsupported(op, resource, what string) error {
	return &provider.RequestError{
		Op:       op,
		Resource: resource,
		Code:     http.StatusBadRequest,
		Message:  what,
		Err:      fmt.Errorf("%s: %w", what, ErrUnsupported),
	}
}
