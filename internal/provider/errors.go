package provider

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"google.golang.org/api/googleapi"
)

// RequestError is returned when a provider rejects a submit, get or list call.
type RequestError struct {
	Op       string // Provider call, e.g. "clusters.create"
	Resource string // Resource path or name
	Code     int    // HTTP status code, 0 if unknown
	Message  string // Provider message
	Raw      any    // Provider error payload
	Err      error
}

func (e *RequestError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Op, e.Resource, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Resource, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// WrapRequestError classifies err as a RequestError. Nil stays nil.
func WrapRequestError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	re := &RequestError{Op: op, Resource: resource, Message: err.Error(), Err: err}

	var gerr *googleapi.Error
	var herr hcloud.Error
	switch {
	case errors.As(err, &gerr):
		re.Code = gerr.Code
		re.Message = gerr.Message
		if re.Message == "" {
			re.Message = http.StatusText(gerr.Code)
		}
		re.Raw = gerr.Body
	case errors.As(err, &herr):
		re.Code = hcloudStatus(herr.Code)
		re.Message = herr.Message
		re.Raw = herr.Details
	}
	return re
}

// IsNotFound reports whether err is a provider 404.
func IsNotFound(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code == http.StatusNotFound
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return hcloud.IsError(err, hcloud.ErrorCodeNotFound)
}

// hcloudStatus maps Hetzner Cloud error codes to the HTTP status they are sent with.
func hcloudStatus(code hcloud.ErrorCode) int {
	switch code {
	case hcloud.ErrorCodeNotFound:
		return http.StatusNotFound
	case hcloud.ErrorCodeInvalidInput, hcloud.ErrorCodeInvalidServerType:
		return http.StatusBadRequest
	case hcloud.ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case hcloud.ErrorCodeForbidden:
		return http.StatusForbidden
	case hcloud.ErrorCodeConflict, hcloud.ErrorCodeUniquenessError, hcloud.ErrorCodeLocked:
		return http.StatusConflict
	case hcloud.ErrorCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return 0
	}
}
