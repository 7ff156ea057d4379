package fulfillment

import (
	"errors"
	"fmt"

	"github.com/tournevent/shipping/pkg/cache"
)

// Error codes carried by *Error.
const (
	CodeSiteNotFound         = "SITE_NOT_FOUND"
	CodeUnsupportedEmbedType = "UNSUPPORTED_EMBED_TYPE"
	CodeValidation           = "VALIDATION_FAILURE"
	CodeBackend              = "BACKEND_FAILURE"
	CodeHandlerFailure       = "HANDLER_FAILURE"
)

// Error represents a failure tied to a fulfillment type.
type Error struct {
	FulfillmentType string
	Code            string
	Message         string
	Retryable       bool
	Cause           error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.FulfillmentType, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.FulfillmentType, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error.
func NewError(fulfillmentType, code, message string) *Error {
	return &Error{
		FulfillmentType: fulfillmentType,
		Code:            code,
		Message:         message,
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

var (
	// ErrSiteNotFound indicates the site name is unknown.
	ErrSiteNotFound = errors.New("site not found")

	// ErrUnsupportedEmbedType indicates the caller asked for a fulfillment
	// type the site does not support.
	ErrUnsupportedEmbedType = errors.New("unsupported embed type")

	// ErrValidation indicates the request failed handler validation
	// (address completeness, geocoding, store or pickup point resolution).
	ErrValidation = errors.New("validation failed")

	// ErrBackend indicates an authoritative store or handler backend failed.
	ErrBackend = errors.New("backend failure")

	// ErrCacheUnavailable indicates the key-value cache could not be reached.
	// Cache failures are absorbed by the resolvers and never fail a request.
	ErrCacheUnavailable = cache.ErrUnavailable

	// ErrNoShippingMethods indicates the site has no shipping-method
	// catalog for the fulfillment type.
	ErrNoShippingMethods = errors.New("no shipping methods")

	// ErrHandlerNotFound indicates no handler is registered for a variant.
	ErrHandlerNotFound = errors.New("handler not found")
)

// IsClientError reports whether err is caused by the caller's input rather
// than by a failing dependency.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSiteNotFound) ||
		errors.Is(err, ErrUnsupportedEmbedType) ||
		errors.Is(err, ErrValidation)
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var fErr *Error
	if errors.As(err, &fErr) && fErr.Retryable {
		return true
	}
	return errors.Is(err, ErrBackend) && !IsClientError(err)
}
