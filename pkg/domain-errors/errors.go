// Package domainerrors provides coded domain errors shared across services.
//
// Services and handlers construct errors with New and a Code; the transport
// layer translates codes to HTTP statuses via ToHTTPStatus. Store layers
// should prefer pkg/platform/sentinel errors and let services translate.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies the class of a domain error. The string value is what
// callers see in the JSON error envelope.
type Code string

const (
	// Input and request errors.
	CodeValidation   Code = "validation_error"
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"

	// Authn/authz.
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// Resource state.
	CodeNotFound Code = "not_found"
	CodeConflict Code = "conflict"

	// Pipeline failures.
	CodeProcessing Code = "processing_error"
	CodeStorage    Code = "storage_error"
	CodeTimeout    Code = "timeout"

	CodeInternal Code = "internal_error"
)

// Error is a domain error with a machine-readable code and a human-readable
// message. The message may be surfaced to API callers for non-internal codes.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.cause }

// New constructs a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs a domain error that preserves the underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err is (or wraps) a domain error with the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors so unknown failures never leak details.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code to an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeProcessing:
		return http.StatusUnprocessableEntity
	case CodeStorage:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
