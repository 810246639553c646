// pkg/errs/errs.go
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindSignature     Kind = "signature"
	KindNotFound      Kind = "not_found"
	KindTokenExchange Kind = "token_exchange"
	KindTransport     Kind = "transport"
	KindInternal      Kind = "internal"
)

// AppError carries a kind alongside the message so callers can branch on
// failure class without string matching.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Validation reports a missing or malformed field.
func Validation(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

// Signature reports a rejected or unreachable remote signature check.
func Signature(msg string, cause error) *AppError {
	return &AppError{Kind: KindSignature, Message: msg, Cause: cause}
}

// NotFound reports a missing resource.
func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

// TokenExchange reports an OAuth code or refresh exchange rejected by the remote.
func TokenExchange(msg string, cause error) *AppError {
	return &AppError{Kind: KindTokenExchange, Message: msg, Cause: cause}
}

// Transport reports an underlying HTTP failure.
func Transport(msg string, cause error) *AppError {
	return &AppError{Kind: KindTransport, Message: msg, Cause: cause}
}

// Internal reports an unexpected failure.
func Internal(msg string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Cause: cause}
}

// Is reports whether err (or anything it wraps) is an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
