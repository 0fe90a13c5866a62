package apperrors

import (
	"errors"
	"fmt"
)

// Fault categories. Callers compare with errors.Is.
var (
	// ErrUnauthorized covers missing, bad or expired credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a requested id is absent from a collection.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers malformed input: id lists, dates, merge preconditions.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream is any other fault raised by the remote timetable service.
	ErrUpstream = errors.New("upstream rpc fault")
)

// ErrNotLoggedIn is returned by session operations outside the authenticated state.
var ErrNotLoggedIn = fmt.Errorf("%w: not logged in", ErrUnauthorized)

// Upstream fault codes with a special meaning.
const (
	CodeNotAuthenticated   = -8520
	CodeBadCredentials     = -8506
	CodeInvalidCredentials = -8504
)

// AuthError is an authentication fault translated from an upstream code.
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("unauthorized: %s (code %d)", e.Message, e.Code)
}

func (e *AuthError) Unwrap() error { return ErrUnauthorized }

// UpstreamError preserves the code and message of a remote fault.
type UpstreamError struct {
	Method  string
	Code    int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("upstream rpc fault %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("upstream rpc fault in %s %d: %s", e.Method, e.Code, e.Message)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NotFound builds an ErrNotFound with a specific message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Invalid builds an ErrValidation with a specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Translate maps an upstream fault code to the matching category.
func Translate(method string, code int, message string) error {
	switch code {
	case CodeNotAuthenticated:
		return &AuthError{Code: code, Message: "not authenticated"}
	case CodeBadCredentials:
		return &AuthError{Code: code, Message: "bad credentials"}
	case CodeInvalidCredentials:
		return &AuthError{Code: code, Message: "invalid credentials"}
	default:
		return &UpstreamError{Method: method, Code: code, Message: message}
	}
}
