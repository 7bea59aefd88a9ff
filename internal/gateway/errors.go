package gateway

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by this package matches one of these
// with errors.Is, in addition to its typed form.
var (
	ErrTransport          = errors.New("commerce backend unavailable")
	ErrQuery              = errors.New("commerce query failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountCreation    = errors.New("failed to create account")
	ErrSubscription       = errors.New("newsletter subscription failed")
	ErrInvalidInput       = errors.New("invalid input")
)

// TransportError is a network or HTTP level failure, or a GraphQL errors[] list.
// StatusCode is 0 when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Message    string
	Kind       error
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *TransportError) Unwrap() []error {
	errs := []error{ErrTransport}
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// BackendValidationError is a structured user error reported by the backend,
// such as a wrong password or a duplicate account. Error returns the backend
// message verbatim so it can be shown in the form as is.
type BackendValidationError struct {
	Op      string
	Code    string
	Field   []string
	Message string
	Kind    error
}

func (e *BackendValidationError) Error() string {
	if e.Message == "" && e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *BackendValidationError) Unwrap() error {
	return e.Kind
}

// LocalValidationError rejects input before any network call is made
type LocalValidationError struct {
	Field   string
	Message string
}

func (e *LocalValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *LocalValidationError) Unwrap() error {
	return ErrInvalidInput
}
