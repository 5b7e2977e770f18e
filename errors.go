package needlecli

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeInvalidRegistration
	ErrCodeServiceNotFound
	ErrCodeResolutionFailed
	ErrCodeDisposalFailed
	ErrCodeContainerReleased
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:             "UNKNOWN",
	ErrCodeInvalidRegistration: "INVALID_REGISTRATION",
	ErrCodeServiceNotFound:     "SERVICE_NOT_FOUND",
	ErrCodeResolutionFailed:    "RESOLUTION_FAILED",
	ErrCodeDisposalFailed:      "DISPOSAL_FAILED",
	ErrCodeContainerReleased:   "CONTAINER_RELEASED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

type Error struct {
	Code    ErrorCode
	Message string
	Service string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Service != "" {
		b.WriteString(fmt.Sprintf(" service=%q:", e.Service))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so errors.Is finds a code
// anywhere in the chain.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithService(service string) *Error {
	e.Service = service
	return e
}

// Errors returns the individual failures behind a DISPOSAL_FAILED error, or
// the cause itself for any other code.
func (e *Error) Errors() []error {
	return multierr.Errors(e.Cause)
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func errInvalidRegistration(service string, message string) *Error {
	return newError(ErrCodeInvalidRegistration, message, nil).WithService(service)
}

func errServiceNotFound(serviceType string) *Error {
	return newError(
		ErrCodeServiceNotFound,
		fmt.Sprintf("no binding registered for type %s", serviceType),
		nil,
	).WithService(serviceType)
}

func errResolutionFailed(serviceType string, cause error) *Error {
	return newError(
		ErrCodeResolutionFailed,
		fmt.Sprintf("failed to resolve %s", serviceType),
		cause,
	).WithService(serviceType)
}

func errDisposalFailed(cause error) *Error {
	return newError(ErrCodeDisposalFailed, "failed to dispose owned services", cause)
}

func errContainerReleased(serviceType string) *Error {
	return newError(
		ErrCodeContainerReleased,
		"resolver used after its container was released",
		nil,
	).WithService(serviceType)
}

func hasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

func IsInvalidRegistration(err error) bool {
	return hasCode(err, ErrCodeInvalidRegistration)
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeServiceNotFound)
}

func IsResolutionFailed(err error) bool {
	return hasCode(err, ErrCodeResolutionFailed)
}

func IsDisposalFailed(err error) bool {
	return hasCode(err, ErrCodeDisposalFailed)
}

func IsContainerReleased(err error) bool {
	return hasCode(err, ErrCodeContainerReleased)
}
