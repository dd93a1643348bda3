package service

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindFault
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Machine-readable failure codes shared with existing clients.
const (
	CodeMissingKey        = "SCB1"
	CodeExpiredKey        = "SCB2"
	CodeInvalidKey        = "SCB3"
	CodeLoginValidation   = "SCB4"
	CodeMissingTrackerIDs = "SCB5"
	CodeOrgNotFound       = "SCB6"
	CodeRecordNotFound    = "SCB7"
	CodeMissingUserOrgIDs = "SCB8"
	CodeIMEIConflict      = "SCB9"
	CodeTrackerConflict   = "SCB10"
	CodeLoginNameConflict = "SCB11"
	CodeBadFilter         = "SCB12"
	CodeInsufficientRole  = "SCB13"
	CodeIDExhausted       = "SCB14"
	CodeEmailConflict     = "SCB67"
	CodeOrgNameConflict   = "SCB78"
)

// Error is a classified operation failure.
type Error struct {
	Kind     Kind
	Code     string
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Code != "" {
		b.WriteString(" ")
		b.WriteString(e.Code)
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid is a validation failure carrying field messages.
func Invalid(code string, msgs ...string) *Error {
	return &Error{Kind: KindValidation, Code: code, Messages: msgs}
}

// Unauthorized is a credential failure.
func Unauthorized(code string) *Error {
	return &Error{Kind: KindAuth, Code: code}
}

// Forbidden is a valid credential lacking the required role.
func Forbidden(code string) *Error {
	return &Error{Kind: KindForbidden, Code: code}
}

// NotFound is a missing or inactive referenced record.
func NotFound(code string) *Error {
	return &Error{Kind: KindNotFound, Code: code}
}

// Conflict is a uniqueness violation.
func Conflict(code string) *Error {
	return &Error{Kind: KindConflict, Code: code}
}

// Fault wraps an unexpected infrastructure error.
func Fault(op string, err error) *Error {
	return &Error{Kind: KindFault, Err: fmt.Errorf("%s: %w", op, err)}
}

// AsError extracts a *Error from err. Unclassified errors become faults.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindFault, Err: err}
}
