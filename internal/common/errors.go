package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind is the closed set of failure categories the HTTP layer knows how
// to answer. Anything that is not an *Error is treated as internal.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindMalformedID
	KindAuthentication
	KindAuthorization
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMalformedID:
		return "malformed_id"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    ErrorKind
	Message string
	// Fields holds per-field messages for validation failures.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewValidationError builds a validation error whose message lists the
// failing fields in a stable order.
func NewValidationError(fields map[string]string) *Error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}

	return &Error{
		Kind:    KindValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}

// MalformedIDError reports an identifier the store cannot parse.
func MalformedIDError(id string, err error) *Error {
	return &Error{Kind: KindMalformedID, Message: "malformatted id", Err: fmt.Errorf("id %q: %w", id, err)}
}

// KindOf reports the kind of err, or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
