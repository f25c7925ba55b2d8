// Package errors defines the typed error surface shared by the repositories,
// the campaign status machine and the adapters that sit in front of them.
//
// Callers branch on Kind, never on message text:
//
//	if errors.IsVersionConflict(err) {
//		// re-read and retry
//	}
//
// Client errors (validation, not found, already exists, illegal transition,
// invalid cursor) are never retried automatically. Version conflicts are
// expected to be retried by the caller after re-reading. Unavailable marks
// transient infrastructure failures that survived the store's own retries.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an AppError.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindAlreadyExists   Kind = "ALREADY_EXISTS"
	KindVersionConflict Kind = "VERSION_CONFLICT"
	KindPartialNotFound Kind = "PARTIAL_NOT_FOUND"
	KindInvalidCursor   Kind = "INVALID_CURSOR"
	KindValidation      Kind = "VALIDATION"
	KindTransition      Kind = "TRANSITION"
	KindUnavailable     Kind = "UNAVAILABLE"
	KindInternal        Kind = "INTERNAL"
)

// AppError is the single error type returned across package boundaries.
type AppError struct {
	Kind     Kind
	Message  string
	Resource string            // entity type, e.g. "campaign"
	ID       string            // entity id when one applies
	Missing  []string          // ids absent from a batch lookup
	Fields   map[string]string // field -> reason for validation failures
	Cause    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " (missing: %s)", strings.Join(e.Missing, ", "))
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+e.Fields[name])
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(parts, "; "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ============================================================================
// CONSTRUCTORS
// ============================================================================

// NewNotFound reports that resource id does not exist for the calling tenant.
func NewNotFound(resource, id string) *AppError {
	return &AppError{
		Kind:     KindNotFound,
		Message:  fmt.Sprintf("%s '%s' not found", resource, id),
		Resource: resource,
		ID:       id,
	}
}

// NewAlreadyExists reports that a create hit an occupied key.
func NewAlreadyExists(resource, id string) *AppError {
	return &AppError{
		Kind:     KindAlreadyExists,
		Message:  fmt.Sprintf("%s '%s' already exists", resource, id),
		Resource: resource,
		ID:       id,
	}
}

// NewVersionConflict reports a stale-version precondition failure.
func NewVersionConflict(resource, id string, expected int64) *AppError {
	return &AppError{
		Kind:     KindVersionConflict,
		Message:  fmt.Sprintf("%s '%s' was modified concurrently (expected version %d)", resource, id, expected),
		Resource: resource,
		ID:       id,
	}
}

// NewPartialNotFound reports the ids a batch lookup could not resolve.
func NewPartialNotFound(resource string, missing []string) *AppError {
	return &AppError{
		Kind:     KindPartialNotFound,
		Message:  fmt.Sprintf("%d of the requested %s items were not found", len(missing), resource),
		Resource: resource,
		Missing:  append([]string(nil), missing...),
	}
}

// NewInvalidCursor reports a pagination token that cannot be trusted.
func NewInvalidCursor(reason string, cause error) *AppError {
	return &AppError{
		Kind:    KindInvalidCursor,
		Message: "invalid pagination cursor: " + reason,
		Cause:   cause,
	}
}

// NewValidation reports input rejected by schema or allow-list checks.
func NewValidation(message string, fields map[string]string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewTransition reports an illegal campaign status move.
func NewTransition(from, to, reason string) *AppError {
	msg := fmt.Sprintf("cannot transition from '%s' to '%s'", from, to)
	if reason != "" {
		msg += ": " + reason
	}
	return &AppError{
		Kind:     KindTransition,
		Message:  msg,
		Resource: "campaign",
	}
}

// NewUnavailable wraps a transient infrastructure failure that outlived retries.
func NewUnavailable(message string, cause error) *AppError {
	return &AppError{Kind: KindUnavailable, Message: message, Cause: cause}
}

// NewInternal wraps a non-retryable infrastructure failure.
func NewInternal(message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Cause: cause}
}

// Wrap adds context to err. An AppError keeps its kind and metadata; any
// other error becomes INTERNAL.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		wrapped := *appErr
		wrapped.Message = message + ": " + appErr.Message
		return &wrapped
	}
	return NewInternal(message, err)
}

// ============================================================================
// CLASSIFICATION
// ============================================================================

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func hasKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func IsNotFound(err error) bool        { return hasKind(err, KindNotFound) }
func IsAlreadyExists(err error) bool   { return hasKind(err, KindAlreadyExists) }
func IsVersionConflict(err error) bool { return hasKind(err, KindVersionConflict) }
func IsPartialNotFound(err error) bool { return hasKind(err, KindPartialNotFound) }
func IsInvalidCursor(err error) bool   { return hasKind(err, KindInvalidCursor) }
func IsValidation(err error) bool      { return hasKind(err, KindValidation) }
func IsTransition(err error) bool      { return hasKind(err, KindTransition) }
func IsUnavailable(err error) bool     { return hasKind(err, KindUnavailable) }

// MissingIDs returns the ids carried by a PARTIAL_NOT_FOUND error.
func MissingIDs(err error) []string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind == KindPartialNotFound {
		return append([]string(nil), appErr.Missing...)
	}
	return nil
}

// Retryable reports whether the same request may succeed if tried again.
// Client errors never will; conflicts and infrastructure failures may.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindVersionConflict, KindUnavailable, KindInternal:
		return true
	default:
		return false
	}
}

// HTTPStatus maps err to the status code an HTTP boundary should return.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindNotFound, KindPartialNotFound:
		return http.StatusNotFound
	case KindAlreadyExists, KindVersionConflict:
		return http.StatusConflict
	case KindInvalidCursor, KindValidation:
		return http.StatusBadRequest
	case KindTransition:
		return http.StatusUnprocessableEntity
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
