// Package shared holds the pieces every entity type has in common: the
// externally visible metadata block, identifier rules and the clock.
package shared

import (
	"strings"
	"time"

	apperrors "social-campaign-backend/internal/errors"

	"github.com/google/uuid"
)

// KeyDelimiter separates the segments of composite storage keys. Tenant and
// entity identifiers may not contain it.
const KeyDelimiter = "#"

// Meta is embedded by every entity. It is the only identity an entity exposes:
// one opaque id, timestamps and the concurrency version.
type Meta struct {
	ID        string    `json:"id" dynamodbav:"id"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
	Version   int64     `json:"version" dynamodbav:"version"`
}

// GetMeta gives generic code access to the embedded metadata.
func (m *Meta) GetMeta() *Meta { return m }

// Entity is implemented by pointers to every persisted entity type.
type Entity interface {
	GetMeta() *Meta
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks that value can be embedded in a storage key.
func ValidateID(field, value string) error {
	switch {
	case strings.TrimSpace(value) == "":
		return apperrors.NewValidation(field+" is required", map[string]string{field: "required"})
	case strings.Contains(value, KeyDelimiter):
		return apperrors.NewValidation(field+" contains a reserved character",
			map[string]string{field: "must not contain '" + KeyDelimiter + "'"})
	case len(value) > 128:
		return apperrors.NewValidation(field+" is too long", map[string]string{field: "max 128 characters"})
	}
	return nil
}

// Clock returns the current time. Repositories take one so tests can control
// timestamps.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Advance returns now, or just after previous when the clock has not moved
// past it, so updatedAt strictly increases across writes.
func Advance(clock Clock, previous time.Time) time.Time {
	now := clock()
	if !now.After(previous) {
		return previous.Add(time.Millisecond)
	}
	return now
}
