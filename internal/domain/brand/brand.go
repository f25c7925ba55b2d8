// Package brand models a tenant's brand: voice, visual identity and content
// policy used when generating campaign content.
package brand

import (
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
)

// Status is the brand lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	// StatusArchived is the soft-deleted state. Archived brands are hidden
	// from every read and expire from the table.
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	}
	return false
}

type Voice struct {
	Tone       string   `json:"tone,omitempty" dynamodbav:"tone,omitempty" validate:"max=200"`
	Style      string   `json:"style,omitempty" dynamodbav:"style,omitempty" validate:"max=200"`
	Vocabulary []string `json:"vocabulary,omitempty" dynamodbav:"vocabulary,omitempty" validate:"max=100,dive,max=80"`
	AvoidWords []string `json:"avoidWords,omitempty" dynamodbav:"avoidWords,omitempty" validate:"max=100,dive,max=80"`
}

type Visual struct {
	PrimaryColors []string `json:"primaryColors,omitempty" dynamodbav:"primaryColors,omitempty" validate:"max=12,dive,hexcolor"`
	Fonts         []string `json:"fonts,omitempty" dynamodbav:"fonts,omitempty" validate:"max=8,dive,max=80"`
	LogoAssetID   string   `json:"logoAssetId,omitempty" dynamodbav:"logoAssetId,omitempty" validate:"omitempty,keysafe"`
}

type ContentPolicy struct {
	Guidelines       []string `json:"guidelines,omitempty" dynamodbav:"guidelines,omitempty" validate:"max=50,dive,max=500"`
	ProhibitedTopics []string `json:"prohibitedTopics,omitempty" dynamodbav:"prohibitedTopics,omitempty" validate:"max=50,dive,max=120"`
	RequireReview    bool     `json:"requireReview" dynamodbav:"requireReview"`
}

// Brand is the boundary representation of a brand.
type Brand struct {
	shared.Meta
	Name          string        `json:"name" dynamodbav:"name" validate:"required,max=120"`
	Description   string        `json:"description,omitempty" dynamodbav:"description,omitempty" validate:"max=2000"`
	Industry      string        `json:"industry,omitempty" dynamodbav:"industry,omitempty" validate:"omitempty,max=80,keysafe"`
	Voice         Voice         `json:"voice" dynamodbav:"voice"`
	Visual        Visual        `json:"visual" dynamodbav:"visual"`
	ContentPolicy ContentPolicy `json:"contentPolicy" dynamodbav:"contentPolicy"`
	Status        Status        `json:"status" dynamodbav:"status" validate:"required,oneof=active inactive archived"`
}

// Patch lists the fields an update may change. Nil means "leave as is".
// Archiving goes through soft delete, never through a patch.
type Patch struct {
	Name          *string        `json:"name,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Industry      *string        `json:"industry,omitempty"`
	Voice         *Voice         `json:"voice,omitempty"`
	Visual        *Visual        `json:"visual,omitempty"`
	ContentPolicy *ContentPolicy `json:"contentPolicy,omitempty"`
	Status        *Status        `json:"status,omitempty"`
}

// Fields returns the names of the fields the patch sets.
func (p Patch) Fields() []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Industry != nil {
		fields = append(fields, "industry")
	}
	if p.Voice != nil {
		fields = append(fields, "voice")
	}
	if p.Visual != nil {
		fields = append(fields, "visual")
	}
	if p.ContentPolicy != nil {
		fields = append(fields, "contentPolicy")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}

// Apply merges the set fields into b. The status field only moves between
// active and inactive.
func (p Patch) Apply(b *Brand) error {
	if p.Status != nil && *p.Status == StatusArchived {
		return apperrors.NewValidation("brands are archived by deleting them",
			map[string]string{"status": "must be active or inactive"})
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Industry != nil {
		b.Industry = *p.Industry
	}
	if p.Voice != nil {
		b.Voice = *p.Voice
	}
	if p.Visual != nil {
		b.Visual = *p.Visual
	}
	if p.ContentPolicy != nil {
		b.ContentPolicy = *p.ContentPolicy
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	return nil
}
