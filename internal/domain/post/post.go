// Package post models a single generated social post. Posts live in their
// campaign's partition and carry a status of their own that the campaign
// status is derived from.
package post

import (
	"time"

	"social-campaign-backend/internal/domain/shared"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusGenerating  Status = "generating"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
	StatusNeedsReview Status = "needs_review"
)

// Statuses lists every post status.
var Statuses = []Status{
	StatusPending, StatusGenerating, StatusCompleted,
	StatusFailed, StatusSkipped, StatusNeedsReview,
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether generation for the post has finished, one way or
// another.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSkipped, StatusNeedsReview:
		return true
	}
	return false
}

type Content struct {
	Text         string   `json:"text" dynamodbav:"text" validate:"max=5000"`
	Hashtags     []string `json:"hashtags,omitempty" dynamodbav:"hashtags,omitempty" validate:"max=30,dive,max=100"`
	MediaURLs    []string `json:"mediaUrls,omitempty" dynamodbav:"mediaUrls,omitempty" validate:"max=10,dive,url"`
	CallToAction string   `json:"callToAction,omitempty" dynamodbav:"callToAction,omitempty" validate:"max=280"`
}

// Post is the boundary representation of a social post.
type Post struct {
	shared.Meta
	CampaignID  string     `json:"campaignId" dynamodbav:"campaignId" validate:"required,keysafe"`
	PersonaID   string     `json:"personaId" dynamodbav:"personaId" validate:"required,keysafe"`
	Platform    string     `json:"platform" dynamodbav:"platform" validate:"required,oneof=twitter linkedin instagram facebook tiktok"`
	Content     Content    `json:"content" dynamodbav:"content"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty" dynamodbav:"scheduledAt,omitempty"`
	Status      Status     `json:"status" dynamodbav:"status" validate:"required,oneof=pending generating completed failed skipped needs_review"`
	Error       string     `json:"error,omitempty" dynamodbav:"error,omitempty" validate:"max=2000"`
}

// Patch lists the fields an update may change. Campaign, persona and platform
// are fixed at creation.
type Patch struct {
	Content     *Content   `json:"content,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Error       *string    `json:"error,omitempty"`
}

func (p Patch) Fields() []string {
	var fields []string
	if p.Content != nil {
		fields = append(fields, "content")
	}
	if p.ScheduledAt != nil {
		fields = append(fields, "scheduledAt")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Error != nil {
		fields = append(fields, "error")
	}
	return fields
}

func (p Patch) Apply(post *Post) error {
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.ScheduledAt != nil {
		at := *p.ScheduledAt
		post.ScheduledAt = &at
	}
	if p.Status != nil {
		post.Status = *p.Status
	}
	if p.Error != nil {
		post.Error = *p.Error
	}
	return nil
}
