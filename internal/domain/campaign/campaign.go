// Package campaign models a content campaign and the lifecycle that governs
// it. The transition and permission tables in status.go are pure functions of
// status; persisting a transition is the job of the status service.
package campaign

import (
	"time"

	"social-campaign-backend/internal/domain/shared"
)

type Schedule struct {
	StartDate   time.Time `json:"startDate" dynamodbav:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" dynamodbav:"endDate" validate:"required,gtfield=StartDate"`
	PostsPerDay int       `json:"postsPerDay" dynamodbav:"postsPerDay" validate:"gte=1,lte=24"`
	Timezone    string    `json:"timezone" dynamodbav:"timezone" validate:"required,timezone"`
}

// Campaign is the boundary representation of a campaign.
type Campaign struct {
	shared.Meta
	Name        string   `json:"name" dynamodbav:"name" validate:"required,max=120"`
	Objective   string   `json:"objective,omitempty" dynamodbav:"objective,omitempty" validate:"max=2000"`
	BrandID     string   `json:"brandId,omitempty" dynamodbav:"brandId,omitempty" validate:"omitempty,keysafe"`
	PersonaIDs  []string `json:"personaIds" dynamodbav:"personaIds" validate:"required,min=1,max=10,unique,dive,keysafe"`
	Platforms   []string `json:"platforms" dynamodbav:"platforms" validate:"required,min=1,unique,dive,oneof=twitter linkedin instagram facebook tiktok"`
	Schedule    Schedule `json:"schedule" dynamodbav:"schedule"`
	PlanSummary *string  `json:"planSummary,omitempty" dynamodbav:"planSummary,omitempty" validate:"omitempty,max=10000"`
	Status      Status   `json:"status" dynamodbav:"status" validate:"required"`
	// PostCount is refreshed by reconciliation, never through a patch.
	PostCount int    `json:"postCount" dynamodbav:"postCount" validate:"gte=0"`
	LastError string `json:"lastError,omitempty" dynamodbav:"lastError,omitempty"`
	// ArchivedAt marks a soft-deleted campaign.
	ArchivedAt *time.Time `json:"archivedAt,omitempty" dynamodbav:"archivedAt,omitempty"`
}

// HasPlan reports whether the campaign carries a non-blank plan summary.
func (c *Campaign) HasPlan() bool {
	return c.PlanSummary != nil && *c.PlanSummary != ""
}

// Patch lists the fields an update may change. Which of them are accepted
// depends on the campaign's status, see MutableFields.
type Patch struct {
	Name        *string   `json:"name,omitempty"`
	Objective   *string   `json:"objective,omitempty"`
	BrandID     *string   `json:"brandId,omitempty"`
	PersonaIDs  *[]string `json:"personaIds,omitempty"`
	Platforms   *[]string `json:"platforms,omitempty"`
	Schedule    *Schedule `json:"schedule,omitempty"`
	PlanSummary *string   `json:"planSummary,omitempty"`
}

// Fields returns the names of the fields the patch sets.
func (p Patch) Fields() []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Objective != nil {
		fields = append(fields, "objective")
	}
	if p.BrandID != nil {
		fields = append(fields, "brandId")
	}
	if p.PersonaIDs != nil {
		fields = append(fields, "personaIds")
	}
	if p.Platforms != nil {
		fields = append(fields, "platforms")
	}
	if p.Schedule != nil {
		fields = append(fields, "schedule")
	}
	if p.PlanSummary != nil {
		fields = append(fields, "planSummary")
	}
	return fields
}

// Apply checks the patch against the permission table for the campaign's
// current status and merges it. Nothing is merged when any field is refused.
func (p Patch) Apply(c *Campaign) error {
	if err := CheckPatch(c.Status, p); err != nil {
		return err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Objective != nil {
		c.Objective = *p.Objective
	}
	if p.BrandID != nil {
		c.BrandID = *p.BrandID
	}
	if p.PersonaIDs != nil {
		c.PersonaIDs = append([]string(nil), (*p.PersonaIDs)...)
	}
	if p.Platforms != nil {
		c.Platforms = append([]string(nil), (*p.Platforms)...)
	}
	if p.Schedule != nil {
		c.Schedule = *p.Schedule
	}
	if p.PlanSummary != nil {
		summary := *p.PlanSummary
		c.PlanSummary = &summary
	}
	return nil
}
