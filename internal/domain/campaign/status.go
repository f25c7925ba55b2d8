package campaign

import (
	"time"

	"social-campaign-backend/internal/domain/post"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
)

type Status string

const (
	StatusPlanning       Status = "planning"
	StatusGenerating     Status = "generating"
	StatusAwaitingReview Status = "awaiting_review"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusCancelled      Status = "cancelled"
)

// Statuses lists every campaign status.
var Statuses = []Status{
	StatusPlanning, StatusGenerating, StatusAwaitingReview,
	StatusCompleted, StatusFailed, StatusCancelled,
}

// ReasonPostsAggregated is the reason recorded when a status was derived from
// the campaign's posts.
const ReasonPostsAggregated = "posts-aggregated"

// EventStatusChanged is the detail type of the transition notification.
const EventStatusChanged = "CampaignStatusChanged"

var transitions = map[Status][]Status{
	StatusPlanning:       {StatusGenerating, StatusCancelled},
	StatusGenerating:     {StatusCompleted, StatusAwaitingReview, StatusFailed, StatusCancelled},
	StatusAwaitingReview: {StatusCompleted, StatusCancelled},
}

var mutableFields = map[Status][]string{
	StatusPlanning:       {"name", "objective", "brandId", "personaIds", "platforms", "schedule", "planSummary"},
	StatusGenerating:     {"name", "objective"},
	StatusAwaitingReview: {"name", "objective"},
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether moving from one status to another is in the
// transition table. Self-transitions are not; callers treat them as no-ops.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks a requested move for c. A nil error with noop set
// means the campaign is already in the requested status.
func ValidateTransition(c *Campaign, to Status) (noop bool, err error) {
	if !to.Valid() {
		return false, apperrors.NewValidation("unknown campaign status", map[string]string{"status": string(to)})
	}
	if c.Status == to {
		return true, nil
	}
	if !CanTransition(c.Status, to) {
		return false, apperrors.NewTransition(string(c.Status), string(to), "not allowed by the campaign lifecycle")
	}
	if to == StatusGenerating && !c.HasPlan() {
		return false, apperrors.NewTransition(string(c.Status), string(to), "campaign has no plan summary")
	}
	return false, nil
}

// DeriveFromPosts computes the status a generating campaign should move to
// given the statuses of its posts. Campaigns in any other status, campaigns
// with no posts and campaigns with unfinished posts keep their status.
func DeriveFromPosts(current Status, posts []post.Status) Status {
	if current != StatusGenerating || len(posts) == 0 {
		return current
	}
	review := false
	for _, s := range posts {
		if !s.Terminal() {
			return current
		}
		if s == post.StatusNeedsReview {
			review = true
		}
	}
	if review {
		return StatusAwaitingReview
	}
	return StatusCompleted
}

// MutableFields returns the patch fields accepted while in status s.
func MutableFields(s Status) []string {
	return append([]string(nil), mutableFields[s]...)
}

// CheckPatch rejects a patch touching any field the status does not allow.
func CheckPatch(s Status, p Patch) error {
	set := p.Fields()
	if len(set) == 0 {
		return nil
	}
	if s.IsTerminal() {
		return apperrors.NewValidation("campaign is "+string(s)+" and can no longer be changed",
			map[string]string{"status": string(s)})
	}
	return shared.CheckFields(set, mutableFields[s])
}

// StatusChanged is published after a transition has been stored.
type StatusChanged struct {
	CampaignID string    `json:"campaignId"`
	TenantID   string    `json:"tenantId"`
	FromStatus Status    `json:"fromStatus"`
	ToStatus   Status    `json:"toStatus"`
	Reason     string    `json:"reason"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
