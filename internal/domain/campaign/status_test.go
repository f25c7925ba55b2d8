package campaign

import (
	"encoding/json"
	"testing"
	"time"

	"social-campaign-backend/internal/domain/post"
	apperrors "social-campaign-backend/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPlan(status Status) *Campaign {
	plan := "three posts a day around the launch"
	return &Campaign{Status: status, PlanSummary: &plan}
}

func TestValidateTransition(t *testing.T) {
	legal := map[[2]Status]bool{
		{StatusPlanning, StatusGenerating}:       true,
		{StatusPlanning, StatusCancelled}:        true,
		{StatusGenerating, StatusCompleted}:      true,
		{StatusGenerating, StatusAwaitingReview}: true,
		{StatusGenerating, StatusFailed}:         true,
		{StatusGenerating, StatusCancelled}:      true,
		{StatusAwaitingReview, StatusCompleted}:  true,
		{StatusAwaitingReview, StatusCancelled}:  true,
	}

	for _, from := range Statuses {
		for _, to := range Statuses {
			from, to := from, to
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				noop, err := ValidateTransition(withPlan(from), to)
				switch {
				case from == to:
					assert.NoError(t, err)
					assert.True(t, noop)
				case legal[[2]Status{from, to}]:
					assert.NoError(t, err)
					assert.False(t, noop)
				default:
					require.Error(t, err)
					assert.True(t, apperrors.IsTransition(err))
				}
			})
		}
	}

	t.Run("Should require a plan summary before generating", func(t *testing.T) {
		_, err := ValidateTransition(&Campaign{Status: StatusPlanning}, StatusGenerating)
		assert.True(t, apperrors.IsTransition(err))

		empty := ""
		_, err = ValidateTransition(&Campaign{Status: StatusPlanning, PlanSummary: &empty}, StatusGenerating)
		assert.True(t, apperrors.IsTransition(err))
	})

	t.Run("Should reject unknown statuses as validation errors", func(t *testing.T) {
		_, err := ValidateTransition(withPlan(StatusPlanning), Status("paused"))
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range Statuses {
		want := s == StatusCompleted || s == StatusFailed || s == StatusCancelled
		assert.Equal(t, want, s.IsTerminal(), string(s))
	}
}

func TestDeriveFromPosts(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		posts   []post.Status
		want    Status
	}{
		{"any needs_review goes to awaiting_review", StatusGenerating,
			[]post.Status{post.StatusCompleted, post.StatusNeedsReview, post.StatusCompleted}, StatusAwaitingReview},
		{"all completed goes to completed", StatusGenerating,
			[]post.Status{post.StatusCompleted, post.StatusCompleted}, StatusCompleted},
		{"unfinished post keeps generating", StatusGenerating,
			[]post.Status{post.StatusCompleted, post.StatusGenerating}, StatusGenerating},
		{"pending post keeps generating", StatusGenerating,
			[]post.Status{post.StatusPending}, StatusGenerating},
		{"failed and skipped count as terminal", StatusGenerating,
			[]post.Status{post.StatusFailed, post.StatusSkipped, post.StatusCompleted}, StatusCompleted},
		{"no posts keeps generating", StatusGenerating, nil, StatusGenerating},
		{"only generating campaigns derive", StatusPlanning,
			[]post.Status{post.StatusCompleted}, StatusPlanning},
	}

	for _, tt := range tests {
		t.Run("Should derive: "+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveFromPosts(tt.current, tt.posts))
		})
	}
}

func TestCheckPatch(t *testing.T) {
	name := "Spring launch"
	schedule := Schedule{PostsPerDay: 2, Timezone: "UTC"}

	t.Run("Should accept participant and schedule changes while planning", func(t *testing.T) {
		assert.NoError(t, CheckPatch(StatusPlanning, Patch{Name: &name, Schedule: &schedule}))
	})

	t.Run("Should refuse schedule changes once generating", func(t *testing.T) {
		err := CheckPatch(StatusGenerating, Patch{Name: &name, Schedule: &schedule})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "schedule")
		assert.NotContains(t, appErr.Fields, "name")
	})

	t.Run("Should refuse every field in terminal statuses", func(t *testing.T) {
		for _, s := range []Status{StatusCompleted, StatusFailed, StatusCancelled} {
			assert.Error(t, CheckPatch(s, Patch{Name: &name}), string(s))
		}
	})

	t.Run("Should accept an empty patch in any status", func(t *testing.T) {
		for _, s := range Statuses {
			assert.NoError(t, CheckPatch(s, Patch{}))
		}
	})

	t.Run("Should not merge anything when a field is refused", func(t *testing.T) {
		c := withPlan(StatusGenerating)
		c.Name = "before"
		err := Patch{Name: &name, Schedule: &schedule}.Apply(c)
		assert.Error(t, err)
		assert.Equal(t, "before", c.Name)
	})

	t.Run("Should expose a copy of the permission table", func(t *testing.T) {
		fields := MutableFields(StatusGenerating)
		fields[0] = "status"
		assert.Equal(t, []string{"name", "objective"}, MutableFields(StatusGenerating))
		assert.Empty(t, MutableFields(StatusCompleted))
	})
}

func TestStatusChangedPayload(t *testing.T) {
	t.Run("Should always carry the reason", func(t *testing.T) {
		data, err := json.Marshal(StatusChanged{
			CampaignID: "c1",
			TenantID:   "t1",
			FromStatus: StatusPlanning,
			ToStatus:   StatusCancelled,
			Timestamp:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Contains(t, fields, "reason")
		assert.Equal(t, "", fields["reason"])
		assert.NotContains(t, fields, "error")
	})
}
