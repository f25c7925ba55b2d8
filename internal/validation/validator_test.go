package validation

import (
	"testing"
	"time"

	"social-campaign-backend/internal/domain/brand"
	"social-campaign-backend/internal/domain/campaign"
	apperrors "social-campaign-backend/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCampaign() *campaign.Campaign {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return &campaign.Campaign{
		Name:       "Launch",
		PersonaIDs: []string{"p1"},
		Platforms:  []string{"linkedin"},
		Schedule: campaign.Schedule{
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 14),
			PostsPerDay: 2,
			Timezone:    "Europe/Berlin",
		},
		Status: campaign.StatusPlanning,
	}
}

func TestValidatorStruct(t *testing.T) {
	v := New()

	t.Run("Should accept a valid campaign", func(t *testing.T) {
		assert.NoError(t, v.Struct(validCampaign()))
	})

	t.Run("Should report fields by JSON path", func(t *testing.T) {
		c := validCampaign()
		c.Name = ""
		c.Schedule.EndDate = c.Schedule.StartDate.Add(-time.Hour)

		err := v.Struct(c)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "required", appErr.Fields["name"])
		assert.Contains(t, appErr.Fields, "schedule.endDate")
	})

	t.Run("Should reject key delimiters in referenced ids", func(t *testing.T) {
		c := validCampaign()
		c.PersonaIDs = []string{"p1#x"}
		err := v.Struct(c)
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "must not contain '#'", appErr.Fields["personaIds[0]"])
	})

	t.Run("Should reject unknown enum values", func(t *testing.T) {
		b := &brand.Brand{Name: "Acme", Status: "deleted"}
		err := v.Struct(b)
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields["status"], "must be one of")
	})

	t.Run("Should reject malformed brand colors", func(t *testing.T) {
		b := &brand.Brand{Name: "Acme", Status: brand.StatusActive}
		b.Visual.PrimaryColors = []string{"#FF5733", "red"}
		err := v.Struct(b)
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "visual.primaryColors[1]")
	})
}
