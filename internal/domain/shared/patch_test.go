package shared

import (
	"testing"

	apperrors "social-campaign-backend/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFields(t *testing.T) {
	allowed := []string{"name", "objective"}

	t.Run("Should accept fields on the allow-list", func(t *testing.T) {
		assert.NoError(t, CheckFields([]string{"name"}, allowed))
		assert.NoError(t, CheckFields(nil, allowed))
	})

	t.Run("Should name every field outside the allow-list", func(t *testing.T) {
		err := CheckFields([]string{"name", "status", "tenantId"}, allowed)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, map[string]string{"status": "not updatable", "tenantId": "not updatable"}, appErr.Fields)
	})
}
