package dynamodb

import (
	"testing"
	"time"

	"social-campaign-backend/internal/domain/persona"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/infrastructure/persistence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundary(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := &persona.Persona{
		Meta:     shared.Meta{ID: "p1", CreatedAt: created, UpdatedAt: created, Version: 1},
		Name:     "Ada",
		BrandID:  "b1",
		IsActive: true,
	}
	cfg := personaConfig{}
	keys, err := cfg.Keys("t1", p)
	require.NoError(t, err)

	t.Run("Should rename id and stamp storage attributes inbound", func(t *testing.T) {
		expires := created.Add(time.Hour)
		item, err := cfg.Boundary().ToItem("t1", p, keys, &expires)
		require.NoError(t, err)

		assert.NotContains(t, item, "id")
		assert.Equal(t, "p1", persistence.StringAttr(item, "personaId"))
		assert.Equal(t, "b1", persistence.StringAttr(item, "brandId"))
		assert.Equal(t, "t1#p1", persistence.StringAttr(item, persistence.AttrPK))
		assert.Equal(t, "t1#PERSONA", persistence.StringAttr(item, persistence.AttrGSI1PK))
		assert.Equal(t, "t1#BRAND#b1", persistence.StringAttr(item, persistence.AttrGSI2PK))
		assert.Equal(t, "t1", persistence.StringAttr(item, persistence.AttrTenantID))
		assert.Equal(t, TypePersona, persistence.StringAttr(item, persistence.AttrEntityType))
		assert.Contains(t, item, persistence.AttrExpiresAt)
	})

	t.Run("Should strip every reserved attribute outbound, idempotently", func(t *testing.T) {
		item, err := cfg.Boundary().ToItem("t1", p, keys, nil)
		require.NoError(t, err)

		once := cfg.Boundary().Strip(item)
		twice := cfg.Boundary().Strip(once)
		assert.Equal(t, once, twice)
		for _, name := range persistence.ReservedAttributes {
			assert.NotContains(t, once, name)
		}
		assert.NotContains(t, once, "personaId")
		assert.Equal(t, "p1", persistence.StringAttr(once, "id"))
		assert.Contains(t, item, persistence.AttrPK, "input must not be modified")
	})

	t.Run("Should round-trip the boundary object", func(t *testing.T) {
		item, err := cfg.Boundary().ToItem("t1", p, keys, nil)
		require.NoError(t, err)

		var out persona.Persona
		require.NoError(t, cfg.Boundary().FromItem("t1", item, &out))
		assert.Equal(t, *p, out)

		again, err := cfg.Boundary().ToItem("t1", &out, keys, nil)
		require.NoError(t, err)
		assert.Equal(t, item, again)
	})

	t.Run("Should refuse items of another tenant or type", func(t *testing.T) {
		item, err := cfg.Boundary().ToItem("t1", p, keys, nil)
		require.NoError(t, err)

		var out persona.Persona
		assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(cfg.Boundary().FromItem("t2", item, &out)))
		assert.Error(t, brandConfig{}.Boundary().FromItem("t1", item, &out))
	})
}
