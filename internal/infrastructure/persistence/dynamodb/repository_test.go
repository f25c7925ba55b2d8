package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"social-campaign-backend/internal/domain/asset"
	"social-campaign-backend/internal/domain/brand"
	"social-campaign-backend/internal/domain/campaign"
	"social-campaign-backend/internal/domain/persona"
	"social-campaign-backend/internal/domain/post"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/repository"
	"social-campaign-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
// FIXTURES
// ============================================================================

func steppingClock() shared.Clock {
	var mu sync.Mutex
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

type fixture struct {
	store     *persistence.MemoryStore
	brands    *BrandRepository
	personas  *PersonaRepository
	campaigns *CampaignRepository
	posts     *PostRepository
	assets    *AssetRepository
}

func newFixture() *fixture {
	store := persistence.NewMemoryStore()
	opts := Options{
		Codec:              repository.NewCursorCodec([]byte("test-secret")),
		Validator:          validation.New(),
		Clock:              steppingClock(),
		ArchiveTTL:         24 * time.Hour,
		MaxConflictRetries: 5,
		Logger:             zap.NewNop(),
	}
	return &fixture{
		store:     store,
		brands:    NewBrandRepository(store, opts),
		personas:  NewPersonaRepository(store, opts),
		campaigns: NewCampaignRepository(store, opts),
		posts:     NewPostRepository(store, opts),
		assets:    NewAssetRepository(store, opts),
	}
}

func newCampaign(name string) *campaign.Campaign {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return &campaign.Campaign{
		Name:       name,
		PersonaIDs: []string{"p1"},
		Platforms:  []string{"linkedin"},
		Schedule: campaign.Schedule{
			StartDate:   start,
			EndDate:     start.AddDate(0, 1, 0),
			PostsPerDay: 1,
			Timezone:    "UTC",
		},
	}
}

func strPtr(s string) *string { return &s }

// assertBoundary checks that v exposes exactly the boundary shape: an id and
// no storage or tenant attributes.
func assertBoundary(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.NotEmpty(t, fields["id"])
	assert.NotContains(t, fields, "tenantId")
	for _, name := range persistence.ReservedAttributes {
		assert.NotContains(t, fields, name)
	}
}

// ============================================================================
// BOUNDARY OBJECTS
// ============================================================================

func TestRepositoriesExposeBoundaryObjects(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	b, err := f.brands.Create(ctx, "t1", &brand.Brand{Name: "Acme", Industry: "retail"})
	require.NoError(t, err)
	assertBoundary(t, b)
	assert.Equal(t, brand.StatusActive, b.Status)
	assert.Equal(t, int64(1), b.Version)

	p, err := f.personas.Create(ctx, "t1", &persona.Persona{Name: "Ada", BrandID: b.ID})
	require.NoError(t, err)
	assertBoundary(t, p)
	assert.True(t, p.IsActive)

	c, err := f.campaigns.Create(ctx, "t1", newCampaign("Launch"))
	require.NoError(t, err)
	assertBoundary(t, c)
	assert.Equal(t, campaign.StatusPlanning, c.Status)

	x, err := f.posts.Create(ctx, "t1", &post.Post{CampaignID: c.ID, PersonaID: p.ID, Platform: "linkedin"})
	require.NoError(t, err)
	assertBoundary(t, x)
	assert.Equal(t, post.StatusPending, x.Status)

	a, err := f.assets.Create(ctx, "t1", &asset.Asset{BrandID: b.ID, FileName: "logo.png", ContentType: "image/png", ObjectKey: "k"})
	require.NoError(t, err)
	assertBoundary(t, a)
	assert.Equal(t, asset.CategoryImage, a.Category)

	t.Run("Should read back what was written", func(t *testing.T) {
		got, err := f.campaigns.Get(ctx, "t1", c.ID)
		require.NoError(t, err)
		assert.Equal(t, c, got)

		gotPost, err := f.posts.Get(ctx, "t1", c.ID, x.ID)
		require.NoError(t, err)
		assert.Equal(t, x, gotPost)
	})

	t.Run("Should keep the raw record keyed by the entity id attribute", func(t *testing.T) {
		raw := f.store.Raw(MetadataKey("t1", c.ID))
		require.NotNil(t, raw)
		assert.Equal(t, c.ID, persistence.StringAttr(raw, "campaignId"))
		assert.NotContains(t, raw, "id")
		assert.Equal(t, TypeCampaign, persistence.StringAttr(raw, persistence.AttrEntityType))
	})

	t.Run("Should keep tenants apart", func(t *testing.T) {
		_, err := f.brands.Get(ctx, "t2", b.ID)
		assert.True(t, apperrors.IsNotFound(err))

		page, err := f.brands.List(ctx, "t2", repository.BrandQuery{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("Should refuse a second create on the same id", func(t *testing.T) {
		dup := newCampaign("Dup")
		dup.ID = c.ID
		_, err := f.campaigns.Create(ctx, "t1", dup)
		assert.True(t, apperrors.IsAlreadyExists(err))
	})

	t.Run("Should validate before writing", func(t *testing.T) {
		before := f.store.Len()
		_, err := f.brands.Create(ctx, "t1", &brand.Brand{})
		assert.True(t, apperrors.IsValidation(err))
		_, err = f.brands.Create(ctx, "t#1", &brand.Brand{Name: "x"})
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, before, f.store.Len())
	})
}

// ============================================================================
// UPDATES AND CONCURRENCY
// ============================================================================

func TestUpdateSemantics(t *testing.T) {
	ctx := context.Background()

	t.Run("Should merge only supplied fields and bump version and updatedAt", func(t *testing.T) {
		f := newFixture()
		b, err := f.brands.Create(ctx, "t1", &brand.Brand{Name: "Acme", Description: "shoes"})
		require.NoError(t, err)

		updated, err := f.brands.Update(ctx, "t1", b.ID, brand.Patch{Name: strPtr("Acme Inc")})
		require.NoError(t, err)
		assert.Equal(t, "Acme Inc", updated.Name)
		assert.Equal(t, "shoes", updated.Description)
		assert.Equal(t, b.Version+1, updated.Version)
		assert.True(t, updated.UpdatedAt.After(b.UpdatedAt))
		assert.Equal(t, b.CreatedAt, updated.CreatedAt)
	})

	t.Run("Should fail with NOT_FOUND on a missing entity", func(t *testing.T) {
		f := newFixture()
		_, err := f.brands.Update(ctx, "t1", "nope", brand.Patch{Name: strPtr("x")})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Should fail with VERSION_CONFLICT on a stale expected version", func(t *testing.T) {
		f := newFixture()
		b, err := f.brands.Create(ctx, "t1", &brand.Brand{Name: "Acme"})
		require.NoError(t, err)
		_, err = f.brands.Update(ctx, "t1", b.ID, brand.Patch{Name: strPtr("A")}, repository.WithExpectedVersion(b.Version))
		require.NoError(t, err)

		_, err = f.brands.Update(ctx, "t1", b.ID, brand.Patch{Name: strPtr("B")}, repository.WithExpectedVersion(b.Version))
		assert.True(t, apperrors.IsVersionConflict(err))

		got, err := f.brands.Get(ctx, "t1", b.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", got.Name)
	})

	t.Run("Should let exactly one of two racing versioned updates win", func(t *testing.T) {
		f := newFixture()
		b, err := f.brands.Create(ctx, "t1", &brand.Brand{Name: "Acme"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.brands.Update(ctx, "t1", b.ID,
					brand.Patch{Description: strPtr(fmt.Sprintf("writer %d", i))},
					repository.WithExpectedVersion(b.Version))
			}(i)
		}
		wg.Wait()

		wins, conflicts := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case apperrors.IsVersionConflict(err):
				conflicts++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, conflicts)

		got, err := f.brands.Get(ctx, "t1", b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.Version+1, got.Version)
	})

	t.Run("Should retry unversioned updates so both land", func(t *testing.T) {
		f := newFixture()
		p, err := f.personas.Create(ctx, "t1", &persona.Persona{Name: "Ada"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		patches := []persona.Patch{{Role: strPtr("writer")}, {Tone: strPtr("warm")}}
		for i := range patches {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.personas.Update(ctx, "t1", p.ID, patches[i])
			}(i)
		}
		wg.Wait()
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		got, err := f.personas.Get(ctx, "t1", p.ID)
		require.NoError(t, err)
		assert.Equal(t, "writer", got.Role)
		assert.Equal(t, "warm", got.Tone)
		assert.Equal(t, p.Version+2, got.Version)
	})

	t.Run("Should reject brand archiving through a patch", func(t *testing.T) {
		f := newFixture()
		b, err := f.brands.Create(ctx, "t1", &brand.Brand{Name: "Acme"})
		require.NoError(t, err)
		archived := brand.StatusArchived
		_, err = f.brands.Update(ctx, "t1", b.ID, brand.Patch{Status: &archived})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestCampaignUpdates(t *testing.T) {
	ctx := context.Background()

	t.Run("Should refuse fields the status does not allow without writing", func(t *testing.T) {
		f := newFixture()
		c, err := f.campaigns.Create(ctx, "t1", newCampaign("Launch"))
		require.NoError(t, err)
		moved, err := f.campaigns.UpdateStatus(ctx, "t1", c.ID, repository.StatusChange{To: campaign.StatusGenerating, ExpectedVersion: c.Version})
		require.NoError(t, err)

		platforms := []string{"twitter"}
		_, err = f.campaigns.Update(ctx, "t1", c.ID, campaign.Patch{Name: strPtr("New"), Platforms: &platforms})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		got, err := f.campaigns.Get(ctx, "t1", c.ID)
		require.NoError(t, err)
		assert.Equal(t, moved.Version, got.Version)
		assert.Equal(t, "Launch", got.Name)

		updated, err := f.campaigns.Update(ctx, "t1", c.ID, campaign.Patch{Name: strPtr("New")})
		require.NoError(t, err)
		assert.Equal(t, "New", updated.Name)
	})

	t.Run("Should write status changes behind the version guard", func(t *testing.T) {
		f := newFixture()
		c, err := f.campaigns.Create(ctx, "t1", newCampaign("Launch"))
		require.NoError(t, err)

		count := 3
		moved, err := f.campaigns.UpdateStatus(ctx, "t1", c.ID, repository.StatusChange{
			To: campaign.StatusFailed, ExpectedVersion: c.Version, LastError: "model timeout", PostCount: &count,
		})
		require.NoError(t, err)
		assert.Equal(t, campaign.StatusFailed, moved.Status)
		assert.Equal(t, c.Version+1, moved.Version)
		assert.True(t, moved.UpdatedAt.After(c.UpdatedAt))

		got, err := f.campaigns.Get(ctx, "t1", c.ID)
		require.NoError(t, err)
		assert.Equal(t, moved, got)
		assert.Equal(t, 3, got.PostCount)
		assert.Equal(t, "model timeout", got.LastError)

		_, err = f.campaigns.UpdateStatus(ctx, "t1", c.ID, repository.StatusChange{To: campaign.StatusCancelled, ExpectedVersion: c.Version})
		assert.True(t, apperrors.IsVersionConflict(err))

		page, err := f.campaigns.List(ctx, "t1", repository.CampaignQuery{Status: campaign.StatusFailed})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, c.ID, page.Items[0].ID)

		page, err = f.campaigns.List(ctx, "t1", repository.CampaignQuery{Status: campaign.StatusPlanning})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("Should report NOT_FOUND for status writes on missing campaigns", func(t *testing.T) {
		f := newFixture()
		_, err := f.campaigns.UpdateStatus(ctx, "t1", "nope", repository.StatusChange{To: campaign.StatusCancelled, ExpectedVersion: 1})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

// ============================================================================
// SOFT AND HARD DELETE
// ============================================================================

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should hide archived brands while keeping the record with a TTL", func(t *testing.T) {
		f := newFixture()
		b, err := f.brands.Create(ctx, "t1", &brand.Brand{Name: "Acme", Industry: "retail"})
		require.NoError(t, err)

		require.NoError(t, f.brands.SoftDelete(ctx, "t1", b.ID))

		_, err = f.brands.Get(ctx, "t1", b.ID)
		assert.True(t, apperrors.IsNotFound(err))

		raw := f.store.Raw(MetadataKey("t1", b.ID))
		require.NotNil(t, raw)
		assert.Equal(t, string(brand.StatusArchived), persistence.StringAttr(raw, "status"))
		assert.Contains(t, raw, persistence.AttrExpiresAt)
		assert.NotContains(t, raw, persistence.AttrGSI1PK)
		assert.NotContains(t, raw, persistence.AttrGSI2PK)

		page, err := f.brands.List(ctx, "t1", repository.BrandQuery{})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		page, err = f.brands.List(ctx, "t1", repository.BrandQuery{Industry: "retail"})
		require.NoError(t, err)
		assert.Empty(t, page.Items)

		assert.True(t, apperrors.IsNotFound(f.brands.SoftDelete(ctx, "t1", b.ID)))
		_, err = f.brands.Update(ctx, "t1", b.ID, brand.Patch{Name: strPtr("x")})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Should deactivate personas without touching campaigns", func(t *testing.T) {
		f := newFixture()
		p, err := f.personas.Create(ctx, "t1", &persona.Persona{Name: "Ada"})
		require.NoError(t, err)
		c := newCampaign("Launch")
		c.PersonaIDs = []string{p.ID}
		c, err = f.campaigns.Create(ctx, "t1", c)
		require.NoError(t, err)

		require.NoError(t, f.personas.SoftDelete(ctx, "t1", p.ID))
		_, err = f.personas.Get(ctx, "t1", p.ID)
		assert.True(t, apperrors.IsNotFound(err))

		got, err := f.campaigns.Get(ctx, "t1", c.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{p.ID}, got.PersonaIDs)
		assert.Equal(t, c.Version, got.Version)
	})

	t.Run("Should archive campaigns behind an expected version", func(t *testing.T) {
		f := newFixture()
		c, err := f.campaigns.Create(ctx, "t1", newCampaign("Launch"))
		require.NoError(t, err)

		err = f.campaigns.SoftDelete(ctx, "t1", c.ID, repository.WithExpectedVersion(c.Version+1))
		assert.True(t, apperrors.IsVersionConflict(err))

		require.NoError(t, f.campaigns.SoftDelete(ctx, "t1", c.ID, repository.WithExpectedVersion(c.Version)))
		_, err = f.campaigns.Get(ctx, "t1", c.ID)
		assert.True(t, apperrors.IsNotFound(err))
		assert.NotNil(t, f.store.Raw(MetadataKey("t1", c.ID)))
	})

	t.Run("Should hard delete posts and assets", func(t *testing.T) {
		f := newFixture()
		x, err := f.posts.Create(ctx, "t1", &post.Post{CampaignID: "c1", PersonaID: "p1", Platform: "twitter"})
		require.NoError(t, err)

		require.NoError(t, f.posts.Delete(ctx, "t1", "c1", x.ID))
		assert.Nil(t, f.store.Raw(MemberKey("t1", "c1", TypePost, x.ID)))
		assert.True(t, apperrors.IsNotFound(f.posts.Delete(ctx, "t1", "c1", x.ID)))
		assert.True(t, apperrors.IsNotFound(f.assets.Delete(ctx, "t1", "b1", "a1")))
	})
}

// ============================================================================
// BATCH AND QUERY
// ============================================================================

func TestBatchGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	var ids []string
	for i := 0; i < 3; i++ {
		p, err := f.personas.Create(ctx, "t1", &persona.Persona{Name: fmt.Sprintf("P%d", i)})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	require.NoError(t, f.personas.SoftDelete(ctx, "t1", ids[2]))

	t.Run("Should return entities in request order", func(t *testing.T) {
		got, err := f.personas.BatchGet(ctx, "t1", []string{ids[1], ids[0], ids[1]})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, ids[1], got[0].ID)
		assert.Equal(t, ids[0], got[1].ID)
	})

	t.Run("Should list every missing or archived id", func(t *testing.T) {
		_, err := f.personas.BatchGet(ctx, "t1", []string{ids[0], "ghost", ids[2]})
		require.Error(t, err)
		assert.True(t, apperrors.IsPartialNotFound(err))
		assert.Equal(t, []string{"ghost", ids[2]}, apperrors.MissingIDs(err))
	})

	t.Run("Should not see other tenants' entities", func(t *testing.T) {
		_, err := f.personas.BatchGet(ctx, "t2", []string{ids[0]})
		assert.Equal(t, []string{ids[0]}, apperrors.MissingIDs(err))
	})

	t.Run("Should return an empty slice for no ids", func(t *testing.T) {
		got, err := f.personas.BatchGet(ctx, "t1", nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestQueryPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	var created []string
	for i := 0; i < 5; i++ {
		c, err := f.campaigns.Create(ctx, "t1", newCampaign(fmt.Sprintf("Campaign %d", i)))
		require.NoError(t, err)
		created = append(created, c.ID)
	}

	t.Run("Should page newest first without gaps or repeats", func(t *testing.T) {
		var seen []string
		token := ""
		for pages := 0; pages < 10; pages++ {
			page, err := f.campaigns.List(ctx, "t1", repository.CampaignQuery{Page: repository.NewPageRequest(2, token)})
			require.NoError(t, err)
			for _, c := range page.Items {
				seen = append(seen, c.ID)
			}
			if !page.HasMore {
				break
			}
			token = page.NextCursor
		}
		want := []string{created[4], created[3], created[2], created[1], created[0]}
		assert.Equal(t, want, seen)
	})

	first, err := f.campaigns.List(ctx, "t1", repository.CampaignQuery{Page: repository.NewPageRequest(2, "")})
	require.NoError(t, err)
	require.NotEmpty(t, first.NextCursor)

	t.Run("Should reject a cursor replayed under another query", func(t *testing.T) {
		_, err := f.campaigns.List(ctx, "t2", repository.CampaignQuery{Page: repository.NewPageRequest(2, first.NextCursor)})
		assert.True(t, apperrors.IsInvalidCursor(err))

		_, err = f.campaigns.List(ctx, "t1", repository.CampaignQuery{Status: campaign.StatusPlanning, Page: repository.NewPageRequest(2, first.NextCursor)})
		assert.True(t, apperrors.IsInvalidCursor(err))

		_, err = f.campaigns.List(ctx, "t1", repository.CampaignQuery{Search: "x", Page: repository.NewPageRequest(2, first.NextCursor)})
		assert.True(t, apperrors.IsInvalidCursor(err))

		_, err = f.brands.List(ctx, "t1", repository.BrandQuery{Page: repository.NewPageRequest(2, first.NextCursor)})
		assert.True(t, apperrors.IsInvalidCursor(err))
	})

	t.Run("Should reject tampered cursors", func(t *testing.T) {
		tampered := []byte(first.NextCursor)
		tampered[len(tampered)/2] ^= 0x01
		_, err := f.campaigns.List(ctx, "t1", repository.CampaignQuery{Page: repository.NewPageRequest(2, string(tampered))})
		assert.True(t, apperrors.IsInvalidCursor(err))
	})

	t.Run("Should report filtered pages that shrink", func(t *testing.T) {
		page, err := f.campaigns.List(ctx, "t1", repository.CampaignQuery{Search: "campaign 0", Page: repository.NewPageRequest(2, "")})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 2, page.Scanned)
		assert.Equal(t, 2, page.Filtered)
		assert.True(t, page.HasMore)
	})
}

func TestPostQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	c, err := f.campaigns.Create(ctx, "t1", newCampaign("Launch"))
	require.NoError(t, err)
	for i := 0; i < 105; i++ {
		platform := "twitter"
		if i%5 == 0 {
			platform = "linkedin"
		}
		_, err := f.posts.Create(ctx, "t1", &post.Post{CampaignID: c.ID, PersonaID: "p1", Platform: platform})
		require.NoError(t, err)
	}
	_, err = f.posts.Create(ctx, "t1", &post.Post{CampaignID: "other", PersonaID: "p2", Platform: "twitter"})
	require.NoError(t, err)

	t.Run("Should read every post of a campaign across pages", func(t *testing.T) {
		all, err := f.posts.ListAllByCampaign(ctx, "t1", c.ID)
		require.NoError(t, err)
		assert.Len(t, all, 105)
		for _, p := range all {
			assert.Equal(t, c.ID, p.CampaignID)
		}
	})

	t.Run("Should filter a campaign's posts by platform", func(t *testing.T) {
		page, err := f.posts.ListByCampaign(ctx, "t1", c.ID, repository.PostQuery{
			Platform: "linkedin", Page: repository.NewPageRequest(repository.MaxPageSize, ""),
		})
		require.NoError(t, err)
		assert.Equal(t, 100, page.Scanned)
		assert.Equal(t, 100-len(page.Items), page.Filtered)
		for _, p := range page.Items {
			assert.Equal(t, "linkedin", p.Platform)
		}
	})

	t.Run("Should list posts by persona and by status", func(t *testing.T) {
		page, err := f.posts.ListByPersona(ctx, "t1", "p2", repository.PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "other", page.Items[0].CampaignID)

		page, err = f.posts.List(ctx, "t1", repository.PostQuery{Status: post.StatusCompleted})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("Should move a post between status listings on update", func(t *testing.T) {
		x, err := f.posts.Create(ctx, "t1", &post.Post{CampaignID: "c9", PersonaID: "p9", Platform: "tiktok"})
		require.NoError(t, err)
		done := post.StatusCompleted
		_, err = f.posts.Update(ctx, "t1", "c9", x.ID, post.Patch{Status: &done})
		require.NoError(t, err)

		page, err := f.posts.List(ctx, "t1", repository.PostQuery{Status: post.StatusCompleted})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, x.ID, page.Items[0].ID)
	})
}

func TestReverseLookups(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	b, err := f.brands.Create(ctx, "t1", &brand.Brand{Name: "Acme"})
	require.NoError(t, err)
	p, err := f.personas.Create(ctx, "t1", &persona.Persona{Name: "Ada", BrandID: b.ID})
	require.NoError(t, err)
	c := newCampaign("Launch")
	c.BrandID = b.ID
	c, err = f.campaigns.Create(ctx, "t1", c)
	require.NoError(t, err)
	_, err = f.assets.Create(ctx, "t1", &asset.Asset{BrandID: b.ID, FileName: "a.pdf", ContentType: "application/pdf", ObjectKey: "k1", Tags: []string{"guide"}})
	require.NoError(t, err)
	logo, err := f.assets.Create(ctx, "t1", &asset.Asset{BrandID: b.ID, FileName: "logo.svg", ContentType: "image/svg+xml", ObjectKey: "k2", Category: asset.CategoryLogo})
	require.NoError(t, err)

	t.Run("Should find personas and campaigns of a brand", func(t *testing.T) {
		personas, err := f.personas.ListByBrand(ctx, "t1", b.ID, repository.PageRequest{})
		require.NoError(t, err)
		require.Len(t, personas.Items, 1)
		assert.Equal(t, p.ID, personas.Items[0].ID)

		campaigns, err := f.campaigns.ListByBrand(ctx, "t1", b.ID, repository.PageRequest{})
		require.NoError(t, err)
		require.Len(t, campaigns.Items, 1)
		assert.Equal(t, c.ID, campaigns.Items[0].ID)
	})

	t.Run("Should list a brand's assets with filters", func(t *testing.T) {
		all, err := f.assets.ListByBrand(ctx, "t1", b.ID, repository.AssetQuery{})
		require.NoError(t, err)
		assert.Len(t, all.Items, 2)

		tagged, err := f.assets.ListByBrand(ctx, "t1", b.ID, repository.AssetQuery{Tag: "guide"})
		require.NoError(t, err)
		require.Len(t, tagged.Items, 1)
		assert.Equal(t, asset.CategoryDocument, tagged.Items[0].Category)

		logos, err := f.assets.List(ctx, "t1", repository.AssetQuery{Category: asset.CategoryLogo})
		require.NoError(t, err)
		require.Len(t, logos.Items, 1)
		assert.Equal(t, logo.ID, logos.Items[0].ID)
	})

	t.Run("Should follow a brand's industry through updates", func(t *testing.T) {
		_, err := f.brands.Update(ctx, "t1", b.ID, brand.Patch{Industry: strPtr("fashion")})
		require.NoError(t, err)

		page, err := f.brands.List(ctx, "t1", repository.BrandQuery{Industry: "fashion"})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)

		page, err = f.brands.List(ctx, "t1", repository.BrandQuery{Industry: "fashion", Status: brand.StatusInactive})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})
}
