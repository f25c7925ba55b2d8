package services

import (
	"context"

	"social-campaign-backend/internal/domain/persona"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/repository"

	"go.uber.org/zap"
)

// PersonaService runs persona use cases.
type PersonaService struct {
	personas repository.PersonaRepository
	brands   repository.BrandRepository
	clock    shared.Clock
	logger   *zap.Logger
}

func NewPersonaService(personas repository.PersonaRepository, brands repository.BrandRepository, clock shared.Clock, logger *zap.Logger) *PersonaService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &PersonaService{
		personas: personas,
		brands:   brands,
		clock:    clock,
		logger:   logger.Named("persona_service"),
	}
}

func (s *PersonaService) Create(ctx context.Context, tenantID string, p *persona.Persona) (*persona.Persona, error) {
	if err := s.checkBrand(ctx, tenantID, p.BrandID); err != nil {
		return nil, err
	}
	return s.personas.Create(ctx, tenantID, p)
}

func (s *PersonaService) Get(ctx context.Context, tenantID, id string) (*persona.Persona, error) {
	return s.personas.Get(ctx, tenantID, id)
}

func (s *PersonaService) Update(ctx context.Context, tenantID, id string, patch persona.Patch, opts ...repository.WriteOption) (*persona.Persona, error) {
	if patch.BrandID != nil {
		if err := s.checkBrand(ctx, tenantID, *patch.BrandID); err != nil {
			return nil, err
		}
	}
	return s.personas.Update(ctx, tenantID, id, patch, opts...)
}

// Delete deactivates the persona. Campaigns keep referencing it.
func (s *PersonaService) Delete(ctx context.Context, tenantID, id string, opts ...repository.WriteOption) error {
	return s.personas.SoftDelete(ctx, tenantID, id, opts...)
}

func (s *PersonaService) List(ctx context.Context, tenantID string, q repository.PersonaQuery) (*repository.Page[*persona.Persona], error) {
	return s.personas.List(ctx, tenantID, q)
}

func (s *PersonaService) ListByBrand(ctx context.Context, tenantID, brandID string, page repository.PageRequest) (*repository.Page[*persona.Persona], error) {
	return s.personas.ListByBrand(ctx, tenantID, brandID, page)
}

// RecordStyleProfile stores statistics inferred from the persona's writing
// samples, replacing any earlier profile. AnalyzedAt defaults to now.
func (s *PersonaService) RecordStyleProfile(ctx context.Context, tenantID, id string, profile persona.StyleProfile, opts ...repository.WriteOption) (*persona.Persona, error) {
	if profile.AnalyzedAt.IsZero() {
		profile.AnalyzedAt = s.clock()
	}
	updated, err := s.personas.Update(ctx, tenantID, id, persona.Patch{StyleProfile: &profile}, opts...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("style profile recorded",
		zap.String("tenant_id", tenantID),
		zap.String("persona_id", id),
		zap.Float64("vocabulary_richness", profile.VocabularyRichness))
	return updated, nil
}

func (s *PersonaService) checkBrand(ctx context.Context, tenantID, brandID string) error {
	if brandID == "" {
		return nil
	}
	if _, err := s.brands.Get(ctx, tenantID, brandID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidation("referenced brand does not exist",
				map[string]string{"brandId": brandID})
		}
		return err
	}
	return nil
}
