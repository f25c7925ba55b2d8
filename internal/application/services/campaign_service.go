package services

import (
	"context"
	"strings"

	"social-campaign-backend/internal/domain/campaign"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/repository"

	"go.uber.org/zap"
)

// CampaignService runs campaign use cases. Reference checks against brands
// and personas are check-then-act: a referenced entity archived after the
// check stays referenced.
type CampaignService struct {
	campaigns repository.CampaignRepository
	brands    repository.BrandRepository
	personas  repository.PersonaRepository
	status    *StatusService
	logger    *zap.Logger
}

func NewCampaignService(
	campaigns repository.CampaignRepository,
	brands repository.BrandRepository,
	personas repository.PersonaRepository,
	status *StatusService,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		brands:    brands,
		personas:  personas,
		status:    status,
		logger:    logger.Named("campaign_service"),
	}
}

// Create stores a new campaign in planning after checking that its brand and
// personas exist.
func (s *CampaignService) Create(ctx context.Context, tenantID string, c *campaign.Campaign) (*campaign.Campaign, error) {
	if err := s.checkReferences(ctx, tenantID, c.BrandID, c.PersonaIDs); err != nil {
		return nil, err
	}
	created, err := s.campaigns.Create(ctx, tenantID, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign created",
		zap.String("tenant_id", tenantID),
		zap.String("campaign_id", created.ID),
		zap.Int("personas", len(created.PersonaIDs)))
	return created, nil
}

func (s *CampaignService) Get(ctx context.Context, tenantID, id string) (*campaign.Campaign, error) {
	return s.campaigns.Get(ctx, tenantID, id)
}

// Update applies patch subject to the permission table of the campaign's
// status. Changed references are checked first.
func (s *CampaignService) Update(ctx context.Context, tenantID, id string, patch campaign.Patch, opts ...repository.WriteOption) (*campaign.Campaign, error) {
	var brandID string
	var personaIDs []string
	if patch.BrandID != nil {
		brandID = *patch.BrandID
	}
	if patch.PersonaIDs != nil {
		personaIDs = *patch.PersonaIDs
	}
	if err := s.checkReferences(ctx, tenantID, brandID, personaIDs); err != nil {
		return nil, err
	}
	return s.campaigns.Update(ctx, tenantID, id, patch, opts...)
}

func (s *CampaignService) Delete(ctx context.Context, tenantID, id string, opts ...repository.WriteOption) error {
	return s.campaigns.SoftDelete(ctx, tenantID, id, opts...)
}

// Transition moves the campaign through its lifecycle.
func (s *CampaignService) Transition(ctx context.Context, tenantID string, req TransitionRequest) (*TransitionResult, error) {
	return s.status.Transition(ctx, tenantID, req)
}

// Reconcile applies the status derived from the campaign's posts.
func (s *CampaignService) Reconcile(ctx context.Context, tenantID, id string) (*TransitionResult, error) {
	return s.status.Reconcile(ctx, tenantID, id)
}

func (s *CampaignService) List(ctx context.Context, tenantID string, q repository.CampaignQuery) (*repository.Page[*campaign.Campaign], error) {
	return s.campaigns.List(ctx, tenantID, q)
}

func (s *CampaignService) ListByBrand(ctx context.Context, tenantID, brandID string, page repository.PageRequest) (*repository.Page[*campaign.Campaign], error) {
	return s.campaigns.ListByBrand(ctx, tenantID, brandID, page)
}

func (s *CampaignService) checkReferences(ctx context.Context, tenantID, brandID string, personaIDs []string) error {
	if brandID != "" {
		if _, err := s.brands.Get(ctx, tenantID, brandID); err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidation("referenced brand does not exist",
					map[string]string{"brandId": brandID})
			}
			return err
		}
	}
	if len(personaIDs) == 0 {
		return nil
	}
	if _, err := s.personas.BatchGet(ctx, tenantID, personaIDs); err != nil {
		if missing := apperrors.MissingIDs(err); len(missing) > 0 {
			return apperrors.NewValidation("referenced personas do not exist",
				map[string]string{"personaIds": strings.Join(missing, ",")})
		}
		return err
	}
	return nil
}
