// Package services holds the application services: the campaign status
// machine, campaign and persona use cases and brand asset handling.
package services

import (
	"context"

	"social-campaign-backend/internal/application/ports"
	"social-campaign-backend/internal/domain/campaign"
	"social-campaign-backend/internal/domain/post"
	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/repository"

	"go.uber.org/zap"
)

// TransitionRecorder counts accepted campaign transitions.
type TransitionRecorder interface {
	RecordTransition(from, to string)
}

// TransitionRequest asks for a campaign to move to another status.
type TransitionRequest struct {
	CampaignID string
	To         campaign.Status
	// ExpectedVersion, when set, must match the stored campaign.
	ExpectedVersion *int64
	Reason          string
	// Error is stored as the campaign's lastError and sent with the event.
	Error string
	// PostCount refreshes the stored post count with the status.
	PostCount *int
}

// TransitionResult reports what a transition did. Changed is false for a
// transition to the status the campaign already had.
type TransitionResult struct {
	Campaign *campaign.Campaign
	From     campaign.Status
	Changed  bool
}

// Derivation is the status a campaign's posts call for.
type Derivation struct {
	Campaign *campaign.Campaign
	Derived  campaign.Status
	Posts    int
}

// StatusService guards and persists campaign status changes.
type StatusService struct {
	campaigns repository.CampaignRepository
	posts     repository.PostRepository
	bus       ports.EventBus
	recorder  TransitionRecorder
	clock     shared.Clock
	logger    *zap.Logger
}

// NewStatusService creates a status service. recorder may be nil.
func NewStatusService(
	campaigns repository.CampaignRepository,
	posts repository.PostRepository,
	bus ports.EventBus,
	recorder TransitionRecorder,
	clock shared.Clock,
	logger *zap.Logger,
) *StatusService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &StatusService{
		campaigns: campaigns,
		posts:     posts,
		bus:       bus,
		recorder:  recorder,
		clock:     clock,
		logger:    logger.Named("status_service"),
	}
}

// Transition validates req against the lifecycle and stores it with a
// version guard. The change event is published afterwards; a failed publish
// is logged and does not undo the stored status.
func (s *StatusService) Transition(ctx context.Context, tenantID string, req TransitionRequest) (*TransitionResult, error) {
	c, err := s.campaigns.Get(ctx, tenantID, req.CampaignID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, tenantID, c, req)
}

func (s *StatusService) transition(ctx context.Context, tenantID string, c *campaign.Campaign, req TransitionRequest) (*TransitionResult, error) {
	if req.ExpectedVersion != nil && *req.ExpectedVersion != c.Version {
		return nil, apperrors.NewVersionConflict("campaign", c.ID, *req.ExpectedVersion)
	}

	noop, err := campaign.ValidateTransition(c, req.To)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if noop {
		return &TransitionResult{Campaign: c, From: from}, nil
	}

	updated, err := s.campaigns.UpdateStatus(ctx, tenantID, c.ID, repository.StatusChange{
		To:              req.To,
		ExpectedVersion: c.Version,
		LastError:       req.Error,
		PostCount:       req.PostCount,
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordTransition(string(from), string(req.To))
	}
	s.logger.Info("campaign status changed",
		zap.String("tenant_id", tenantID),
		zap.String("campaign_id", c.ID),
		zap.String("from", string(from)),
		zap.String("to", string(req.To)),
		zap.String("reason", req.Reason),
		zap.Int64("version", updated.Version),
	)
	s.publish(ctx, tenantID, campaign.StatusChanged{
		CampaignID: c.ID,
		TenantID:   tenantID,
		FromStatus: from,
		ToStatus:   req.To,
		Reason:     req.Reason,
		Error:      req.Error,
		Timestamp:  updated.UpdatedAt,
	})

	return &TransitionResult{Campaign: updated, From: from, Changed: true}, nil
}

func (s *StatusService) publish(ctx context.Context, tenantID string, detail campaign.StatusChanged) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, ports.Event{
		DetailType: campaign.EventStatusChanged,
		Resource:   detail.CampaignID,
		TenantID:   tenantID,
		Time:       s.clock(),
		Detail:     detail,
	})
	if err != nil {
		s.logger.Warn("failed to publish status change",
			zap.String("tenant_id", tenantID),
			zap.String("campaign_id", detail.CampaignID),
			zap.String("to", string(detail.ToStatus)),
			zap.Error(err),
		)
	}
}

// DeriveStatus reads every post of the campaign and returns the status they
// call for. Only generating campaigns ever derive a different status.
func (s *StatusService) DeriveStatus(ctx context.Context, tenantID, campaignID string) (*Derivation, error) {
	c, err := s.campaigns.Get(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != campaign.StatusGenerating {
		return &Derivation{Campaign: c, Derived: c.Status, Posts: c.PostCount}, nil
	}

	posts, err := s.posts.ListAllByCampaign(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	statuses := make([]post.Status, len(posts))
	for i, p := range posts {
		statuses[i] = p.Status
	}
	return &Derivation{
		Campaign: c,
		Derived:  campaign.DeriveFromPosts(c.Status, statuses),
		Posts:    len(posts),
	}, nil
}

// Reconcile moves a generating campaign to the status its posts call for.
// The write is guarded by the version read before the posts, so a campaign
// changed in between fails with VERSION_CONFLICT and can be reconciled
// again.
func (s *StatusService) Reconcile(ctx context.Context, tenantID, campaignID string) (*TransitionResult, error) {
	d, err := s.DeriveStatus(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}
	if d.Derived == d.Campaign.Status {
		s.logger.Debug("campaign already reconciled",
			zap.String("tenant_id", tenantID),
			zap.String("campaign_id", campaignID),
			zap.String("status", string(d.Derived)),
			zap.Int("posts", d.Posts),
		)
		return &TransitionResult{Campaign: d.Campaign, From: d.Campaign.Status}, nil
	}

	count := d.Posts
	version := d.Campaign.Version
	return s.transition(ctx, tenantID, d.Campaign, TransitionRequest{
		CampaignID:      campaignID,
		To:              d.Derived,
		ExpectedVersion: &version,
		Reason:          campaign.ReasonPostsAggregated,
		PostCount:       &count,
	})
}
