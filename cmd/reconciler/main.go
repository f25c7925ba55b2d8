// Package main implements the Lambda that reconciles a campaign's status with
// its posts. It is triggered by EventBridge whenever post generation reports
// progress; the event detail names the tenant and the campaign.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"social-campaign-backend/internal/application/services"
	"social-campaign-backend/internal/config"
	"social-campaign-backend/internal/di"
	apperrors "social-campaign-backend/internal/errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// maxAttempts bounds re-reads after losing a race with another writer.
const maxAttempts = 3

// ReconcileDetail is the part of the event detail the handler reads.
type ReconcileDetail struct {
	TenantID   string `json:"tenantId"`
	CampaignID string `json:"campaignId"`
}

type reconciler interface {
	Reconcile(ctx context.Context, tenantID, campaignID string) (*services.TransitionResult, error)
}

type handler struct {
	svc    reconciler
	logger *zap.Logger
}

// Handle reconciles the campaign named by the event. Client errors are
// logged and dropped, since retrying cannot fix them; infrastructure errors
// are returned so Lambda retries the event.
func (h *handler) Handle(ctx context.Context, event events.CloudWatchEvent) error {
	logger := h.logger.With(
		zap.String("event_id", event.ID),
		zap.String("detail_type", event.DetailType))

	var detail ReconcileDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		logger.Error("dropping event with malformed detail", zap.Error(err))
		return nil
	}
	if detail.TenantID == "" || detail.CampaignID == "" {
		logger.Error("dropping event without tenant or campaign",
			zap.String("tenant_id", detail.TenantID),
			zap.String("campaign_id", detail.CampaignID))
		return nil
	}
	logger = logger.With(
		zap.String("tenant_id", detail.TenantID),
		zap.String("campaign_id", detail.CampaignID))

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var res *services.TransitionResult
		res, err = h.svc.Reconcile(ctx, detail.TenantID, detail.CampaignID)
		if err == nil {
			if res.Changed {
				logger.Info("campaign reconciled",
					zap.String("from", string(res.From)),
					zap.String("to", string(res.Campaign.Status)))
			}
			return nil
		}
		if !apperrors.IsVersionConflict(err) {
			break
		}
		logger.Debug("campaign changed while reconciling, retrying", zap.Int("attempt", attempt))
	}

	if apperrors.Retryable(err) {
		logger.Error("reconciliation failed", zap.Error(err))
		return fmt.Errorf("reconcile campaign %s: %w", detail.CampaignID, err)
	}
	logger.Warn("reconciliation rejected", zap.Error(err))
	return nil
}

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize DI container: %v", err)
	}

	h := &handler{svc: container.Status, logger: container.Logger.Named("reconciler")}
	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(cleanup))
}
