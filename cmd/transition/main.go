// Package main implements the Lambda behind
// POST /campaigns/{campaignId}/transition. It resolves the caller's tenant
// from the bearer token and moves the campaign through its lifecycle.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"social-campaign-backend/internal/application/ports"
	"social-campaign-backend/internal/application/services"
	"social-campaign-backend/internal/config"
	"social-campaign-backend/internal/di"
	"social-campaign-backend/internal/domain/campaign"
	apperrors "social-campaign-backend/internal/errors"
	"social-campaign-backend/internal/infrastructure/identity"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// TransitionBody is the request payload.
type TransitionBody struct {
	Status          campaign.Status `json:"status"`
	ExpectedVersion *int64          `json:"expectedVersion,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// TransitionResponse is the success payload.
type TransitionResponse struct {
	Campaign   *campaign.Campaign `json:"campaign"`
	FromStatus campaign.Status    `json:"fromStatus"`
	Changed    bool               `json:"changed"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Missing []string          `json:"missing,omitempty"`
}

type transitioner interface {
	Transition(ctx context.Context, tenantID string, req services.TransitionRequest) (*services.TransitionResult, error)
}

type handler struct {
	resolver ports.TenantResolver
	svc      transitioner
	logger   *zap.Logger
}

func (h *handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	caller, err := h.resolver.Resolve(ctx, header(req.Headers, "Authorization"))
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return unauthenticated(), nil
		}
		return h.fail(err), nil
	}
	return h.transition(identity.WithIdentity(ctx, caller), req), nil
}

// transition serves an authenticated request. The tenant comes from the
// caller stored in ctx.
func (h *handler) transition(ctx context.Context, req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	tenantID, ok := identity.TenantFromContext(ctx)
	if !ok {
		return unauthenticated()
	}

	campaignID := req.PathParameters["campaignId"]
	if campaignID == "" {
		return h.fail(apperrors.NewValidation("campaignId is required", map[string]string{"campaignId": "required"}))
	}

	var body TransitionBody
	dec := json.NewDecoder(strings.NewReader(req.Body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return h.fail(apperrors.NewValidation("malformed request body", map[string]string{"body": err.Error()}))
	}
	if body.Status == "" {
		return h.fail(apperrors.NewValidation("status is required", map[string]string{"status": "required"}))
	}

	res, err := h.svc.Transition(ctx, tenantID, services.TransitionRequest{
		CampaignID:      campaignID,
		To:              body.Status,
		ExpectedVersion: body.ExpectedVersion,
		Reason:          body.Reason,
		Error:           body.Error,
	})
	if err != nil {
		h.logger.Info("transition refused",
			zap.String("tenant_id", tenantID),
			zap.String("campaign_id", campaignID),
			zap.String("to", string(body.Status)),
			zap.Error(err))
		return h.fail(err)
	}
	return respond(http.StatusOK, TransitionResponse{
		Campaign:   res.Campaign,
		FromStatus: res.From,
		Changed:    res.Changed,
	})
}

func unauthenticated() events.APIGatewayV2HTTPResponse {
	return respond(http.StatusUnauthorized, errorBody{Code: "UNAUTHENTICATED", Message: "missing or invalid token"})
}

// fail renders err. Internal details stay in the logs.
func (h *handler) fail(err error) events.APIGatewayV2HTTPResponse {
	status := apperrors.HTTPStatus(err)
	body := errorBody{Code: string(apperrors.KindOf(err)), Message: err.Error()}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Fields = appErr.Fields
		body.Missing = appErr.Missing
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("transition failed", zap.Error(err))
		body.Message = http.StatusText(status)
		body.Fields, body.Missing = nil, nil
	}
	return respond(status, body)
}

func respond(status int, payload any) events.APIGatewayV2HTTPResponse {
	data, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"code":"INTERNAL","message":"Internal Server Error"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

// header looks name up case-insensitively.
func header(headers map[string]string, name string) string {
	if v, ok := headers[strings.ToLower(name)]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize DI container: %v", err)
	}

	h := &handler{
		resolver: container.TenantResolver,
		svc:      container.CampaignService,
		logger:   container.Logger.Named("transition"),
	}
	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(cleanup))
}
