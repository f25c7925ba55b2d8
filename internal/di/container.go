// Package di wires the service together. Providers live in providers.go;
// wire.go declares the injector and wire_gen.go is its generated form.
package di

import (
	"social-campaign-backend/internal/application/ports"
	"social-campaign-backend/internal/application/services"
	"social-campaign-backend/internal/config"
	"social-campaign-backend/internal/infrastructure/observability"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/repository"

	"go.uber.org/zap"
)

// Container holds the process-wide dependencies of a Lambda function.
type Container struct {
	Config  *config.Config
	Logging *Logging
	Logger  *zap.Logger
	Metrics *observability.Collector
	Tracing *observability.TracerProvider
	Watcher *config.Watcher

	Store     persistence.Store
	Brands    repository.BrandRepository
	Personas  repository.PersonaRepository
	Campaigns repository.CampaignRepository
	Posts     repository.PostRepository
	Assets    repository.AssetRepository

	EventBus       ports.EventBus
	ObjectStore    ports.ObjectStore
	TenantResolver ports.TenantResolver

	Status          *services.StatusService
	CampaignService *services.CampaignService
	PersonaService  *services.PersonaService
	AssetService    *services.AssetService
}
