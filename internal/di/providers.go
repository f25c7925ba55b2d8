package di

import (
	"context"
	"fmt"
	"os"

	"social-campaign-backend/internal/application/ports"
	"social-campaign-backend/internal/application/services"
	"social-campaign-backend/internal/config"
	"social-campaign-backend/internal/domain/shared"
	"social-campaign-backend/internal/infrastructure/awsclients"
	"social-campaign-backend/internal/infrastructure/events"
	"social-campaign-backend/internal/infrastructure/identity"
	"social-campaign-backend/internal/infrastructure/objectstore"
	"social-campaign-backend/internal/infrastructure/observability"
	"social-campaign-backend/internal/infrastructure/persistence"
	"social-campaign-backend/internal/infrastructure/persistence/dynamodb"
	"social-campaign-backend/internal/repository"
	"social-campaign-backend/internal/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsEventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/wire"
	"go.uber.org/zap"
)

// ============================================================================
// PROVIDER SETS
// ============================================================================

// SuperSet is every provider needed to build a Container.
var SuperSet = wire.NewSet(
	ObservabilityProviders,
	InfrastructureProviders,
	RepositoryProviders,
	ServiceProviders,
	wire.Struct(new(Container), "*"),
)

var ObservabilityProviders = wire.NewSet(
	ProvideLogging,
	ProvideLogger,
	ProvideCollector,
	ProvideTracerProvider,
	ProvideConfigWatcher,
	ProvideClock,
	wire.Bind(new(services.TransitionRecorder), new(*observability.Collector)),
	wire.Bind(new(services.UploadRecorder), new(*observability.Collector)),
)

var InfrastructureProviders = wire.NewSet(
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideS3Client,
	ProvideStore,
	ProvideEventBus,
	ProvideObjectStore,
	ProvideTenantResolver,
)

var RepositoryProviders = wire.NewSet(
	ProvideRepositoryOptions,
	dynamodb.NewBrandRepository,
	dynamodb.NewPersonaRepository,
	dynamodb.NewCampaignRepository,
	dynamodb.NewPostRepository,
	dynamodb.NewAssetRepository,
	wire.Bind(new(repository.BrandRepository), new(*dynamodb.BrandRepository)),
	wire.Bind(new(repository.PersonaRepository), new(*dynamodb.PersonaRepository)),
	wire.Bind(new(repository.CampaignRepository), new(*dynamodb.CampaignRepository)),
	wire.Bind(new(repository.PostRepository), new(*dynamodb.PostRepository)),
	wire.Bind(new(repository.AssetRepository), new(*dynamodb.AssetRepository)),
)

var ServiceProviders = wire.NewSet(
	services.NewStatusService,
	services.NewCampaignService,
	services.NewPersonaService,
	ProvideAssetService,
)

// ============================================================================
// OBSERVABILITY
// ============================================================================

// Logging is the process logger with its runtime-adjustable level.
type Logging struct {
	Logger *zap.Logger
	Level  zap.AtomicLevel
}

func ProvideLogging(cfg *config.Config) (*Logging, func(), error) {
	logger, level, err := observability.NewLogger(observability.LoggingConfig{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger = logger.With(zap.String("environment", string(cfg.Environment)))
	return &Logging{Logger: logger, Level: level}, func() { _ = logger.Sync() }, nil
}

func ProvideLogger(l *Logging) *zap.Logger {
	return l.Logger
}

func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return tp, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}, nil
}

// ProvideConfigWatcher applies log level changes from the configuration
// files while running in development.
func ProvideConfigWatcher(cfg *config.Config, l *Logging) (*config.Watcher, func(), error) {
	loader := config.NewLoader(os.Getenv("CONFIG_DIR"), cfg.Environment)
	w, err := config.NewWatcher(loader, cfg, l.Logger)
	if err != nil {
		return nil, nil, err
	}
	w.OnChange(func(next *config.Config) {
		if err := observability.SetLevel(l.Level, next.Logging.Level); err != nil {
			l.Logger.Warn("ignoring log level change", zap.Error(err))
		}
	})
	return w, w.Stop, nil
}

func ProvideClock() shared.Clock {
	return shared.SystemClock
}

// ============================================================================
// INFRASTRUCTURE
// ============================================================================

func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsclients.LoadConfig(ctx, cfg)
}

func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsDynamodb.Client {
	return awsclients.NewDynamoDB(awsCfg, cfg)
}

func ProvideEventBridgeClient(awsCfg aws.Config) *awsEventbridge.Client {
	return awsclients.NewEventBridge(awsCfg)
}

func ProvideS3Client(awsCfg aws.Config, cfg *config.Config) *awsS3.Client {
	return awsclients.NewS3(awsCfg, cfg)
}

// ProvideStore layers the table store: DynamoDB, then retries behind a
// circuit breaker, then metrics and spans on the outside.
func ProvideStore(
	client *awsDynamodb.Client,
	cfg *config.Config,
	collector *observability.Collector,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) persistence.Store {
	base := persistence.NewDynamoDBStore(client, persistence.DynamoDBConfig{
		TableName:      cfg.Database.TableName,
		ConsistentRead: cfg.Database.ConsistentRead,
	}, logger)

	resilient := persistence.NewResilientStore(base,
		persistence.RetryConfig{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialDelay:   cfg.Retry.InitialDelay,
			MaxDelay:       cfg.Retry.MaxDelay,
			Multiplier:     cfg.Retry.Multiplier,
			JitterFactor:   cfg.Retry.JitterFactor,
			MaxElapsedTime: cfg.Retry.MaxElapsedTime,
		},
		persistence.BreakerConfig{
			Name:             cfg.Database.TableName,
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
			MinRequests:      cfg.CircuitBreaker.MinRequests,
		},
		collector, logger)

	if !cfg.Metrics.Enabled && !cfg.Tracing.Enabled {
		return resilient
	}
	return persistence.NewInstrumentedStore(resilient, collector, tp.Tracer(), cfg.Database.TableName)
}

func ProvideEventBus(cfg *config.Config, client *awsEventbridge.Client, collector *observability.Collector, logger *zap.Logger) ports.EventBus {
	if !cfg.Events.Enabled {
		logger.Info("event publishing disabled")
		return events.DiscardBus{}
	}
	return events.NewEventBridgeBus(client, cfg.Events.EventBusName, cfg.Events.Source, collector, logger)
}

func ProvideObjectStore(cfg *config.Config, client *awsS3.Client, logger *zap.Logger) ports.ObjectStore {
	return objectstore.NewS3Store(client, cfg.Storage.AssetBucket, logger)
}

func ProvideTenantResolver(cfg *config.Config, logger *zap.Logger) (ports.TenantResolver, error) {
	if cfg.Identity.SupabaseURL == "" {
		logger.Warn("no identity provider configured, every token will be rejected")
		return identity.RejectingResolver{}, nil
	}
	return identity.NewSupabaseResolver(cfg.Identity.SupabaseURL, cfg.Identity.SupabaseKey, logger)
}

// ============================================================================
// REPOSITORIES AND SERVICES
// ============================================================================

func ProvideRepositoryOptions(cfg *config.Config, clock shared.Clock, logger *zap.Logger) dynamodb.Options {
	return dynamodb.Options{
		Codec:              repository.NewCursorCodec([]byte(cfg.Pagination.CursorSecret)),
		Validator:          validation.New(),
		Clock:              clock,
		ArchiveTTL:         cfg.Database.ArchiveTTL,
		MaxConflictRetries: cfg.Database.MaxConflictRetries,
		Logger:             logger,
	}
}

func ProvideAssetService(
	cfg *config.Config,
	assets repository.AssetRepository,
	brands repository.BrandRepository,
	objects ports.ObjectStore,
	recorder services.UploadRecorder,
	logger *zap.Logger,
) *services.AssetService {
	return services.NewAssetService(assets, brands, objects, cfg.Storage.MaxAssetSize, recorder, logger)
}
