package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// CONFIGURATION LOADER
// ============================================================================

// Loader reads configuration from layered sources.
type Loader struct {
	basePath    string
	environment Environment
	getenv      func(string) string
	sources     []string
}

// NewLoader creates a loader reading files from basePath.
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		environment: env,
		getenv:      os.Getenv,
	}
}

// Load builds the configuration. Sources, lowest priority first:
//  1. defaults
//  2. base.yaml
//  3. {environment}.yaml
//  4. local.yaml (development only)
//  5. environment variables
func (l *Loader) Load() (*Config, error) {
	l.sources = l.sources[:0]
	cfg := Defaults(l.environment)
	l.sources = append(l.sources, "defaults")

	files := []string{"base", string(l.environment)}
	if l.environment == Development {
		files = append(files, "local")
	}
	for _, name := range files {
		if err := l.loadFile(name, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s config: %w", name, err)
		}
	}

	if err := l.loadEnvironmentVariables(cfg); err != nil {
		return nil, err
	}
	l.sources = append(l.sources, "environment")

	// The environment is fixed by the loader, files cannot change it.
	cfg.Environment = l.environment
	cfg.LoadedFrom = append([]string(nil), l.sources...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, ext := range []string{"yaml", "yml"} {
		path := filepath.Join(l.basePath, name+"."+ext)
		file, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		err = decodeYAML(file, cfg)
		file.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		l.sources = append(l.sources, path)
		return nil
	}
	return os.ErrNotExist
}

// decodeYAML overlays the document in r on cfg. An empty file is not an
// error.
func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// envBinding maps one environment variable onto a config field.
type envBinding struct {
	name  string
	apply func(cfg *Config, value string) error
}

func (l *Loader) loadEnvironmentVariables(cfg *Config) error {
	var errs []error
	for _, b := range envBindings {
		val := l.getenv(b.name)
		if val == "" {
			continue
		}
		if err := b.apply(cfg, val); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

var envBindings = []envBinding{
	{"AWS_REGION", setString(func(c *Config) *string { return &c.AWS.Region })},
	{"AWS_ENDPOINT_URL", setString(func(c *Config) *string { return &c.AWS.Endpoint })},
	{"TABLE_NAME", setString(func(c *Config) *string { return &c.Database.TableName })},
	{"CONSISTENT_READ", setBool(func(c *Config) *bool { return &c.Database.ConsistentRead })},
	{"ARCHIVE_TTL", setDuration(func(c *Config) *time.Duration { return &c.Database.ArchiveTTL })},
	{"EVENTS_ENABLED", setBool(func(c *Config) *bool { return &c.Events.Enabled })},
	{"EVENT_BUS_NAME", setString(func(c *Config) *string { return &c.Events.EventBusName })},
	{"ASSET_BUCKET", setString(func(c *Config) *string { return &c.Storage.AssetBucket })},
	{"CURSOR_SECRET", setString(func(c *Config) *string { return &c.Pagination.CursorSecret })},
	{"LOG_LEVEL", setString(func(c *Config) *string { return &c.Logging.Level })},
	{"LOG_FORMAT", setString(func(c *Config) *string { return &c.Logging.Format })},
	{"ENABLE_METRICS", setBool(func(c *Config) *bool { return &c.Metrics.Enabled })},
	{"ENABLE_TRACING", setBool(func(c *Config) *bool { return &c.Tracing.Enabled })},
	{"OTEL_EXPORTER_OTLP_ENDPOINT", setString(func(c *Config) *string { return &c.Tracing.Endpoint })},
	{"SUPABASE_URL", setString(func(c *Config) *string { return &c.Identity.SupabaseURL })},
	{"SUPABASE_SERVICE_KEY", setString(func(c *Config) *string { return &c.Identity.SupabaseKey })},
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func setDuration(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// Defaults returns a configuration the service can run with locally.
func Defaults(env Environment) *Config {
	logFormat := "json"
	if env == Development {
		logFormat = "console"
	}
	return &Config{
		Environment: env,
		AWS: AWS{
			Region: "us-east-1",
		},
		Database: Database{
			TableName:          "social-campaigns-" + strings.ToLower(string(env)),
			ArchiveTTL:         30 * 24 * time.Hour,
			MaxConflictRetries: 3,
		},
		Events: Events{
			Enabled:      true,
			EventBusName: "default",
			Source:       "social-campaign-backend",
		},
		Storage: Storage{
			AssetBucket:  "social-campaign-assets-" + strings.ToLower(string(env)),
			MaxAssetSize: 25 << 20,
		},
		Pagination: Pagination{
			CursorSecret: "development-cursor-secret",
		},
		Retry: Retry{
			MaxAttempts:    4,
			InitialDelay:   50 * time.Millisecond,
			MaxDelay:       2 * time.Second,
			Multiplier:     2.0,
			JitterFactor:   0.2,
			MaxElapsedTime: 10 * time.Second,
		},
		CircuitBreaker: CircuitBreaker{
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      10,
		},
		Logging: Logging{
			Level:  "info",
			Format: logFormat,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "social_campaigns",
		},
		Tracing: Tracing{
			ServiceName: "social-campaign-backend",
			Endpoint:    "localhost:4317",
			SampleRate:  0.1,
		},
	}
}

// Load reads the configuration for the environment named by ENVIRONMENT
// from the directory named by CONFIG_DIR.
func Load() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_DIR"), getEnvironment()).Load()
}

// MustLoad is Load for main functions.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
