// Package config holds the service configuration and loads it from layered
// YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
	Test        Environment = "test"
)

// IsValid reports whether e is a known environment.
func (e Environment) IsValid() bool {
	switch e {
	case Development, Staging, Production, Test:
		return true
	}
	return false
}

// Config is the complete service configuration.
type Config struct {
	Environment    Environment    `yaml:"environment" json:"environment"`
	AWS            AWS            `yaml:"aws" json:"aws"`
	Database       Database       `yaml:"database" json:"database"`
	Events         Events         `yaml:"events" json:"events"`
	Storage        Storage        `yaml:"storage" json:"storage"`
	Pagination     Pagination     `yaml:"pagination" json:"pagination"`
	Retry          Retry          `yaml:"retry" json:"retry"`
	CircuitBreaker CircuitBreaker `yaml:"circuitBreaker" json:"circuitBreaker"`
	Logging        Logging        `yaml:"logging" json:"logging"`
	Metrics        Metrics        `yaml:"metrics" json:"metrics"`
	Tracing        Tracing        `yaml:"tracing" json:"tracing"`
	Identity       Identity       `yaml:"identity" json:"identity"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-" json:"loadedFrom"`
}

type AWS struct {
	Region string `yaml:"region" json:"region"`
	// Endpoint overrides every service endpoint, e.g. for LocalStack.
	Endpoint string `yaml:"endpoint" json:"endpoint"`
}

type Database struct {
	TableName      string        `yaml:"tableName" json:"tableName"`
	ConsistentRead bool          `yaml:"consistentRead" json:"consistentRead"`
	ArchiveTTL     time.Duration `yaml:"archiveTTL" json:"archiveTTL"`
	// MaxConflictRetries bounds retries of unversioned read-modify-write
	// updates that lose a race.
	MaxConflictRetries int `yaml:"maxConflictRetries" json:"maxConflictRetries"`
}

type Events struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	EventBusName string `yaml:"eventBusName" json:"eventBusName"`
	Source       string `yaml:"source" json:"source"`
}

type Storage struct {
	AssetBucket string `yaml:"assetBucket" json:"assetBucket"`
	// MaxAssetSize is the largest accepted upload in bytes.
	MaxAssetSize int64 `yaml:"maxAssetSize" json:"maxAssetSize"`
}

type Pagination struct {
	// CursorSecret signs pagination cursors. Rotating it invalidates every
	// outstanding cursor.
	CursorSecret string `yaml:"cursorSecret" json:"-"`
}

type Retry struct {
	MaxAttempts    uint          `yaml:"maxAttempts" json:"maxAttempts"`
	InitialDelay   time.Duration `yaml:"initialDelay" json:"initialDelay"`
	MaxDelay       time.Duration `yaml:"maxDelay" json:"maxDelay"`
	Multiplier     float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor   float64       `yaml:"jitterFactor" json:"jitterFactor"`
	MaxElapsedTime time.Duration `yaml:"maxElapsedTime" json:"maxElapsedTime"`
}

type CircuitBreaker struct {
	MaxRequests      uint32        `yaml:"maxRequests" json:"maxRequests"`
	Interval         time.Duration `yaml:"interval" json:"interval"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	FailureThreshold float64       `yaml:"failureThreshold" json:"failureThreshold"`
	MinRequests      uint32        `yaml:"minRequests" json:"minRequests"`
}

type Logging struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

type Tracing struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	ServiceName string  `yaml:"serviceName" json:"serviceName"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	SampleRate  float64 `yaml:"sampleRate" json:"sampleRate"`
}

type Identity struct {
	SupabaseURL string `yaml:"supabaseUrl" json:"supabaseUrl"`
	SupabaseKey string `yaml:"supabaseKey" json:"-"`
}

// Validate checks the configuration for values the service cannot run with.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if !c.Environment.IsValid() {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if c.Database.TableName == "" {
		errs = append(errs, errors.New("database.tableName is required"))
	}
	if c.Database.ArchiveTTL <= 0 {
		errs = append(errs, errors.New("database.archiveTTL must be positive"))
	}
	if c.Database.MaxConflictRetries < 1 {
		errs = append(errs, errors.New("database.maxConflictRetries must be at least 1"))
	}
	if c.Storage.MaxAssetSize <= 0 {
		errs = append(errs, errors.New("storage.maxAssetSize must be positive"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry.maxAttempts must be at least 1"))
	}
	if c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry.multiplier must be at least 1"))
	}
	if c.CircuitBreaker.FailureThreshold <= 0 || c.CircuitBreaker.FailureThreshold > 1 {
		errs = append(errs, errors.New("circuitBreaker.failureThreshold must be in (0, 1]"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, errors.New("tracing.sampleRate must be in [0, 1]"))
	}
	if c.Events.Enabled && c.Events.EventBusName == "" {
		errs = append(errs, errors.New("events.eventBusName is required when events are enabled"))
	}
	if c.Environment == Production {
		if len(c.Pagination.CursorSecret) < 32 {
			errs = append(errs, errors.New("pagination.cursorSecret must be at least 32 bytes in production"))
		}
		if c.Storage.AssetBucket == "" {
			errs = append(errs, errors.New("storage.assetBucket is required in production"))
		}
		if c.Identity.SupabaseURL == "" {
			errs = append(errs, errors.New("identity.supabaseUrl is required in production"))
		}
	}
	return errors.Join(errs...)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// getEnvironment reads ENVIRONMENT, defaulting to development.
func getEnvironment() Environment {
	env := Environment(strings.ToLower(os.Getenv("ENVIRONMENT")))
	if !env.IsValid() {
		return Development
	}
	return env
}
