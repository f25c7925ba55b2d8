package persistence

import (
	"context"
	"errors"
	"time"

	apperrors "social-campaign-backend/internal/errors"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ============================================================================
// RESILIENT STORE - retries with backoff behind a circuit breaker
// ============================================================================

// RetryConfig configures retries of transient store failures.
type RetryConfig struct {
	MaxAttempts    uint
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFactor   float64
	MaxElapsedTime time.Duration
}

// DefaultRetryConfig returns the retry settings used when none are configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		InitialDelay:   50 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFactor:   0.2,
		MaxElapsedTime: 10 * time.Second,
	}
}

// BreakerConfig configures the circuit breaker around the store.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are
// configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "store",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      10,
	}
}

// ResilienceObserver receives retry and breaker events, typically the
// metrics collector.
type ResilienceObserver interface {
	RecordRetry(operation string)
	RecordBreakerState(name string, state int)
}

// ResilientStore decorates a Store. Transient failures are retried with
// exponential backoff; when retries are exhausted or the breaker is open
// the caller sees an UNAVAILABLE error. Any other failure is INTERNAL, and
// condition failures pass through untouched for the repository to classify.
type ResilientStore struct {
	inner    Store
	retry    RetryConfig
	breaker  *gobreaker.CircuitBreaker
	observer ResilienceObserver
	logger   *zap.Logger
}

// NewResilientStore wraps inner. observer may be nil.
func NewResilientStore(inner Store, retry RetryConfig, cb BreakerConfig, observer ResilienceObserver, logger *zap.Logger) *ResilientStore {
	logger = logger.Named("resilient_store")
	s := &ResilientStore{inner: inner, retry: retry, observer: observer, logger: logger}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cb.Name,
		MaxRequests: cb.MaxRequests,
		Interval:    cb.Interval,
		Timeout:     cb.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cb.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cb.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if observer != nil {
				observer.RecordBreakerState(name, int(to))
			}
		},
		// Only infrastructure trouble counts against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
	})
	return s
}

func (s *ResilientStore) Get(ctx context.Context, key Key) (Item, error) {
	return do(ctx, s, "get", func() (Item, error) { return s.inner.Get(ctx, key) })
}

func (s *ResilientStore) Put(ctx context.Context, item Item, cond Condition) error {
	_, err := do(ctx, s, "put", func() (struct{}, error) { return struct{}{}, s.inner.Put(ctx, item, cond) })
	return err
}

func (s *ResilientStore) Update(ctx context.Context, key Key, update Update, cond Condition) error {
	_, err := do(ctx, s, "update", func() (struct{}, error) { return struct{}{}, s.inner.Update(ctx, key, update, cond) })
	return err
}

func (s *ResilientStore) Delete(ctx context.Context, key Key, cond Condition) error {
	_, err := do(ctx, s, "delete", func() (struct{}, error) { return struct{}{}, s.inner.Delete(ctx, key, cond) })
	return err
}

func (s *ResilientStore) Query(ctx context.Context, query Query) (*QueryResult, error) {
	return do(ctx, s, "query", func() (*QueryResult, error) { return s.inner.Query(ctx, query) })
}

func (s *ResilientStore) BatchGet(ctx context.Context, keys []Key) ([]Item, error) {
	return do(ctx, s, "batch_get", func() ([]Item, error) { return s.inner.BatchGet(ctx, keys) })
}

// do runs one store call through the breaker and the retry loop.
//
// A retried conditional write whose first attempt landed fails its own
// condition. Repositories re-read the item and recognise their own write.
func do[T any](ctx context.Context, s *ResilientStore, operation string, fn func() (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		if attempt > 1 && s.observer != nil {
			s.observer.RecordRetry(operation)
		}

		out, err := s.breaker.Execute(func() (interface{}, error) {
			return fn()
		})
		if err == nil {
			return out.(T), nil
		}

		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, backoff.Permanent(err)
		}
		if !IsTransient(err) {
			return zero, backoff.Permanent(err)
		}
		return zero, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialDelay
	b.MaxInterval = s.retry.MaxDelay
	b.Multiplier = s.retry.Multiplier
	b.RandomizationFactor = s.retry.JitterFactor

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(max(s.retry.MaxAttempts, 1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			s.logger.Debug("retrying store operation",
				zap.String("operation", operation),
				zap.Duration("wait", wait),
				zap.Error(err))
		}),
	}
	if s.retry.MaxElapsedTime > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(s.retry.MaxElapsedTime))
	}

	out, err := backoff.Retry(ctx, op, opts...)
	if err == nil {
		return out, nil
	}

	var zero T
	switch {
	case errors.Is(err, ErrConditionFailed):
		return zero, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return zero, apperrors.NewUnavailable("storage is temporarily unavailable", err)
	case IsTransient(err):
		s.logger.Warn("store operation failed after retries",
			zap.String("operation", operation),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return zero, apperrors.NewUnavailable("storage is temporarily unavailable", err)
	case errors.Is(err, context.Canceled):
		return zero, err
	}
	return zero, apperrors.NewInternal("storage "+operation+" failed", err)
}
