// Package store wraps the gorm handle with error translation, a circuit breaker
// and a bounded retry for store unavailable failures.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"gorm.io/gorm"

	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

var breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{ //nolint:gochecknoglobals
	Namespace: "tigerarchive",
	Name:      "store_breaker_state",
	Help:      "Content store circuit breaker state, 0 closed, 1 half open, 2 open.",
}, []string{"name"})

// ErrNilDB is returned by New when no database handle is given.
var ErrNilDB = errors.New("database connection is nil")

// Store executes queries against the content store.
type Store struct {
	db       *gorm.DB
	breaker  *gobreaker.CircuitBreaker[struct{}]
	attempts int
	backoff  time.Duration
}

// New returns a Store for db configured by cfg.
func New(db *gorm.DB, cfg config.Store) (*Store, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:        "content-store",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// only availability failures count against the breaker
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, rbac.ErrStoreUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("content store circuit breaker changed state")
		},
	}

	return &Store{
		db:       db,
		breaker:  gobreaker.NewCircuitBreaker[struct{}](settings),
		attempts: attempts,
		backoff:  50 * time.Millisecond, //nolint:mnd
	}, nil
}

// DB returns the raw handle, for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Do runs fn with a context bound handle. Errors are translated into the rbac
// kinds. Only store unavailable failures are retried.
func (s *Store) Do(ctx context.Context, fn func(db *gorm.DB) error) error {
	var err error

	for attempt := 1; attempt <= s.attempts; attempt++ {
		_, err = s.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, Translate(fn(s.db.WithContext(ctx)))
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", rbac.ErrStoreUnavailable, err)
		}

		if !errors.Is(err, rbac.ErrStoreUnavailable) || attempt == s.attempts {
			return err
		}

		log.Debug().Err(err).Int("attempt", attempt).Msg("retrying content store call")

		select {
		case <-ctx.Done():
			return err
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}

	return err
}

// Transaction runs fn inside a database transaction through Do.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.Do(ctx, func(db *gorm.DB) error {
		return db.Transaction(fn)
	})
}

// Translate maps gorm and driver errors onto the rbac error kinds.
// Errors that already carry a kind pass through unchanged.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return rbac.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return rbac.NewValidationError("", "already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case rbac.KindOf(err) != rbac.KindInternal:
		return err
	}

	return fmt.Errorf("%w: %w", rbac.ErrStoreUnavailable, err)
}
