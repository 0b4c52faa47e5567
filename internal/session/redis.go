package session

import (
	"context"
	"errors"
	"time"

	"okoa/internal/domain"
	"okoa/pkg/cache"
	pkgerrors "okoa/pkg/errors"
)

const keyPrefix = "loanapp:"

// RedisStore keeps aggregates in Redis with a TTL, so abandoned
// applications expire on their own.
type RedisStore struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

func NewRedisStore(c *cache.RedisCache, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*domain.LoanApplication, error) {
	var app domain.LoanApplication
	if err := s.cache.Get(ctx, keyPrefix+sessionID, &app); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, pkgerrors.ErrApplicationNotFound
		}
		return nil, pkgerrors.Wrap(err, "failed to load loan application")
	}

	// Reads slide the expiry, so an active funnel is not cut off mid-stage.
	_ = s.cache.Expire(ctx, keyPrefix+sessionID, s.ttl)

	return &app, nil
}

func (s *RedisStore) Merge(ctx context.Context, sessionID string, patch domain.ApplicationPatch) (*domain.LoanApplication, error) {
	app, err := s.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrApplicationNotFound) {
			return nil, err
		}
		app = &domain.LoanApplication{}
	}

	patch.Apply(app)

	// The merged aggregate is written in one SET, so readers only ever see
	// complete states.
	if err := s.cache.Set(ctx, keyPrefix+sessionID, app, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to store loan application")
	}
	return app, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, keyPrefix+sessionID); err != nil {
		return pkgerrors.Wrap(err, "failed to clear loan application")
	}
	return nil
}
