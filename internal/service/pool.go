package service

import (
	"context"
	"log/slog"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/retry"
	"github.com/barterly/barterly-server/internal/store"
)

// DefaultPoolLimit caps a swipe pool when the caller doesn't specify one.
const DefaultPoolLimit = 50

// PoolService builds deduplicated candidate pools for swiping. Given the same
// session history and an unchanged catalog, Build returns the same pool:
// candidates come back in store key order and filtering is pure.
type PoolService struct {
	store     *store.Store
	clk       clock.Clock
	retryOpts retry.Options
	logger    *slog.Logger
}

// NewPoolService creates a pool service.
func NewPoolService(store *store.Store, clk clock.Clock, logger *slog.Logger) *PoolService {
	return &PoolService{
		store:  store,
		clk:    clk,
		logger: logger,
	}
}

// Build assembles a candidate pool for userID. Excluded from the pool:
// every item id in exclude (the session's swipe history), the user's own
// listings, and anything not currently available. The result is truncated
// to limit. Topping up after a swipe is the same call with the new swipe
// added to exclude.
func (s *PoolService) Build(ctx context.Context, userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
	if limit <= 0 {
		limit = DefaultPoolLimit
	}

	// Fetch the full available superset and filter in memory. The status
	// index makes this a key-order scan; filtering afterwards keeps the
	// exclusion semantics in one place.
	candidates, err := retry.Do(ctx, s.clk, func(ctx context.Context) ([]*domain.Item, error) {
		return s.store.ListAvailableItems(ctx, 0)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}

	pool := make([]*domain.Item, 0, limit)
	for _, item := range candidates {
		if len(pool) >= limit {
			break
		}
		if item.OwnerID == userID {
			continue
		}
		if !item.Tradeable() {
			continue
		}
		if _, swiped := exclude[item.ID]; swiped {
			continue
		}
		pool = append(pool, item)
	}

	s.logger.Debug("pool built",
		"user_id", userID,
		"candidates", len(candidates),
		"excluded", len(exclude),
		"pool_size", len(pool))

	return pool, nil
}
