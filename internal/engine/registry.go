package engine

import (
	"log/slog"
	"sync"

	"github.com/barterly/barterly-server/internal/clock"
)

// Registry hands out per-user controllers. One controller owns one user's
// cycle state for the lifetime of the process.
type Registry struct {
	sessions  SessionDirectory
	pools     PoolBuilder
	swipes    SwipeHandler
	clk       clock.Clock
	poolLimit int
	logger    *slog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry creates a controller registry.
func NewRegistry(sessions SessionDirectory, pools PoolBuilder, swipes SwipeHandler, clk clock.Clock, poolLimit int, logger *slog.Logger) *Registry {
	return &Registry{
		sessions:    sessions,
		pools:       pools,
		swipes:      swipes,
		clk:         clk,
		poolLimit:   poolLimit,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
}

// For returns the controller for userID, creating it on first use.
func (r *Registry) For(userID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[userID]; ok {
		return c
	}

	c := NewController(userID, r.sessions, r.pools, r.swipes, r.clk, r.poolLimit, r.logger)
	r.controllers[userID] = c
	return c
}
