// Package engine drives the swipe matching session lifecycle. A Controller
// owns one user's anchor selection: the loading-phase state machine, the
// published candidate pool, and the swipe flow against the active session.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
	"github.com/barterly/barterly-server/internal/service"
)

// ExtendedLoadingThreshold is how long a cycle may sit in a non-terminal
// phase before the extended-loading indicator activates.
const ExtendedLoadingThreshold = 5 * time.Second

// User-facing error copy. The phase machine stores exactly one of these per
// failed cycle; the underlying error goes to the log, not the client.
const (
	msgSessionCreateFailed = "Failed to create swipe session. Please try again."
	msgNetworkError        = "Network error. Please check your connection and try again."
	msgItemLoadFailed      = "Failed to load items. Please try again."
)

// SessionDirectory is the slice of the session service the engine needs.
type SessionDirectory interface {
	Create(ctx context.Context, userID, anchorItemID string) (*domain.SwipeSession, error)
	Get(ctx context.Context, sessionID, userID string) (*domain.SwipeSession, error)
	History(ctx context.Context, sessionID, userID string) ([]domain.SwipeEntry, error)
}

// PoolBuilder assembles a candidate pool for a user minus an exclusion set.
type PoolBuilder interface {
	Build(ctx context.Context, userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error)
}

// SwipeHandler records one decision and runs the right-swipe offer pipeline.
type SwipeHandler interface {
	HandleSwipe(ctx context.Context, sessionID, userID, itemID string, direction domain.SwipeDirection) (*service.SwipeResult, error)
}

// Controller runs the anchor-selection cycle for a single user. All methods
// are safe for concurrent use; a new SelectAnchor supersedes any cycle still
// in flight and its late results are dropped.
type Controller struct {
	userID   string
	sessions SessionDirectory
	pools    PoolBuilder
	swipes   SwipeHandler
	clk      clock.Clock
	logger   *slog.Logger

	poolLimit int

	mu              sync.Mutex
	phase           domain.LoadingPhase
	epoch           uint64
	anchorItemID    string
	session         *domain.SwipeSession
	pool            []*domain.Item
	errorMessage    string
	extendedLoading bool
	loadingTimer    clock.Timer
	loadingDone     chan struct{}
}

// NewController creates a controller for one user. poolLimit <= 0 uses the
// service default.
func NewController(userID string, sessions SessionDirectory, pools PoolBuilder, swipes SwipeHandler, clk clock.Clock, poolLimit int, logger *slog.Logger) *Controller {
	if poolLimit <= 0 {
		poolLimit = service.DefaultPoolLimit
	}
	return &Controller{
		userID:    userID,
		sessions:  sessions,
		pools:     pools,
		swipes:    swipes,
		clk:       clk,
		poolLimit: poolLimit,
		logger:    logger.With("user_id", userID),
		phase:     domain.PhaseIdle,
	}
}

// Snapshot is the externally visible controller state.
type Snapshot struct {
	Phase           domain.LoadingPhase `json:"phase"`
	AnchorItemID    string              `json:"anchor_item_id,omitempty"`
	SessionID       string              `json:"session_id,omitempty"`
	Pool            []*domain.Item      `json:"pool,omitempty"`
	ExtendedLoading bool                `json:"extended_loading"`
	ErrorMessage    string              `json:"error_message,omitempty"`
}

// State returns the current snapshot.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	pool := make([]*domain.Item, len(c.pool))
	copy(pool, c.pool)

	snap := Snapshot{
		Phase:           c.phase,
		AnchorItemID:    c.anchorItemID,
		Pool:            pool,
		ExtendedLoading: c.extendedLoading,
		ErrorMessage:    c.errorMessage,
	}
	if c.session != nil {
		snap.SessionID = c.session.ID
	}
	return snap
}

// SelectAnchor starts a fresh cycle for anchorItemID. Any cycle in flight is
// superseded: its timers are stopped and its late results dropped. The
// returned snapshot is either the complete pool or the error state.
func (c *Controller) SelectAnchor(ctx context.Context, anchorItemID string) (Snapshot, error) {
	epoch := c.beginCycle(anchorItemID)

	session, err := c.sessions.Create(ctx, c.userID, anchorItemID)
	if err != nil {
		return c.fail(epoch, msgSessionCreateFailed, err)
	}

	// History is fetched while still in creating-session, so loading-items
	// strictly means pool construction.
	history, err := c.sessions.History(ctx, session.ID, c.userID)
	if err != nil {
		return c.fail(epoch, msgSessionCreateFailed, err)
	}

	exclude := make(map[string]struct{}, len(history))
	for _, entry := range history {
		exclude[entry.ItemID] = struct{}{}
	}

	if !c.advance(epoch, domain.PhaseLoadingItems) {
		return Snapshot{}, errSuperseded(anchorItemID)
	}

	pool, err := c.pools.Build(ctx, c.userID, exclude, c.poolLimit)
	if err != nil {
		if errors.Transient(err) {
			return c.fail(epoch, msgNetworkError, err)
		}
		return c.fail(epoch, msgItemLoadFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return Snapshot{}, errSuperseded(anchorItemID)
	}

	c.session = session
	c.pool = pool
	c.setPhaseLocked(domain.PhaseComplete)
	c.clearLoadingIndicatorLocked()

	c.logger.Info("anchor cycle complete",
		"anchor_item_id", anchorItemID,
		"session_id", session.ID,
		"pool_size", len(pool))

	return c.snapshotLocked(), nil
}

// Swipe handles one decision against the published pool. The swiped item is
// removed and the pool topped up with the updated exclusion set. Offer
// pipeline failures surface as the returned error while the swipe record and
// the cycle stay intact.
func (c *Controller) Swipe(ctx context.Context, itemID string, direction domain.SwipeDirection) (*service.SwipeResult, Snapshot, error) {
	c.mu.Lock()
	if c.phase != domain.PhaseComplete || c.session == nil {
		c.mu.Unlock()
		return nil, Snapshot{}, errors.Conflict("no active swipe session; select an anchor first")
	}
	epoch := c.epoch
	sessionID := c.session.ID
	c.mu.Unlock()

	result, err := c.swipes.HandleSwipe(ctx, sessionID, c.userID, itemID, direction)
	if err != nil && result == nil {
		return nil, c.State(), err
	}

	// Reload the session and reapply the exclusion so the pool can top up
	// with history plus the new swipe.
	session, sessErr := c.sessions.Get(ctx, sessionID, c.userID)
	if sessErr != nil {
		return result, c.State(), sessErr
	}

	pool, poolErr := c.pools.Build(ctx, c.userID, session.SwipedItemIDs(), c.poolLimit)

	c.mu.Lock()
	if c.epoch == epoch {
		c.session = session
		if poolErr == nil {
			c.pool = pool
		} else {
			c.removeFromPoolLocked(itemID)
			c.logger.Warn("pool top-up failed after swipe", "error", poolErr)
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	// err carries a possible offer-pipeline failure with the swipe recorded.
	return result, snap, err
}

// Reset returns the controller to idle, dropping any selection.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.resetLocked()
	c.phase = domain.PhaseIdle
}

// beginCycle supersedes any in-flight cycle and enters creating-session.
func (c *Controller) beginCycle(anchorItemID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.resetLocked()
	c.phase = domain.PhaseIdle
	c.setPhaseLocked(domain.PhaseCreatingSession)
	c.anchorItemID = anchorItemID

	timer := c.clk.NewTimer(ExtendedLoadingThreshold)
	done := make(chan struct{})
	c.loadingTimer = timer
	c.loadingDone = done
	go c.watchExtendedLoading(c.epoch, timer, done)

	return c.epoch
}

// watchExtendedLoading flips the indicator if the cycle is still in a
// non-terminal phase when the threshold timer fires. done releases the
// watcher when the cycle finishes before the threshold.
func (c *Controller) watchExtendedLoading(epoch uint64, timer clock.Timer, done <-chan struct{}) {
	select {
	case <-timer.C():
	case <-done:
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.phase.Terminal() {
		return
	}
	c.extendedLoading = true
	c.logger.Info("extended loading", "phase", string(c.phase), "anchor_item_id", c.anchorItemID)
}

// advance moves the cycle to next unless it was superseded.
func (c *Controller) advance(epoch uint64, next domain.LoadingPhase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.setPhaseLocked(next)
	return true
}

// fail records the error state for the cycle and returns the snapshot plus
// the underlying error. Partial state is reset so a retry restarts cleanly.
func (c *Controller) fail(epoch uint64, message string, cause error) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return Snapshot{}, errSuperseded(c.anchorItemID)
	}

	c.logger.Error("anchor cycle failed",
		"phase", string(c.phase),
		"message", message,
		"error", cause)

	c.setPhaseLocked(domain.PhaseError)
	c.errorMessage = message
	c.anchorItemID = ""
	c.session = nil
	c.pool = nil
	c.clearLoadingIndicatorLocked()

	return c.snapshotLocked(), cause
}

// removeFromPoolLocked splices one item out of the published pool. Caller
// holds c.mu.
func (c *Controller) removeFromPoolLocked(itemID string) {
	for i, item := range c.pool {
		if item.ID == itemID {
			c.pool = append(c.pool[:i], c.pool[i+1:]...)
			return
		}
	}
}

// resetLocked clears all per-cycle state. Caller holds c.mu.
func (c *Controller) resetLocked() {
	c.anchorItemID = ""
	c.session = nil
	c.pool = nil
	c.errorMessage = ""
	c.clearLoadingIndicatorLocked()
}

func (c *Controller) clearLoadingIndicatorLocked() {
	c.extendedLoading = false
	if c.loadingTimer != nil {
		c.loadingTimer.Stop()
		c.loadingTimer = nil
	}
	if c.loadingDone != nil {
		close(c.loadingDone)
		c.loadingDone = nil
	}
}

// setPhaseLocked applies a transition, enforcing the phase table. Caller
// holds c.mu. An illegal transition indicates a controller bug; it is logged
// and applied anyway so the machine cannot wedge.
func (c *Controller) setPhaseLocked(next domain.LoadingPhase) {
	if !c.phase.CanTransition(next) {
		c.logger.Error("illegal phase transition",
			"from", string(c.phase),
			"to", string(next))
	}
	c.phase = next
}

func errSuperseded(anchorItemID string) error {
	return errors.Conflictf("anchor selection for %s was superseded", anchorItemID)
}
