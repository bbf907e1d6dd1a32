package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
	"github.com/barterly/barterly-server/internal/service"
)

type sessionStub struct {
	createFn  func(userID, anchorItemID string) (*domain.SwipeSession, error)
	getFn     func(sessionID, userID string) (*domain.SwipeSession, error)
	historyFn func(sessionID, userID string) ([]domain.SwipeEntry, error)
}

func (s *sessionStub) Create(_ context.Context, userID, anchorItemID string) (*domain.SwipeSession, error) {
	return s.createFn(userID, anchorItemID)
}

func (s *sessionStub) Get(_ context.Context, sessionID, userID string) (*domain.SwipeSession, error) {
	return s.getFn(sessionID, userID)
}

func (s *sessionStub) History(_ context.Context, sessionID, userID string) ([]domain.SwipeEntry, error) {
	return s.historyFn(sessionID, userID)
}

type poolStub struct {
	buildFn func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error)
}

func (p *poolStub) Build(_ context.Context, userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
	return p.buildFn(userID, exclude, limit)
}

type swipeStub struct {
	handleFn func(sessionID, userID, itemID string, direction domain.SwipeDirection) (*service.SwipeResult, error)
}

func (s *swipeStub) HandleSwipe(_ context.Context, sessionID, userID, itemID string, direction domain.SwipeDirection) (*service.SwipeResult, error) {
	return s.handleFn(sessionID, userID, itemID, direction)
}

type ctrlEnv struct {
	clk      *clock.Fake
	sessions *sessionStub
	pools    *poolStub
	swipes   *swipeStub
	ctrl     *Controller

	mu      sync.Mutex
	session *domain.SwipeSession
}

func poolItems(ids ...string) []*domain.Item {
	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, &domain.Item{ID: id, OwnerID: "user-other", Title: "Item " + id, Status: domain.ItemStatusAvailable})
	}
	return items
}

// newCtrlEnv wires a controller against stubs that behave like a healthy
// backend: sessions are created and tracked, pools exclude swiped items.
func newCtrlEnv(t *testing.T) *ctrlEnv {
	t.Helper()

	env := &ctrlEnv{clk: clock.NewFake()}

	env.sessions = &sessionStub{
		createFn: func(userID, anchorItemID string) (*domain.SwipeSession, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.session = domain.NewSwipeSession("swipe-1", userID, anchorItemID)
			return env.session, nil
		},
		getFn: func(sessionID, userID string) (*domain.SwipeSession, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			if env.session == nil || env.session.ID != sessionID {
				return nil, errors.NotFoundf("swipe session %s not found", sessionID)
			}
			return env.session, nil
		},
		historyFn: func(sessionID, userID string) ([]domain.SwipeEntry, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			if env.session == nil {
				return nil, nil
			}
			return env.session.Swipes, nil
		},
	}

	env.pools = &poolStub{
		buildFn: func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
			pool := make([]*domain.Item, 0)
			for _, item := range poolItems("c1", "c2", "c3") {
				if _, swiped := exclude[item.ID]; !swiped {
					pool = append(pool, item)
				}
			}
			return pool, nil
		},
	}

	env.swipes = &swipeStub{
		handleFn: func(sessionID, userID, itemID string, direction domain.SwipeDirection) (*service.SwipeResult, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			entry := env.session.RecordSwipe(itemID, direction, env.clk.Now())
			return &service.SwipeResult{Entry: entry}, nil
		},
	}

	logger := slog.New(slog.DiscardHandler)
	env.ctrl = NewController("user-1", env.sessions, env.pools, env.swipes, env.clk, 10, logger)
	return env
}

func TestSelectAnchor_Complete(t *testing.T) {
	env := newCtrlEnv(t)

	snap, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseComplete, snap.Phase)
	assert.Equal(t, "item-anchor", snap.AnchorItemID)
	assert.Equal(t, "swipe-1", snap.SessionID)
	assert.Len(t, snap.Pool, 3)
	assert.False(t, snap.ExtendedLoading)
	assert.Empty(t, snap.ErrorMessage)
}

// TestSelectAnchor_PhaseOrder observes the machine from inside the backend
// calls: session work happens in creating-session, pool work in loading-items.
func TestSelectAnchor_PhaseOrder(t *testing.T) {
	env := newCtrlEnv(t)

	var observed []domain.LoadingPhase
	baseHistory := env.sessions.historyFn
	env.sessions.historyFn = func(sessionID, userID string) ([]domain.SwipeEntry, error) {
		observed = append(observed, env.ctrl.State().Phase)
		return baseHistory(sessionID, userID)
	}
	basePool := env.pools.buildFn
	env.pools.buildFn = func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
		observed = append(observed, env.ctrl.State().Phase)
		return basePool(userID, exclude, limit)
	}

	snap, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.NoError(t, err)

	assert.Equal(t, []domain.LoadingPhase{domain.PhaseCreatingSession, domain.PhaseLoadingItems}, observed)
	assert.Equal(t, domain.PhaseComplete, snap.Phase)
}

func TestSelectAnchor_SessionCreateFailure(t *testing.T) {
	env := newCtrlEnv(t)
	env.sessions.createFn = func(userID, anchorItemID string) (*domain.SwipeSession, error) {
		return nil, errors.Internal("session write rejected")
	}

	snap, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.Error(t, err)

	assert.Equal(t, domain.PhaseError, snap.Phase)
	assert.Equal(t, msgSessionCreateFailed, snap.ErrorMessage)
	assert.Empty(t, snap.AnchorItemID)
	assert.Empty(t, snap.SessionID)
	assert.Empty(t, snap.Pool)
}

func TestSelectAnchor_TransientLoadFailure(t *testing.T) {
	env := newCtrlEnv(t)
	env.pools.buildFn = func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
		return nil, errors.Unavailable("item store unreachable")
	}

	snap, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.Error(t, err)

	assert.Equal(t, domain.PhaseError, snap.Phase)
	assert.Equal(t, msgNetworkError, snap.ErrorMessage)
}

func TestSelectAnchor_LoadFailure(t *testing.T) {
	env := newCtrlEnv(t)
	env.pools.buildFn = func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
		return nil, errors.Internal("index corrupted")
	}

	snap, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.Error(t, err)

	assert.Equal(t, domain.PhaseError, snap.Phase)
	assert.Equal(t, msgItemLoadFailed, snap.ErrorMessage)
	assert.Empty(t, snap.Pool)
}

func TestSelectAnchor_ErrorThenRetrySucceeds(t *testing.T) {
	env := newCtrlEnv(t)

	fail := true
	basePool := env.pools.buildFn
	env.pools.buildFn = func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
		if fail {
			return nil, errors.Internal("index corrupted")
		}
		return basePool(userID, exclude, limit)
	}

	snap, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.Error(t, err)
	require.Equal(t, domain.PhaseError, snap.Phase)

	fail = false
	snap, err = env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseComplete, snap.Phase)
	assert.Empty(t, snap.ErrorMessage)
	assert.Len(t, snap.Pool, 3)
}

// TestSelectAnchor_SupersededDropsLateResult holds the first cycle's pool
// build open while a second anchor selection completes, then releases it and
// checks the stale result never lands.
func TestSelectAnchor_SupersededDropsLateResult(t *testing.T) {
	env := newCtrlEnv(t)

	firstEntered := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	var callMu sync.Mutex

	basePool := env.pools.buildFn
	env.pools.buildFn = func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
		callMu.Lock()
		calls++
		first := calls == 1
		callMu.Unlock()
		if first {
			close(firstEntered)
			<-release
			return poolItems("stale-1", "stale-2"), nil
		}
		return basePool(userID, exclude, limit)
	}

	sessionSeq := 0
	env.sessions.createFn = func(userID, anchorItemID string) (*domain.SwipeSession, error) {
		env.mu.Lock()
		defer env.mu.Unlock()
		sessionSeq++
		env.session = domain.NewSwipeSession(fmt.Sprintf("swipe-%d", sessionSeq), userID, anchorItemID)
		return env.session, nil
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := env.ctrl.SelectAnchor(context.Background(), "item-old")
		firstDone <- err
	}()
	<-firstEntered

	snap, err := env.ctrl.SelectAnchor(context.Background(), "item-new")
	require.NoError(t, err)
	assert.Equal(t, "item-new", snap.AnchorItemID)
	assert.Equal(t, "swipe-2", snap.SessionID)

	close(release)
	err = <-firstDone
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)

	// The stale pool never replaced the winner's.
	final := env.ctrl.State()
	assert.Equal(t, "item-new", final.AnchorItemID)
	assert.Equal(t, "swipe-2", final.SessionID)
	for _, item := range final.Pool {
		assert.NotContains(t, item.ID, "stale")
	}
}

func TestExtendedLoadingIndicator(t *testing.T) {
	env := newCtrlEnv(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	basePool := env.pools.buildFn
	env.pools.buildFn = func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
		close(entered)
		<-release
		return basePool(userID, exclude, limit)
	}

	done := make(chan Snapshot, 1)
	go func() {
		snap, _ := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
		done <- snap
	}()
	<-entered

	assert.False(t, env.ctrl.State().ExtendedLoading)

	env.clk.Advance(ExtendedLoadingThreshold)
	require.Eventually(t, func() bool {
		return env.ctrl.State().ExtendedLoading
	}, time.Second, 5*time.Millisecond)

	close(release)
	snap := <-done
	assert.Equal(t, domain.PhaseComplete, snap.Phase)
	assert.False(t, snap.ExtendedLoading, "indicator clears when the cycle finishes")
}

func TestExtendedLoading_FastCycleNeverFlags(t *testing.T) {
	env := newCtrlEnv(t)

	snap, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.NoError(t, err)
	require.Equal(t, domain.PhaseComplete, snap.Phase)

	// Threshold elapses after completion; the indicator must stay off.
	env.clk.Advance(ExtendedLoadingThreshold)
	assert.False(t, env.ctrl.State().ExtendedLoading)
}

// TestSelectAnchor_LoadingWatcherExits drives many anchor cycles and checks
// the threshold watchers do not outlive their cycles.
func TestSelectAnchor_LoadingWatcherExits(t *testing.T) {
	env := newCtrlEnv(t)

	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		_, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
		require.NoError(t, err)
	}

	assert.Zero(t, env.clk.PendingTimers())
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+3
	}, time.Second, 10*time.Millisecond)
}

func TestSwipe_RequiresActiveSession(t *testing.T) {
	env := newCtrlEnv(t)

	_, _, err := env.ctrl.Swipe(context.Background(), "c1", domain.SwipeLeft)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)
}

func TestSwipe_RemovesItemAndTopsUp(t *testing.T) {
	env := newCtrlEnv(t)

	_, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.NoError(t, err)

	result, snap, err := env.ctrl.Swipe(context.Background(), "c1", domain.SwipeLeft)
	require.NoError(t, err)
	assert.Equal(t, "c1", result.Entry.ItemID)

	ids := make([]string, 0, len(snap.Pool))
	for _, item := range snap.Pool {
		ids = append(ids, item.ID)
	}
	assert.ElementsMatch(t, []string{"c2", "c3"}, ids)
	assert.Equal(t, domain.PhaseComplete, snap.Phase)
}

func TestSwipe_PoolRebuildFailureDropsSwipedItem(t *testing.T) {
	env := newCtrlEnv(t)

	_, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.NoError(t, err)

	basePool := env.pools.buildFn
	env.pools.buildFn = func(userID string, exclude map[string]struct{}, limit int) ([]*domain.Item, error) {
		if len(exclude) > 0 {
			return nil, errors.Unavailable("item store unreachable")
		}
		return basePool(userID, exclude, limit)
	}

	_, snap, err := env.ctrl.Swipe(context.Background(), "c2", domain.SwipeLeft)
	require.NoError(t, err)

	// Cycle survives; the swiped item is gone even without a rebuild.
	assert.Equal(t, domain.PhaseComplete, snap.Phase)
	ids := make([]string, 0, len(snap.Pool))
	for _, item := range snap.Pool {
		ids = append(ids, item.ID)
	}
	assert.ElementsMatch(t, []string{"c1", "c3"}, ids)
}

func TestSwipe_OfferPipelineFailureKeepsCycle(t *testing.T) {
	env := newCtrlEnv(t)

	_, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.NoError(t, err)

	baseSwipe := env.swipes.handleFn
	env.swipes.handleFn = func(sessionID, userID, itemID string, direction domain.SwipeDirection) (*service.SwipeResult, error) {
		result, _ := baseSwipe(sessionID, userID, itemID, direction)
		return result, errors.Internal("offer write rejected")
	}

	result, snap, err := env.ctrl.Swipe(context.Background(), "c1", domain.SwipeRight)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "c1", result.Entry.ItemID)

	// The swipe stuck and the session stays usable.
	assert.Equal(t, domain.PhaseComplete, snap.Phase)
	assert.NotEmpty(t, snap.SessionID)
	for _, item := range snap.Pool {
		assert.NotEqual(t, "c1", item.ID)
	}
}

func TestReset_ReturnsToIdle(t *testing.T) {
	env := newCtrlEnv(t)

	_, err := env.ctrl.SelectAnchor(context.Background(), "item-anchor")
	require.NoError(t, err)

	env.ctrl.Reset()

	snap := env.ctrl.State()
	assert.Equal(t, domain.PhaseIdle, snap.Phase)
	assert.Empty(t, snap.AnchorItemID)
	assert.Empty(t, snap.SessionID)
	assert.Empty(t, snap.Pool)
	assert.Empty(t, snap.ErrorMessage)
}

func TestRegistry_OneControllerPerUser(t *testing.T) {
	env := newCtrlEnv(t)
	logger := slog.New(slog.DiscardHandler)
	reg := NewRegistry(env.sessions, env.pools, env.swipes, env.clk, 10, logger)

	a := reg.For("user-a")
	b := reg.For("user-b")
	assert.NotSame(t, a, b)
	assert.Same(t, a, reg.For("user-a"))
}
