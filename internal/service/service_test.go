package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/store"
)

// testEnv wires real services over a temporary store with a fake clock.
type testEnv struct {
	store         *store.Store
	clk           *clock.Fake
	sessions      *SessionService
	pools         *PoolService
	offers        *OfferService
	swipes        *SwipeService
	items         *ItemService
	notifications *NotificationService
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	clk := clock.NewFake()
	logger := slog.New(slog.DiscardHandler)

	sessions := NewSessionService(st, clk, logger)
	pools := NewPoolService(st, clk, logger)
	offers := NewOfferService(st, nil, clk, logger)
	swipes := NewSwipeService(sessions, offers, logger)
	items := NewItemService(st, nil, clk, logger)
	notifications := NewNotificationService(st, clk, logger)

	env := &testEnv{
		store:         st,
		clk:           clk,
		sessions:      sessions,
		pools:         pools,
		offers:        offers,
		swipes:        swipes,
		items:         items,
		notifications: notifications,
	}

	cleanup := func() {
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return env, cleanup
}

// seedUser creates a user profile directly in the store.
func (e *testEnv) seedUser(t *testing.T, id, name string) *domain.User {
	t.Helper()
	user := domain.NewUser(id, name)
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

// seedItem creates an available listing directly in the store.
func (e *testEnv) seedItem(t *testing.T, id, ownerID, title string) *domain.Item {
	t.Helper()
	item := domain.NewItem(id, ownerID, title)
	require.NoError(t, e.store.CreateItem(context.Background(), item))
	return item
}
