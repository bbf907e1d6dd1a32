package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/barterly/barterly-server/internal/domain"
)

func TestPoolBuild_ExcludesOwnSwipedAndUnavailable(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()

	env.seedItem(t, "item-mine", "user-1", "My Camera")
	env.seedItem(t, "item-swiped", "user-2", "Lens")
	env.seedItem(t, "item-fresh", "user-3", "Tripod")

	withdrawn := env.seedItem(t, "item-withdrawn", "user-4", "Flash")
	withdrawn.Status = domain.ItemStatusWithdrawn
	require.NoError(t, env.store.UpdateItem(ctx, withdrawn))

	exclude := map[string]struct{}{"item-swiped": {}}

	pool, err := env.pools.Build(ctx, "user-1", exclude, 10)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "item-fresh", pool[0].ID)
}

func TestPoolBuild_Truncation(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 8; i++ {
		env.seedItem(t, fmt.Sprintf("item-%d", i), "user-2", fmt.Sprintf("Item %d", i))
	}

	pool, err := env.pools.Build(ctx, "user-1", nil, 5)
	require.NoError(t, err)
	assert.Len(t, pool, 5)
}

func TestPoolBuild_DeterministicForSameHistory(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		env.seedItem(t, fmt.Sprintf("item-%d", i), "user-2", fmt.Sprintf("Item %d", i))
	}

	exclude := map[string]struct{}{"item-2": {}, "item-4": {}}

	first, err := env.pools.Build(ctx, "user-1", exclude, 10)
	require.NoError(t, err)
	second, err := env.pools.Build(ctx, "user-1", exclude, 10)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestPoolBuild_TopUpAfterSwipe(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedItem(t, "item-anchor", "user-1", "Camera")
	for i := 0; i < 4; i++ {
		env.seedItem(t, fmt.Sprintf("item-%d", i), "user-2", fmt.Sprintf("Item %d", i))
	}

	session, err := env.sessions.Create(ctx, "user-1", "item-anchor")
	require.NoError(t, err)

	pool, err := env.pools.Build(ctx, "user-1", session.SwipedItemIDs(), 10)
	require.NoError(t, err)
	require.Len(t, pool, 4)

	swiped := pool[0].ID
	_, err = env.sessions.RecordSwipe(ctx, session.ID, "user-1", swiped, domain.SwipeLeft)
	require.NoError(t, err)

	session, err = env.sessions.Get(ctx, session.ID, "user-1")
	require.NoError(t, err)

	topped, err := env.pools.Build(ctx, "user-1", session.SwipedItemIDs(), 10)
	require.NoError(t, err)
	assert.Len(t, topped, 3)
	for _, item := range topped {
		assert.NotEqual(t, swiped, item.ID)
	}
}

// TestPoolBuild_NeverRepeatsSwiped drives random swipe orders through a
// session and checks the pool never re-surfaces a swiped item.
func TestPoolBuild_NeverRepeatsSwiped(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedUser(t, "user-1", "Dana")
	env.seedUser(t, "user-2", "Riley")
	env.seedItem(t, "item-anchor", "user-1", "Camera")

	const candidates = 10
	for i := 0; i < candidates; i++ {
		env.seedItem(t, fmt.Sprintf("item-%d", i), "user-2", fmt.Sprintf("Item %d", i))
	}

	rapid.Check(t, func(t *rapid.T) {
		session, err := env.sessions.Create(ctx, "user-1", "item-anchor")
		require.NoError(t, err)

		swipes := rapid.IntRange(0, candidates).Draw(t, "swipes")
		for i := 0; i < swipes; i++ {
			pool, err := env.pools.Build(ctx, "user-1", session.SwipedItemIDs(), candidates)
			require.NoError(t, err)
			if len(pool) == 0 {
				break
			}

			for _, item := range pool {
				require.False(t, session.HasSwiped(item.ID),
					"pool re-surfaced swiped item %s", item.ID)
			}

			pick := rapid.IntRange(0, len(pool)-1).Draw(t, "pick")
			itemID := pool[pick].ID
			_, err = env.sessions.RecordSwipe(ctx, session.ID, "user-1", itemID, domain.SwipeLeft)
			require.NoError(t, err)

			session, err = env.sessions.Get(ctx, session.ID, "user-1")
			require.NoError(t, err)
		}
	})
}
