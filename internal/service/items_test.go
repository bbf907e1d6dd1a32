package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

func TestItemCreate(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	item, err := env.items.Create(context.Background(), "user-1", CreateItemParams{
		Title:     "Vintage Camera",
		Category:  "electronics",
		Condition: "good",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, domain.ItemStatusAvailable, item.Status)

	_, err = env.items.Create(context.Background(), "user-1", CreateItemParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestItemCreate_NormalizesCategory(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	item, err := env.items.Create(context.Background(), "user-1", CreateItemParams{
		Title:    "Tent",
		Category: "Outdoor Gear",
	})
	require.NoError(t, err)
	assert.Equal(t, "outdoor-gear", item.Category)

	newCategory := "Home & Garden"
	updated, err := env.items.Update(context.Background(), item.ID, "user-1", UpdateItemParams{Category: &newCategory})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", updated.Category)
}

func TestItemUpdate_OwnershipAndFreeze(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedItem(t, "item-1", "user-1", "Camera")

	newTitle := "Camera (boxed)"
	updated, err := env.items.Update(ctx, "item-1", "user-1", UpdateItemParams{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)

	_, err = env.items.Update(ctx, "item-1", "user-2", UpdateItemParams{Title: &newTitle})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	traded := env.seedItem(t, "item-2", "user-1", "Lens")
	traded.Status = domain.ItemStatusTraded
	require.NoError(t, env.store.UpdateItem(ctx, traded))

	_, err = env.items.Update(ctx, "item-2", "user-1", UpdateItemParams{Title: &newTitle})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)
}

func TestItemWithdraw(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedItem(t, "item-1", "user-1", "Camera")

	withdrawn, err := env.items.Withdraw(ctx, "item-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusWithdrawn, withdrawn.Status)

	// Withdrawn items never enter pools
	pool, err := env.pools.Build(ctx, "user-2", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, pool)

	// Withdrawing twice is a conflict
	_, err = env.items.Withdraw(ctx, "item-1", "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)
}
