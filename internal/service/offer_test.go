package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

func TestCreateAndNotify_DenormalizedSnapshot(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedUser(t, "user-1", "Dana")
	env.seedUser(t, "user-2", "Riley")

	anchor := env.seedItem(t, "item-anchor", "user-1", "Vintage Camera")
	anchor.ImagePath = "/images/camera.jpg"
	require.NoError(t, env.store.UpdateItem(ctx, anchor))

	target := env.seedItem(t, "item-target", "user-2", "Acoustic Guitar")
	target.ImagePath = "/images/guitar.jpg"
	require.NoError(t, env.store.UpdateItem(ctx, target))

	offer, notification, err := env.offers.CreateAndNotify(ctx, "item-anchor", "item-target", "user-1")
	require.NoError(t, err)

	assert.Equal(t, domain.OfferStatusPending, offer.Status)
	assert.Equal(t, "user-2", offer.TargetOwnerID)

	// The notification renders without further lookups
	assert.Equal(t, "user-2", notification.UserID)
	assert.Equal(t, offer.ID, notification.TradeOfferID)
	assert.Equal(t, "Vintage Camera", notification.AnchorItemTitle)
	assert.Equal(t, "/images/camera.jpg", notification.AnchorItemImage)
	assert.Equal(t, "Acoustic Guitar", notification.TargetItemTitle)
	assert.Equal(t, "/images/guitar.jpg", notification.TargetItemImage)
	assert.Equal(t, "Dana", notification.SenderName)
}

func TestCreateAndNotify_MissingIdentifiers(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	_, _, err := env.offers.CreateAndNotify(context.Background(), "", "item-target", "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, _, err = env.offers.CreateAndNotify(context.Background(), "item-anchor", "item-target", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestResolve_AcceptMarksItemsTraded(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedUser(t, "user-1", "Dana")
	env.seedUser(t, "user-2", "Riley")
	env.seedItem(t, "item-anchor", "user-1", "Camera")
	env.seedItem(t, "item-target", "user-2", "Guitar")

	offer, _, err := env.offers.CreateAndNotify(ctx, "item-anchor", "item-target", "user-1")
	require.NoError(t, err)

	resolved, err := env.offers.Resolve(ctx, offer.ID, "user-2", true)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusAccepted, resolved.Status)

	for _, itemID := range []string{"item-anchor", "item-target"} {
		item, err := env.store.GetItem(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusTraded, item.Status, "item %s", itemID)
	}
}

func TestResolve_DeclineLeavesItemsAvailable(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedUser(t, "user-1", "Dana")
	env.seedUser(t, "user-2", "Riley")
	env.seedItem(t, "item-anchor", "user-1", "Camera")
	env.seedItem(t, "item-target", "user-2", "Guitar")

	offer, _, err := env.offers.CreateAndNotify(ctx, "item-anchor", "item-target", "user-1")
	require.NoError(t, err)

	resolved, err := env.offers.Resolve(ctx, offer.ID, "user-2", false)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusDeclined, resolved.Status)

	item, err := env.store.GetItem(ctx, "item-target")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusAvailable, item.Status)
}

func TestResolve_OnlyRecipientMayResolve(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedUser(t, "user-1", "Dana")
	env.seedUser(t, "user-2", "Riley")
	env.seedItem(t, "item-anchor", "user-1", "Camera")
	env.seedItem(t, "item-target", "user-2", "Guitar")

	offer, _, err := env.offers.CreateAndNotify(ctx, "item-anchor", "item-target", "user-1")
	require.NoError(t, err)

	_, err = env.offers.Resolve(ctx, offer.ID, "user-1", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestResolve_ResolvedOfferIsFinal(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedUser(t, "user-1", "Dana")
	env.seedUser(t, "user-2", "Riley")
	env.seedItem(t, "item-anchor", "user-1", "Camera")
	env.seedItem(t, "item-target", "user-2", "Guitar")

	offer, _, err := env.offers.CreateAndNotify(ctx, "item-anchor", "item-target", "user-1")
	require.NoError(t, err)

	_, err = env.offers.Resolve(ctx, offer.ID, "user-2", false)
	require.NoError(t, err)

	_, err = env.offers.Resolve(ctx, offer.ID, "user-2", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)
}

func TestWithdraw_OnlySenderMayWithdraw(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedUser(t, "user-1", "Dana")
	env.seedUser(t, "user-2", "Riley")
	env.seedItem(t, "item-anchor", "user-1", "Camera")
	env.seedItem(t, "item-target", "user-2", "Guitar")

	offer, _, err := env.offers.CreateAndNotify(ctx, "item-anchor", "item-target", "user-1")
	require.NoError(t, err)

	_, err = env.offers.Withdraw(ctx, offer.ID, "user-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	withdrawn, err := env.offers.Withdraw(ctx, offer.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusWithdrawn, withdrawn.Status)
}

func TestCreateMessageNotification_TruncatesPreview(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	long := strings.Repeat("a", 80)

	notification, err := env.offers.CreateMessageNotification(context.Background(), MessageNotificationParams{
		ConversationID:  "conv-1",
		SenderID:        "user-1",
		RecipientID:     "user-2",
		SenderName:      "Dana",
		MessageText:     long,
		AnchorItemTitle: "Camera",
		TargetItemTitle: "Guitar",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.NotificationMessage, notification.Type)
	assert.Len(t, []rune(notification.Preview), domain.MessagePreviewMaxLen)
	assert.Equal(t, "conv-1", notification.ConversationID)
}

func TestCreateMessageNotification_RequiresAllFields(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	valid := MessageNotificationParams{
		ConversationID:  "conv-1",
		SenderID:        "user-1",
		RecipientID:     "user-2",
		SenderName:      "Dana",
		MessageText:     "hi",
		AnchorItemTitle: "Camera",
		TargetItemTitle: "Guitar",
	}

	blankers := []func(p *MessageNotificationParams){
		func(p *MessageNotificationParams) { p.ConversationID = "" },
		func(p *MessageNotificationParams) { p.SenderID = "" },
		func(p *MessageNotificationParams) { p.RecipientID = "" },
		func(p *MessageNotificationParams) { p.SenderName = "" },
		func(p *MessageNotificationParams) { p.MessageText = "" },
		func(p *MessageNotificationParams) { p.AnchorItemTitle = "" },
		func(p *MessageNotificationParams) { p.TargetItemTitle = "" },
	}

	for i, blank := range blankers {
		params := valid
		blank(&params)
		_, err := env.offers.CreateMessageNotification(context.Background(), params)
		require.Error(t, err, "case %d", i)
		assert.ErrorIs(t, err, errors.ErrValidation, "case %d", i)
	}
}

func TestNotificationInbox_Flow(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	ctx := context.Background()
	env.seedUser(t, "user-1", "Dana")
	env.seedUser(t, "user-2", "Riley")
	env.seedItem(t, "item-anchor", "user-1", "Camera")
	env.seedItem(t, "item-target", "user-2", "Guitar")

	_, notification, err := env.offers.CreateAndNotify(ctx, "item-anchor", "item-target", "user-1")
	require.NoError(t, err)

	count, err := env.notifications.UnreadCount(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = env.notifications.MarkRead(ctx, notification.ID, "user-2")
	require.NoError(t, err)

	count, err = env.notifications.UnreadCount(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
