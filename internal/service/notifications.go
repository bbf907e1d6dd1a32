package service

import (
	"context"
	"log/slog"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/retry"
	"github.com/barterly/barterly-server/internal/store"
)

// NotificationService exposes the per-user notification inbox.
type NotificationService struct {
	store     *store.Store
	clk       clock.Clock
	retryOpts retry.Options
	logger    *slog.Logger
}

// NewNotificationService creates a notification service.
func NewNotificationService(store *store.Store, clk clock.Clock, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		clk:    clk,
		logger: logger,
	}
}

// List returns the user's notifications newest first, up to limit
// (0 means no limit).
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	return retry.Do(ctx, s.clk, func(ctx context.Context) ([]*domain.Notification, error) {
		return s.store.ListNotificationsByUser(ctx, userID, limit)
	}, s.retryOpts)
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return retry.Do(ctx, s.clk, func(ctx context.Context) (int, error) {
		return s.store.CountUnreadNotifications(ctx, userID)
	}, s.retryOpts)
}

// MarkRead marks one notification read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	return retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.Notification, error) {
		return s.store.MarkNotificationRead(ctx, notificationID, userID)
	}, s.retryOpts)
}

// MarkAllRead marks every unread notification for the user read and returns
// how many were updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return retry.Do(ctx, s.clk, func(ctx context.Context) (int, error) {
		return s.store.MarkAllNotificationsRead(ctx, userID)
	}, s.retryOpts)
}
