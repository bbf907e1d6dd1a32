package store

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

// CreateNotification stores a notification with a per-user index, newest first.
func (s *Store) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	invertedTS := invertedTimestamp(notification.CreatedAt)

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(notificationPrefix + notification.ID)
		if err := txn.Set(key, data); err != nil {
			return err
		}

		userKey := []byte(notificationIdxUserPrefix + notification.UserID + ":" + invertedTS + ":" + notification.ID)
		return txn.Set(userKey, []byte{})
	})
	if err != nil {
		return storeErr(err, "create notification")
	}

	return nil
}

// GetNotification retrieves a notification by ID.
func (s *Store) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var notification domain.Notification
	if err := s.get([]byte(notificationPrefix+id), &notification); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.NotFoundf("notification %s not found", id)
		}
		return nil, storeErr(err, "get notification")
	}

	return &notification, nil
}

// ListNotificationsByUser returns a user's notifications newest first,
// up to limit (0 means no limit).
func (s *Store) ListNotificationsByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := notificationIdxUserPrefix + userID + ":"

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if limit > 0 && len(ids) >= limit {
				break
			}
			if id := idFromIndexKey(string(it.Item().Key())); id != "" {
				ids = append(ids, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "list notifications")
	}

	notifications := make([]*domain.Notification, 0, len(ids))
	for _, id := range ids {
		notification, err := s.GetNotification(ctx, id)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

// CountUnreadNotifications returns the number of unread notifications for a user.
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	notifications, err := s.ListNotificationsByUser(ctx, userID, 0)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkNotificationRead marks one notification as read. Only the recipient
// may mark their own notifications.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	notification, err := s.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.UserID != userID {
		return nil, errors.Forbidden("notification belongs to another user")
	}
	if notification.Read {
		return notification, nil
	}

	notification.Read = true
	if err := s.set([]byte(notificationPrefix+id), notification); err != nil {
		return nil, storeErr(err, "mark notification read")
	}
	return notification, nil
}

// MarkAllNotificationsRead marks every unread notification for a user as
// read and returns how many were updated.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	notifications, err := s.ListNotificationsByUser(ctx, userID, 0)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, n := range notifications {
		if n.Read {
			continue
		}
		n.Read = true
		if err := s.set([]byte(notificationPrefix+n.ID), n); err != nil {
			return updated, storeErr(err, "mark notification read")
		}
		updated++
	}
	return updated, nil
}
