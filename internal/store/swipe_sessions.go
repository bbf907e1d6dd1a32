package store

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

// CreateSwipeSession stores a new swipe session with a user index.
// Session ids are unique per call; anchor re-selection always creates a new
// record and leaves earlier sessions queryable for history.
func (s *Store) CreateSwipeSession(ctx context.Context, session *domain.SwipeSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(sessionPrefix + session.ID)

	exists, err := s.exists(key)
	if err != nil {
		return storeErr(err, "check session exists")
	}
	if exists {
		return errors.AlreadyExists(fmt.Sprintf("swipe session %s already exists", session.ID))
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}

		userKey := []byte(sessionIdxUserPrefix + session.UserID + ":" + session.ID)
		return txn.Set(userKey, []byte{})
	})
	if err != nil {
		return storeErr(err, "create swipe session")
	}

	return nil
}

// GetSwipeSession retrieves a session by ID.
func (s *Store) GetSwipeSession(ctx context.Context, id string) (*domain.SwipeSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session domain.SwipeSession
	if err := s.get([]byte(sessionPrefix+id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.NotFoundf("swipe session %s not found", id)
		}
		return nil, storeErr(err, "get swipe session")
	}

	return &session, nil
}

// AppendSwipe appends one swipe entry to a session in a single transaction.
// This layer appends blindly - duplicate entries would be stored as-is; the
// engine guards the at-most-once-per-item invariant before calling.
func (s *Store) AppendSwipe(ctx context.Context, sessionID string, entry domain.SwipeEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(sessionPrefix + sessionID)

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		var session domain.SwipeSession
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		}); err != nil {
			return err
		}

		session.Swipes = append(session.Swipes, entry)
		session.LastActivityAt = entry.Timestamp

		data, err := json.Marshal(&session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.NotFoundf("swipe session %s not found", sessionID)
		}
		return storeErr(err, "append swipe")
	}

	return nil
}

// ListSwipeSessionsByUser returns all sessions a user has created, in id order.
func (s *Store) ListSwipeSessionsByUser(ctx context.Context, userID string) ([]*domain.SwipeSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.collectIndexIDs(sessionIdxUserPrefix + userID + ":")
	if err != nil {
		return nil, storeErr(err, "list sessions by user")
	}

	sessions := make([]*domain.SwipeSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.GetSwipeSession(ctx, id)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}
