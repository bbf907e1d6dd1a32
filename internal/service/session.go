// Package service implements the business logic between the HTTP layer and
// the document store: swipe sessions, candidate pool construction, swipe
// recording, the trade-offer pipeline, and the surrounding catalog and inbox
// operations. Store access goes through the retry executor so transient
// store failures are absorbed here, not in handlers.
package service

import (
	"context"
	"log/slog"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
	"github.com/barterly/barterly-server/internal/id"
	"github.com/barterly/barterly-server/internal/retry"
	"github.com/barterly/barterly-server/internal/store"
)

// SessionService manages swipe session lifecycle. Sessions are keyed by
// (user, anchor item) selection: every anchor selection creates a brand-new
// session, never merging with or resuming an earlier one.
type SessionService struct {
	store     *store.Store
	clk       clock.Clock
	retryOpts retry.Options
	logger    *slog.Logger
}

// NewSessionService creates a session service.
func NewSessionService(store *store.Store, clk clock.Clock, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  store,
		clk:    clk,
		logger: logger,
	}
}

// Create starts a fresh swipe session for a user's anchor selection.
// The anchor must exist and belong to the user. Re-selecting an anchor the
// user has swiped on before still produces a new session with empty history;
// the old session stays queryable.
func (s *SessionService) Create(ctx context.Context, userID, anchorItemID string) (*domain.SwipeSession, error) {
	if userID == "" || anchorItemID == "" {
		return nil, errors.Validation("user id and anchor item id are required")
	}

	anchor, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.Item, error) {
		return s.store.GetItem(ctx, anchorItemID)
	}, s.retryOpts)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Validationf("anchor item %s does not exist", anchorItemID)
		}
		return nil, err
	}
	if anchor.OwnerID != userID {
		return nil, errors.Validationf("anchor item %s is not owned by user %s", anchorItemID, userID)
	}

	sessionID, err := id.Generate("swipe")
	if err != nil {
		return nil, err
	}

	session := domain.NewSwipeSession(sessionID, userID, anchorItemID)
	session.CreatedAt = s.clk.Now()
	session.LastActivityAt = session.CreatedAt

	_, err = retry.Do(ctx, s.clk, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.CreateSwipeSession(ctx, session)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("swipe session created",
		"session_id", session.ID,
		"user_id", userID,
		"anchor_item_id", anchorItemID)

	return session, nil
}

// Get returns a session owned by the user.
func (s *SessionService) Get(ctx context.Context, sessionID, userID string) (*domain.SwipeSession, error) {
	session, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.SwipeSession, error) {
		return s.store.GetSwipeSession(ctx, sessionID)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, errors.Forbiddenf("session %s belongs to another user", sessionID)
	}
	return session, nil
}

// History returns the session's swipe entries in recording order. A missing
// session is an error: callers must have created the session first, so a
// not-found here is a sequencing bug, not an empty history.
func (s *SessionService) History(ctx context.Context, sessionID, userID string) ([]domain.SwipeEntry, error) {
	session, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return session.Swipes, nil
}

// RecordSwipe appends one swipe entry to a session owned by the user and
// bumps its activity timestamp. The duplicate-item guard runs in SwipeService
// before anything is written.
func (s *SessionService) RecordSwipe(ctx context.Context, sessionID, userID, itemID string, direction domain.SwipeDirection) (domain.SwipeEntry, error) {
	if !direction.Valid() {
		return domain.SwipeEntry{}, errors.Validationf("invalid swipe direction %q", direction)
	}

	if _, err := s.Get(ctx, sessionID, userID); err != nil {
		return domain.SwipeEntry{}, err
	}

	entry := domain.SwipeEntry{
		ItemID:    itemID,
		Direction: direction,
		Timestamp: s.clk.Now(),
	}

	_, err := retry.Do(ctx, s.clk, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.AppendSwipe(ctx, sessionID, entry)
	}, s.retryOpts)
	if err != nil {
		return domain.SwipeEntry{}, err
	}

	return entry, nil
}
