package service

import (
	"context"
	"log/slog"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

// SwipeService records swipe decisions and triggers their effects. A right
// swipe converts into a trade offer; a left swipe only records.
type SwipeService struct {
	sessions *SessionService
	offers   *OfferService
	logger   *slog.Logger
}

// NewSwipeService creates a swipe service.
func NewSwipeService(sessions *SessionService, offers *OfferService, logger *slog.Logger) *SwipeService {
	return &SwipeService{
		sessions: sessions,
		offers:   offers,
		logger:   logger,
	}
}

// SwipeResult is the outcome of one handled swipe.
type SwipeResult struct {
	Entry        domain.SwipeEntry    `json:"entry"`
	Offer        *domain.TradeOffer   `json:"offer,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// HandleSwipe records one swipe decision. The swipe is recorded first; only
// after the record succeeds does a right swipe run the offer pipeline. If the
// pipeline fails the swipe record stays: the error is surfaced alongside a
// result carrying the recorded entry, and no rollback happens.
//
// An item already swiped in this session is rejected with a validation error
// before anything is written.
func (s *SwipeService) HandleSwipe(ctx context.Context, sessionID, userID, itemID string, direction domain.SwipeDirection) (*SwipeResult, error) {
	if !direction.Valid() {
		return nil, errors.Validationf("invalid swipe direction %q", direction)
	}

	session, err := s.sessions.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if session.HasSwiped(itemID) {
		return nil, errors.Validationf("item %s was already swiped in session %s", itemID, sessionID)
	}

	entry, err := s.sessions.RecordSwipe(ctx, sessionID, userID, itemID, direction)
	if err != nil {
		return nil, err
	}

	result := &SwipeResult{Entry: entry}

	if direction == domain.SwipeRight {
		offer, notification, err := s.offers.CreateAndNotify(ctx, session.AnchorItemID, itemID, userID)
		if err != nil {
			// The swipe record stands even when the offer pipeline fails.
			s.logger.Error("offer pipeline failed after recorded swipe",
				"session_id", sessionID,
				"item_id", itemID,
				"error", err)
			return result, err
		}
		result.Offer = offer
		result.Notification = notification
	}

	return result, nil
}
