package service

import (
	"context"
	"log/slog"

	"github.com/barterly/barterly-server/internal/clock"
	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
	"github.com/barterly/barterly-server/internal/id"
	"github.com/barterly/barterly-server/internal/retry"
	"github.com/barterly/barterly-server/internal/sse"
	"github.com/barterly/barterly-server/internal/store"
)

// OfferService runs the trade-offer pipeline: a right swipe becomes exactly
// one pending offer plus one notification to the target item's owner, and it
// owns the accept/decline flow outside the swipe engine.
type OfferService struct {
	store     *store.Store
	sse       *sse.Manager
	clk       clock.Clock
	retryOpts retry.Options
	logger    *slog.Logger
}

// NewOfferService creates an offer service. The SSE manager may be nil in
// tests; events are then skipped.
func NewOfferService(store *store.Store, sseManager *sse.Manager, clk clock.Clock, logger *slog.Logger) *OfferService {
	return &OfferService{
		store:  store,
		sse:    sseManager,
		clk:    clk,
		logger: logger,
	}
}

// CreateAndNotify creates a pending trade offer for targetItemID against the
// offering user's anchor item, and a trade_offer notification addressed to
// the target item's owner. The notification carries a denormalized snapshot
// (item titles, images, offerer display name) so the recipient's UI renders
// it without further lookups. Missing identifiers or empty titles/names are
// validation errors.
func (s *OfferService) CreateAndNotify(ctx context.Context, anchorItemID, targetItemID, offeringUserID string) (*domain.TradeOffer, *domain.Notification, error) {
	if anchorItemID == "" || targetItemID == "" || offeringUserID == "" {
		return nil, nil, errors.Validation("anchor item, target item, and offering user are required")
	}

	anchor, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.Item, error) {
		return s.store.GetItem(ctx, anchorItemID)
	}, s.retryOpts)
	if err != nil {
		return nil, nil, err
	}

	target, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.Item, error) {
		return s.store.GetItem(ctx, targetItemID)
	}, s.retryOpts)
	if err != nil {
		return nil, nil, err
	}

	sender, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.User, error) {
		return s.store.GetUser(ctx, offeringUserID)
	}, s.retryOpts)
	if err != nil {
		return nil, nil, err
	}

	if anchor.Title == "" || target.Title == "" {
		return nil, nil, errors.Validation("offer items must have titles")
	}
	if sender.DisplayName == "" {
		return nil, nil, errors.Validation("offering user has no display name")
	}

	offerID, err := id.Generate("offer")
	if err != nil {
		return nil, nil, err
	}

	offer := domain.NewTradeOffer(offerID, anchor.ID, anchor.OwnerID, target.ID, target.OwnerID, offeringUserID)
	offer.CreatedAt = s.clk.Now()
	offer.UpdatedAt = offer.CreatedAt

	_, err = retry.Do(ctx, s.clk, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.CreateTradeOffer(ctx, offer)
	}, s.retryOpts)
	if err != nil {
		return nil, nil, err
	}

	notifID, err := id.Generate("notif")
	if err != nil {
		return nil, nil, err
	}

	notification := &domain.Notification{
		ID:           notifID,
		UserID:       target.OwnerID,
		Type:         domain.NotificationTradeOffer,
		TradeOfferID: offer.ID,
		CreatedAt:    s.clk.Now(),

		AnchorItemTitle: anchor.Title,
		AnchorItemImage: anchor.ImagePath,
		TargetItemTitle: target.Title,
		TargetItemImage: target.ImagePath,
		SenderName:      sender.DisplayName,
	}

	_, err = retry.Do(ctx, s.clk, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.CreateNotification(ctx, notification)
	}, s.retryOpts)
	if err != nil {
		return nil, nil, err
	}

	if s.sse != nil {
		s.sse.Emit(sse.NewOfferCreatedEvent(offer))
		s.sse.Emit(sse.NewNotificationEvent(notification))
	}

	s.logger.Info("trade offer created",
		"offer_id", offer.ID,
		"anchor_item_id", anchor.ID,
		"target_item_id", target.ID,
		"offering_user_id", offeringUserID,
		"recipient_user_id", target.OwnerID)

	return offer, notification, nil
}

// MessageNotificationParams describes a chat-message notification.
type MessageNotificationParams struct {
	ConversationID  string
	SenderID        string
	RecipientID     string
	SenderName      string
	MessageText     string
	AnchorItemTitle string
	TargetItemTitle string
}

// CreateMessageNotification creates a message notification with the preview
// truncated to the inbox display length. Every field is required.
func (s *OfferService) CreateMessageNotification(ctx context.Context, params MessageNotificationParams) (*domain.Notification, error) {
	if params.ConversationID == "" || params.SenderID == "" || params.RecipientID == "" ||
		params.SenderName == "" || params.MessageText == "" ||
		params.AnchorItemTitle == "" || params.TargetItemTitle == "" {
		return nil, errors.Validation("message notification requires conversation, sender, recipient, sender name, message text, and item titles")
	}

	notifID, err := id.Generate("notif")
	if err != nil {
		return nil, err
	}

	notification := &domain.Notification{
		ID:        notifID,
		UserID:    params.RecipientID,
		Type:      domain.NotificationMessage,
		CreatedAt: s.clk.Now(),

		AnchorItemTitle: params.AnchorItemTitle,
		TargetItemTitle: params.TargetItemTitle,
		SenderName:      params.SenderName,
		ConversationID:  params.ConversationID,
		Preview:         domain.TruncatePreview(params.MessageText),
	}

	_, err = retry.Do(ctx, s.clk, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.CreateNotification(ctx, notification)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}

	if s.sse != nil {
		s.sse.Emit(sse.NewNotificationEvent(notification))
	}

	return notification, nil
}

// Resolve accepts or declines a pending offer. Only the target item's owner
// may resolve it. Accepting marks both items traded so they drop out of
// every future pool.
func (s *OfferService) Resolve(ctx context.Context, offerID, userID string, accept bool) (*domain.TradeOffer, error) {
	offer, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.TradeOffer, error) {
		return s.store.GetTradeOffer(ctx, offerID)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}
	if offer.TargetOwnerID != userID {
		return nil, errors.Forbiddenf("offer %s is not addressed to user %s", offerID, userID)
	}

	status := domain.OfferStatusDeclined
	if accept {
		status = domain.OfferStatusAccepted
	}

	updated, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.TradeOffer, error) {
		return s.store.UpdateTradeOfferStatus(ctx, offerID, status)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}

	if accept {
		for _, itemID := range []string{updated.AnchorItemID, updated.TargetItemID} {
			if err := s.markItemTraded(ctx, itemID); err != nil {
				s.logger.Error("failed to mark item traded after accepted offer",
					"offer_id", offerID,
					"item_id", itemID,
					"error", err)
			}
		}
	}

	if s.sse != nil {
		s.sse.Emit(sse.NewOfferUpdatedEvent(updated))
	}

	s.logger.Info("trade offer resolved",
		"offer_id", offerID,
		"status", updated.Status)

	return updated, nil
}

// Withdraw cancels a pending offer. Only the offering user may withdraw.
func (s *OfferService) Withdraw(ctx context.Context, offerID, userID string) (*domain.TradeOffer, error) {
	offer, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.TradeOffer, error) {
		return s.store.GetTradeOffer(ctx, offerID)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}
	if offer.OfferingUserID != userID {
		return nil, errors.Forbiddenf("offer %s was not sent by user %s", offerID, userID)
	}

	updated, err := retry.Do(ctx, s.clk, func(ctx context.Context) (*domain.TradeOffer, error) {
		return s.store.UpdateTradeOfferStatus(ctx, offerID, domain.OfferStatusWithdrawn)
	}, s.retryOpts)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListSent returns offers the user has made, newest first.
func (s *OfferService) ListSent(ctx context.Context, userID string) ([]*domain.TradeOffer, error) {
	return retry.Do(ctx, s.clk, func(ctx context.Context) ([]*domain.TradeOffer, error) {
		return s.store.ListOffersByOfferingUser(ctx, userID)
	}, s.retryOpts)
}

// ListReceived returns offers addressed to the user's items, newest first.
func (s *OfferService) ListReceived(ctx context.Context, userID string) ([]*domain.TradeOffer, error) {
	return retry.Do(ctx, s.clk, func(ctx context.Context) ([]*domain.TradeOffer, error) {
		return s.store.ListOffersByTargetOwner(ctx, userID)
	}, s.retryOpts)
}

func (s *OfferService) markItemTraded(ctx context.Context, itemID string) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	item.Status = domain.ItemStatusTraded
	item.UpdatedAt = s.clk.Now()
	return s.store.UpdateItem(ctx, item)
}
