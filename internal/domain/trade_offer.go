package domain

import "time"

// OfferStatus represents the state of a trade offer.
type OfferStatus string

const (
	// OfferStatusPending is the initial state of every offer.
	OfferStatusPending OfferStatus = "pending"

	// OfferStatusAccepted means the target item's owner agreed to the trade.
	OfferStatusAccepted OfferStatus = "accepted"

	// OfferStatusDeclined means the target item's owner rejected the trade.
	OfferStatusDeclined OfferStatus = "declined"

	// OfferStatusWithdrawn means the offering user canceled the offer.
	OfferStatusWithdrawn OfferStatus = "withdrawn"
)

// Valid checks if the status is valid.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusDeclined, OfferStatusWithdrawn:
		return true
	default:
		return false
	}
}

// CanTransition reports whether an offer may move from s to next.
// Only pending offers can be resolved; resolved offers are final.
func (s OfferStatus) CanTransition(next OfferStatus) bool {
	if s != OfferStatusPending {
		return false
	}
	switch next {
	case OfferStatusAccepted, OfferStatusDeclined, OfferStatusWithdrawn:
		return true
	default:
		return false
	}
}

// TradeOffer links an anchor item to a target item. Created exactly once per
// right swipe; immutable except for Status/UpdatedAt transitions.
type TradeOffer struct {
	ID             string      `json:"id"`
	AnchorItemID   string      `json:"anchor_item_id"`
	AnchorOwnerID  string      `json:"anchor_owner_id"`
	TargetItemID   string      `json:"target_item_id"`
	TargetOwnerID  string      `json:"target_owner_id"`
	OfferingUserID string      `json:"offering_user_id"`
	Status         OfferStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewTradeOffer creates a pending offer.
func NewTradeOffer(id, anchorItemID, anchorOwnerID, targetItemID, targetOwnerID, offeringUserID string) *TradeOffer {
	now := time.Now()
	return &TradeOffer{
		ID:             id,
		AnchorItemID:   anchorItemID,
		AnchorOwnerID:  anchorOwnerID,
		TargetItemID:   targetItemID,
		TargetOwnerID:  targetOwnerID,
		OfferingUserID: offeringUserID,
		Status:         OfferStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
