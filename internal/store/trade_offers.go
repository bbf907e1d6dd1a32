package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/errors"
)

// CreateTradeOffer stores a new trade offer with sender and recipient
// indexes, newest first.
func (s *Store) CreateTradeOffer(ctx context.Context, offer *domain.TradeOffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(offerPrefix + offer.ID)

	exists, err := s.exists(key)
	if err != nil {
		return storeErr(err, "check offer exists")
	}
	if exists {
		return errors.AlreadyExists(fmt.Sprintf("trade offer %s already exists", offer.ID))
	}

	data, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("marshal offer: %w", err)
	}

	invertedTS := invertedTimestamp(offer.CreatedAt)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}

		senderKey := []byte(offerIdxSenderPrefix + offer.OfferingUserID + ":" + invertedTS + ":" + offer.ID)
		if err := txn.Set(senderKey, []byte{}); err != nil {
			return err
		}

		recipientKey := []byte(offerIdxRecipientPrefix + offer.TargetOwnerID + ":" + invertedTS + ":" + offer.ID)
		return txn.Set(recipientKey, []byte{})
	})
	if err != nil {
		return storeErr(err, "create trade offer")
	}

	return nil
}

// GetTradeOffer retrieves an offer by ID.
func (s *Store) GetTradeOffer(ctx context.Context, id string) (*domain.TradeOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var offer domain.TradeOffer
	if err := s.get([]byte(offerPrefix+id), &offer); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.NotFoundf("trade offer %s not found", id)
		}
		return nil, storeErr(err, "get trade offer")
	}

	return &offer, nil
}

// UpdateTradeOfferStatus transitions an offer's status. Illegal transitions
// (anything out of a resolved state) return a conflict error.
func (s *Store) UpdateTradeOfferStatus(ctx context.Context, id string, status domain.OfferStatus) (*domain.TradeOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offer, err := s.GetTradeOffer(ctx, id)
	if err != nil {
		return nil, err
	}

	if !offer.Status.CanTransition(status) {
		return nil, errors.Conflict(fmt.Sprintf("trade offer %s is %s and cannot become %s", id, offer.Status, status))
	}

	offer.Status = status
	offer.UpdatedAt = time.Now()

	if err := s.set([]byte(offerPrefix+id), offer); err != nil {
		return nil, storeErr(err, "update trade offer")
	}

	return offer, nil
}

// ListOffersByOfferingUser returns offers a user has sent, newest first.
func (s *Store) ListOffersByOfferingUser(ctx context.Context, userID string) ([]*domain.TradeOffer, error) {
	return s.listOffersByIndex(ctx, offerIdxSenderPrefix+userID+":")
}

// ListOffersByTargetOwner returns offers addressed to a user's items, newest first.
func (s *Store) ListOffersByTargetOwner(ctx context.Context, userID string) ([]*domain.TradeOffer, error) {
	return s.listOffersByIndex(ctx, offerIdxRecipientPrefix+userID+":")
}

func (s *Store) listOffersByIndex(ctx context.Context, prefix string) ([]*domain.TradeOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.collectIndexIDs(prefix)
	if err != nil {
		return nil, storeErr(err, "list trade offers")
	}

	offers := make([]*domain.TradeOffer, 0, len(ids))
	for _, id := range ids {
		offer, err := s.GetTradeOffer(ctx, id)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, nil
}
