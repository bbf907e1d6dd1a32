package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/barterly/barterly-server/internal/http/response"
)

// handleListSentOffers returns offers the caller has made.
func (s *Server) handleListSentOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	offers, err := s.offers.ListSent(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, offers, s.logger)
}

// handleListReceivedOffers returns offers targeting the caller's items.
func (s *Server) handleListReceivedOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	offers, err := s.offers.ListReceived(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, offers, s.logger)
}

// handleAcceptOffer accepts a pending offer; both items become traded.
func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	s.resolveOffer(w, r, true)
}

// handleDeclineOffer declines a pending offer.
func (s *Server) handleDeclineOffer(w http.ResponseWriter, r *http.Request) {
	s.resolveOffer(w, r, false)
}

func (s *Server) resolveOffer(w http.ResponseWriter, r *http.Request, accept bool) {
	ctx := r.Context()
	userID := getUserID(ctx)
	offerID := chi.URLParam(r, "id")

	if offerID == "" {
		response.BadRequest(w, "Offer ID is required", s.logger)
		return
	}

	offer, err := s.offers.Resolve(ctx, offerID, userID, accept)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, offer, s.logger)
}

// handleWithdrawOffer withdraws a pending offer made by the caller.
func (s *Server) handleWithdrawOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	offerID := chi.URLParam(r, "id")

	if offerID == "" {
		response.BadRequest(w, "Offer ID is required", s.logger)
		return
	}

	offer, err := s.offers.Withdraw(ctx, offerID, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, offer, s.logger)
}
