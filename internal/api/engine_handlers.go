package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/barterly/barterly-server/internal/domain"
	"github.com/barterly/barterly-server/internal/engine"
	"github.com/barterly/barterly-server/internal/http/response"
	"github.com/barterly/barterly-server/internal/service"
)

// selectAnchorRequest is the body for starting a swipe cycle.
type selectAnchorRequest struct {
	AnchorItemID string `json:"anchor_item_id"`
}

// swipeRequest is the body for one swipe decision.
type swipeRequest struct {
	ItemID    string `json:"item_id"`
	Direction string `json:"direction"`
}

// swipeResponse pairs the swipe outcome with the refreshed cycle state.
type swipeResponse struct {
	Result *service.SwipeResult `json:"result"`
	State  engine.Snapshot      `json:"state"`
}

// handleEngineState returns the caller's current cycle snapshot.
func (s *Server) handleEngineState(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	response.Success(w, s.engines.For(userID).State(), s.logger)
}

// handleSelectAnchor starts a fresh swipe cycle for the given anchor item.
// The response carries either the complete pool or the error-state snapshot.
func (s *Server) handleSelectAnchor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req selectAnchorRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.AnchorItemID == "" {
		response.BadRequest(w, "anchor_item_id is required", s.logger)
		return
	}

	snap, err := s.engines.For(userID).SelectAnchor(ctx, req.AnchorItemID)
	if err != nil {
		// The snapshot carries the user-facing error copy; the HTTP layer
		// still reports success so clients render the error phase.
		if snap.Phase == domain.PhaseError {
			response.Success(w, snap, s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, snap, s.logger)
}

// handleSwipe records one decision against the published pool.
func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req swipeRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.ItemID == "" {
		response.BadRequest(w, "item_id is required", s.logger)
		return
	}

	direction := domain.SwipeDirection(req.Direction)
	if !direction.Valid() {
		response.BadRequest(w, "direction must be left or right", s.logger)
		return
	}

	result, snap, err := s.engines.For(userID).Swipe(ctx, req.ItemID, direction)
	if err != nil {
		if result != nil {
			// Swipe recorded but the offer pipeline failed. Report the
			// partial outcome instead of dropping it.
			s.logger.Warn("swipe recorded with failed offer pipeline",
				"user_id", userID,
				"item_id", req.ItemID,
				"error", err)
			response.Success(w, swipeResponse{Result: result, State: snap}, s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, swipeResponse{Result: result, State: snap}, s.logger)
}

// handleEngineReset drops the caller's anchor selection.
func (s *Server) handleEngineReset(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())
	s.engines.For(userID).Reset()
	response.Success(w, s.engines.For(userID).State(), s.logger)
}
