package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/barterly/barterly-server/internal/http/response"
)

// handleListNotifications returns the caller's notifications, newest first.
// Accepts an optional limit query parameter.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := s.notifications.List(ctx, userID, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, notifications, s.logger)
}

// handleUnreadCount returns the caller's unread notification count.
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	count, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"unread": count}, s.logger)
}

// handleMarkRead marks a single notification as read.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	notificationID := chi.URLParam(r, "id")

	if notificationID == "" {
		response.BadRequest(w, "Notification ID is required", s.logger)
		return
	}

	notification, err := s.notifications.MarkRead(ctx, notificationID, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, notification, s.logger)
}

// handleMarkAllRead marks every unread notification for the caller as read.
func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	count, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]int{"marked": count}, s.logger)
}
