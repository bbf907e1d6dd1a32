package api

import (
	"net/http"

	"github.com/barterly/barterly-server/internal/http/response"
)

// swipeRateLimit throttles swipe decisions per user with a token bucket.
// Returns 429 Too Many Requests when the bucket is empty.
func (s *Server) swipeRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := getUserID(r.Context())

		if !s.swipeLimiter.Allow(userID) {
			s.logger.Warn("Swipe rate limit exceeded",
				"user_id", userID,
				"path", r.URL.Path,
			)
			response.TooManyRequests(w, "Too many swipes. Please slow down.", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}
