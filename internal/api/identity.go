package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barterly/barterly-server/internal/http/response"
)

// identityHeader carries the user id set by the trusted upstream proxy.
// Authentication itself happens before traffic reaches this server.
const identityHeader = "X-User-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUserID contextKey = "user_id"

// identity attaches the upstream user id to the request context. Requests
// without the header pass through anonymously; requireUser rejects them.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := r.Header.Get(identityHeader); userID != "" {
			ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser is middleware that rejects requests without an identity.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getUserID(r.Context()) == "" {
			response.Unauthorized(w, "Missing user identity", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getUserID extracts the user ID from request context.
// Returns empty string if the request carried no identity.
func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}

// identityFromRequest resolves the user id straight from the header, for
// handlers mounted outside the chi middleware chain.
func identityFromRequest(r *http.Request) string {
	if userID := getUserID(r.Context()); userID != "" {
		return userID
	}
	return r.Header.Get(identityHeader)
}

// identify validates the identity header on huma routes and returns the
// user id, or a 401 error when it is missing.
func (s *Server) identify(userID string) (string, error) {
	if userID == "" {
		return "", huma.Error401Unauthorized("Missing user identity")
	}
	return userID, nil
}
