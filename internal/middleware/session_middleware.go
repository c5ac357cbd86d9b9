package middleware

import (
	"context"
	"net/http"
	"strings"

	"pocket-mini-server/internal/session"
	"pocket-mini-server/pkg/jwt"
	"pocket-mini-server/pkg/response"
)

type contextKey string

const (
	SessionIDKey contextKey = "sessionID"
	StoreKey     contextKey = "sessionStore"
)

// SessionMiddleware resolves the bearer session token to the session's store.
// A valid token for a session that has been swept gets a fresh store with
// default values.
func SessionMiddleware(secret string, registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				response.Unauthorized(w, "Missing or malformed session token")
				return
			}

			claims, err := jwt.ValidateToken(token, secret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired session token")
				return
			}

			store := registry.GetOrCreate(claims.SessionID)
			recordSession(r.Context(), claims.SessionID)

			ctx := context.WithValue(r.Context(), SessionIDKey, claims.SessionID)
			ctx = context.WithValue(ctx, StoreKey, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

func GetSessionID(r *http.Request) string {
	sessionID, ok := r.Context().Value(SessionIDKey).(string)
	if !ok {
		return ""
	}
	return sessionID
}

func GetStore(r *http.Request) *session.Store {
	store, _ := r.Context().Value(StoreKey).(*session.Store)
	return store
}
