package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mutemutemute/excursions/internal/auth"
	"github.com/mutemutemute/excursions/internal/domain"
)

// actorKey is the context key under which the authenticated actor is stored.
// An unexported type keeps other packages from colliding with it.
type actorKey struct{}

// ActorFromContext returns the authenticated actor placed in the context by
// NewAuthHandler. The bool is false on routes not behind the middleware.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(domain.Actor)
	return a, ok
}

// WithActor returns a copy of ctx carrying the actor. Exported for handler
// tests, which need an authenticated context without a full token round trip.
func WithActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// NewAuthHandler returns a middleware that requires a valid Bearer access
// token, resolves it to an actor, and stores the actor in the request
// context. Requests without a valid token get 401 and never reach the next
// handler.
func NewAuthHandler(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			actor, err := auth.ParseAccessToken(secret, raw)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin returns a middleware that rejects non-admin actors with 403.
// Wire it after NewAuthHandler; a request that never passed the auth
// middleware is rejected too.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			if !actor.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme comparison is case-insensitive per RFC 9110.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeAuthError(w, http.StatusUnauthorized, msg)
}

// writeAuthError emits the same error envelope the handler package uses, so
// clients see one error shape regardless of which layer rejected them.
func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": msg,
	})
}
