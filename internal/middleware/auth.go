// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"yamdb/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserKey is the context key for the authenticated user.
	UserKey contextKey = "user"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(raw string) (int64, error)
}

// UserFinder loads a user by id. It returns nil when the user is gone.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Authenticate resolves an "Authorization: Bearer <token>" header to a
// user and stores it in the request context. Requests without a bearer
// token pass through anonymously; permission checks happen downstream.
// The user is re-read on every request so role changes and deletions take
// effect immediately.
func Authenticate(tokens TokenVerifier, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
				return
			}

			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				slog.Error("authenticate: load user", "error", err, "user_id", id)
				writeDetail(w, http.StatusInternalServerError, "Internal server error.")
				return
			}
			if user == nil {
				writeDetail(w, http.StatusUnauthorized, "User not found")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header. Other
// schemes are ignored.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserFromCtx extracts the authenticated user from the request context.
// Returns nil for anonymous requests.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(UserKey).(*models.User)
	return u
}

// WithUser returns a copy of ctx carrying u. Used by tests and by callers
// that authenticate out of band.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}
