package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/sovereign-client/internal/fakeserver/apierr"
	"github.com/mcoot/sovereign-client/internal/fakeserver/auth"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	userContextKey   contextKey = "user"
)

// Auth rejects requests without a current bearer token
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError("missing bearer token"))
				return
			}

			claims, err := authService.ValidateToken(token)
			if err != nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError("invalid token"))
				return
			}
			user, err := authService.User(claims.UserID)
			if err != nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError("invalid token"))
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, claimsContextKey, claims)
			ctx = context.WithValue(ctx, userContextKey, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// GetClaims returns the validated token claims from the request context
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// GetUser returns the authenticated account from the request context
func GetUser(ctx context.Context) *auth.User {
	user, _ := ctx.Value(userContextKey).(*auth.User)
	return user
}

// MustGetUser returns the authenticated account or panics
func MustGetUser(ctx context.Context) *auth.User {
	user := GetUser(ctx)
	if user == nil {
		panic("no user in context - auth middleware not applied?")
	}
	return user
}
