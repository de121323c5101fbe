package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/superimpress/backend/internal/domain"
	"github.com/superimpress/backend/internal/service"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

// AccessTokenCookie is the cookie carrying the access token for browser
// clients.
const AccessTokenCookie = "access_token"

// Auth resolves the request to an authenticated user and stores it in the
// context. The access_token cookie takes precedence; an Authorization bearer
// header is accepted as a fallback for non-browser clients. Every failure
// collapses into a single 401 response; the specific reason is only logged.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken := extractToken(r)
			if rawToken == "" {
				unauthorized(w, "missing access token")
				return
			}

			user, err := authService.ResolveAccessToken(r.Context(), rawToken)
			if err != nil {
				unauthorized(w, "token resolution failed: "+err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

func unauthorized(w http.ResponseWriter, reason string) {
	log.Printf("ERROR [middleware.Auth] %s", reason)
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
}

// GetUser returns the authenticated user stored by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}
