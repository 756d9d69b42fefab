package auth

import (
	"context"
	"net/http"
	"strings"

	"ventar/internal/models"
	"ventar/internal/utils"
)

type contextKey string

const sessionKey contextKey = "session"

// SignInPath is where a failed session check redirects the dashboard.
const SignInPath = "/host-login"

// ExtractToken pulls the bearer token out of the Authorization header.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Middleware is the session guard for host-only routes. Any failure to
// resolve a live session answers 401 with a redirect hint; the wrapped
// handler never runs without a non-nil session in context.
func Middleware(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(SignInPath))
				return
			}

			session := service.GetSession(r.Context(), token)
			if session == nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.RedirectResponse(SignInPath))
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session the guard stored, or nil outside a
// guarded route.
func SessionFromContext(ctx context.Context) *models.Session {
	if session, ok := ctx.Value(sessionKey).(*models.Session); ok {
		return session
	}
	return nil
}
