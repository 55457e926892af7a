package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "slotbooking/internal/delivery/http/helpers"
	"slotbooking/internal/domain"
)

type contextKey string

const adminSubjectKey contextKey = "adminSubject"

// SetAdminSubject returns a context with the verified admin subject set.
func SetAdminSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey, subject)
}

// AdminSubjectFromContext returns the verified admin subject from the context,
// if present. Handlers use this as the explicit per-request auth context.
func AdminSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(adminSubjectKey).(string)
	return subject, ok
}

// RequireAdmin returns a wrapper that validates the Bearer token and sets the
// admin subject in the request context. If the token is missing or invalid,
// it responds with 401 and does not call next.
func RequireAdmin(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			subject, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetAdminSubject(r.Context(), subject))
			next(w, r)
		}
	}
}
