package middleware

import (
	"context"
	"net/http"
	"strings"

	"goingmarry-api/internal/model"
	"goingmarry-api/internal/service"
	"goingmarry-api/pkg/apierror"
)

// IdentityKey is the key for storing the verified identity in request context.
const IdentityKey contextKey = "identity"

// NewAuthMiddleware verifies the bearer token on every request it wraps and
// stores the resulting identity in the request context. Mandatory on all
// mutating routes.
func NewAuthMiddleware(tokens *service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, apierror.Unauthorized("Bearer token required"))
				return
			}

			identity, err := tokens.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeError(w, apierror.Unauthorized("Invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, *identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated callers whose token lacks the admin
// flag. Must run after the auth middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin {
			writeError(w, apierror.Forbidden("Access denied. Admin privileges required."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext retrieves the verified identity from request context.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(model.Identity)
	return identity, ok
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
