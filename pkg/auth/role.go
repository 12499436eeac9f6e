package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

const roleKey contextKey = "role"

// ErrUnknownUser is returned by a RoleLookup when the session's user no
// longer exists.
var ErrUnknownUser = errors.New("auth: unknown user")

// WithRole stores the user's role in the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// RoleFromContext returns the authenticated user's role, or "" when unset.
func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(roleKey).(string)
	return v
}

// RoleLookup resolves a user's role and suspension state.
type RoleLookup func(ctx context.Context, userID string) (role string, suspended bool, err error)

// RoleMiddleware loads the role of the authenticated user into the context
// and rejects suspended accounts. Requests without a user pass through;
// handlers decide whether they need one.
func RoleMiddleware(lookup RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok || RoleFromContext(r.Context()) != "" {
				next.ServeHTTP(w, r)
				return
			}
			role, suspended, err := lookup(r.Context(), userID)
			switch {
			case errors.Is(err, ErrUnknownUser):
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			case err != nil:
				slog.Error("auth: role lookup failed", "user_id", userID, "error", err)
				writeError(w, http.StatusServiceUnavailable, "role_lookup_failed")
				return
			case suspended:
				writeError(w, http.StatusForbidden, "account_suspended")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
