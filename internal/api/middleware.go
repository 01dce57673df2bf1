package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/mifmarket/directory-api/internal/identity"
)

type contextKey string

const (
	userContextKey contextKey = "user"
	roleContextKey contextKey = "role"
)

func userFromContext(ctx context.Context) *identity.User {
	user, _ := ctx.Value(userContextKey).(*identity.User)
	return user
}

func roleFromContext(ctx context.Context) *identity.Role {
	role, _ := ctx.Value(roleContextKey).(*identity.Role)
	return role
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireAdmin verifies the bearer token with the identity provider and
// checks the account holds an admin role. There is no partial-access state:
// a failed check is a plain 401/403.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return h.requireRole(next, identity.IsAdminRole)
}

// RequireSuperAdmin restricts the admin-management endpoints
func (h *Handlers) RequireSuperAdmin(next http.Handler) http.Handler {
	return h.requireRole(next, func(role string) bool { return role == identity.RoleSuperAdmin })
}

// RequireProducer restricts the self-service profile endpoints to accounts
// holding the producer role.
func (h *Handlers) RequireProducer(next http.Handler) http.Handler {
	return h.requireRole(next, func(role string) bool { return role == identity.RoleProducer })
}

func (h *Handlers) requireRole(next http.Handler, allowed func(string) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := h.idp.GetUser(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		role, err := h.roles.GetRole(r.Context(), user.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to check role")
			return
		}
		if role == nil || !allowed(role.Role) {
			respondError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, roleContextKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
