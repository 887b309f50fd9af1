package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"suprigest/internal/models"
	"suprigest/internal/repository"
)

// RoleGate resolves the effective role of the authenticated user and
// enforces per-route role requirements. Roles are resolved on every
// request, never cached.
type RoleGate struct {
	userRepo    *repository.UserRepository
	adminEmails map[string]bool
}

// NewRoleGate creates a new role gate. Emails on the allow-list
// resolve to admin_master regardless of stored role rows.
func NewRoleGate(userRepo *repository.UserRepository, adminEmails []string) *RoleGate {
	allowList := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		allowList[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &RoleGate{
		userRepo:    userRepo,
		adminEmails: allowList,
	}
}

// Resolve returns the effective role for a user. The allow-list wins
// over stored roles; the earliest stored role row wins otherwise;
// users without role rows fall back to leitura.
func (g *RoleGate) Resolve(userID uuid.UUID, email string) (string, error) {
	if g.adminEmails[strings.ToLower(email)] {
		return models.RoleAdminMaster, nil
	}

	roles, err := g.userRepo.GetUserRoles(userID)
	if err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return models.RoleLeitura, nil
	}

	return roles[0], nil
}

// RequireRole allows only the listed roles through
func (g *RoleGate) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			email, _ := GetUserEmail(r.Context())

			role, err := g.Resolve(userID, email)
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, "Failed to resolve role")
				return
			}

			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
