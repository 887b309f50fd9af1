package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"suprigest/internal/auth"
	"suprigest/internal/middleware"
	"suprigest/internal/models"
	"suprigest/internal/repository"
)

// Roles assignable through the user administration endpoints. The
// admin_master role is never assigned here, only resolved from the
// allow-list.
var assignableRoles = map[string]bool{
	models.RoleAnalista:   true,
	models.RoleLeitura:    true,
	models.RoleSupervisor: true,
}

// UserHandler handles user profile and administration endpoints
type UserHandler struct {
	userRepo *repository.UserRepository
	authSvc  *auth.Service
	roleGate *middleware.RoleGate
	auditMw  *middleware.AuditMiddleware
}

// NewUserHandler creates a new user handler
func NewUserHandler(userRepo *repository.UserRepository, authSvc *auth.Service, roleGate *middleware.RoleGate, auditMw *middleware.AuditMiddleware) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		authSvc:  authSvc,
		roleGate: roleGate,
		auditMw:  auditMw,
	}
}

// GetProfile returns the authenticated user's identity and role
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUserIDNotFound)
		return
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, ErrMsgUserNotFound)
		return
	}

	role, err := h.roleGate.Resolve(user.ID, user.Email)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve role")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":            user.ID,
		"email":         user.Email,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"is_active":     user.IsActive,
		"role":          role,
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
	})
}

// CreateUserRequest is the user creation request body
type CreateUserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// splitFullName splits a full name on whitespace into first name and
// the rest.
func splitFullName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// CreateUser creates a user with a single assigned role
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "New user"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Role = strings.TrimSpace(req.Role)

	if req.FullName == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		respondWithError(w, http.StatusBadRequest, "fullName, email, password and role are required")
		return
	}
	if len(req.Password) < 8 {
		respondWithError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	if !assignableRoles[req.Role] {
		respondWithError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	if _, err := h.userRepo.GetByEmail(req.Email); err == nil {
		respondWithError(w, http.StatusConflict, "A user with this email already exists")
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		respondWithError(w, http.StatusInternalServerError, "Failed to check existing users")
		return
	}

	passwordHash, err := h.authSvc.HashPassword(req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	firstName, lastName := splitFullName(req.FullName)
	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	}

	if err := h.userRepo.Create(user); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	if err := h.userRepo.AssignRole(user.ID, req.Role); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to assign role")
		return
	}

	h.audit(r, "user.create", "users/"+user.ID.String(), fmt.Sprintf("email=%s role=%s", user.Email, req.Role))

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"is_active":  user.IsActive,
		"role":       req.Role,
	})
}

// UpdateUserRequest is the user update request body. All fields are
// optional; absent fields are left untouched.
type UpdateUserRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// UpdateUser updates a user's name, password and/or role
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidUserID)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if req.Password != nil && len(*req.Password) < 8 {
		respondWithError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	if req.Role != nil && !assignableRoles[strings.TrimSpace(*req.Role)] {
		respondWithError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, ErrMsgUserNotFound)
		return
	}

	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		user.FirstName, user.LastName = splitFullName(*req.FullName)
		if err := h.userRepo.Update(user); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
	}

	if req.Password != nil {
		passwordHash, err := h.authSvc.HashPassword(*req.Password)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		if err := h.userRepo.UpdatePassword(userID, passwordHash); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to update password")
			return
		}
	}

	if req.Role != nil {
		// Replace wholesale so exactly one role row remains
		if err := h.userRepo.ReplaceRole(userID, strings.TrimSpace(*req.Role)); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to update role")
			return
		}
	}

	h.audit(r, "user.update", "users/"+userID.String(), "")

	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// InactivateUser deactivates a user account, keeping the identity row
// @Summary Inactivate user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/users/{id}/inactivate [post]
func (h *UserHandler) InactivateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidUserID)
		return
	}

	if err := h.userRepo.UpdateActiveStatus(userID, false); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgUserNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to inactivate user")
		return
	}

	h.audit(r, "user.inactivate", "users/"+userID.String(), "")

	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ListUsers returns all user profiles with their resolved roles
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} map[string]interface{}
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.GetAll()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	profiles := make([]map[string]interface{}, 0, len(users))
	for _, user := range users {
		role, err := h.roleGate.Resolve(user.ID, user.Email)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to resolve roles")
			return
		}
		profiles = append(profiles, map[string]interface{}{
			"id":            user.ID,
			"email":         user.Email,
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"is_active":     user.IsActive,
			"role":          role,
			"last_login_at": user.LastLoginAt,
			"created_at":    user.CreatedAt,
		})
	}

	respondWithJSON(w, http.StatusOK, profiles)
}

func (h *UserHandler) audit(r *http.Request, action, resource, details string) {
	var userID *uuid.UUID
	var userEmail *string
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}
	if email, ok := middleware.GetUserEmail(r.Context()); ok {
		userEmail = &email
	}
	_ = h.auditMw.LogAction(userID, userEmail, action, resource, details, getIP(r), r.UserAgent())
}
