package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"suprigest/internal/auth"
	"suprigest/internal/models"
	"suprigest/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	authSvc     *auth.Service
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	authSvc *auth.Service,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		authSvc:     authSvc,
	}
}

// Login authenticates a user and returns JWT tokens with their JTIs
func (s *AuthService) Login(email, password string) (accessToken, refreshToken, accessJTI, refreshJTI string, user *models.User, err error) {
	// Get user by email
	user, err = s.userRepo.GetByEmail(email)
	if err != nil {
		return "", "", "", "", nil, ErrInvalidCredentials
	}

	// Verify password
	if err := s.authSvc.VerifyPassword(password, user.PasswordHash); err != nil {
		return "", "", "", "", nil, ErrInvalidCredentials
	}

	// Inactive profiles are refused at login; existing sessions are
	// not retro-revoked.
	if !user.IsActive {
		return "", "", "", "", nil, ErrUserInactive
	}

	// Generate JWT tokens
	accessToken, accessJTI, err = s.authSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", "", "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshJTI, err = s.authSvc.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Update last login
	_ = s.userRepo.UpdateLastLogin(user.ID)

	return accessToken, refreshToken, accessJTI, refreshJTI, user, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// CreateSession creates a session for a token JTI
func (s *AuthService) CreateSession(userID uuid.UUID, sessionID, jti, tokenType, ipAddress, userAgent string, expiresAt time.Time) error {
	// Generate unique ID for this specific token session entry
	id, err := s.authSvc.GenerateRandomToken(16)
	if err != nil {
		return fmt.Errorf("failed to generate session entry ID: %w", err)
	}

	session := &models.Session{
		ID:             id,
		UserID:         userID,
		SessionID:      sessionID, // Links access and refresh tokens from same login
		JTI:            jti,
		TokenType:      tokenType,
		ExpiresAt:      expiresAt,
		LastActivityAt: time.Now(),
		CreatedAt:      time.Now(),
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
	}

	return s.sessionRepo.Create(session)
}

// GenerateSessionID generates a unique session identifier
func (s *AuthService) GenerateSessionID() (string, error) {
	return s.authSvc.GenerateRandomToken(16)
}

// RefreshToken refreshes an access token using a refresh token and returns a new refresh token
func (s *AuthService) RefreshToken(refreshToken, ipAddress, userAgent string) (accessToken, newRefreshToken string, user *models.User, err error) {
	// Validate refresh token
	claims, err := s.authSvc.ValidateToken(refreshToken)
	if err != nil {
		return "", "", nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	// Check if JTI exists in session (validates token hasn't been revoked)
	if claims.ID == "" {
		return "", "", nil, errors.New("token missing JTI")
	}

	session, err := s.sessionRepo.GetByJTI(claims.ID)
	if err != nil {
		return "", "", nil, fmt.Errorf("session not found or expired: %w", err)
	}

	// Verify session belongs to the user from the token
	if session.UserID != claims.UserID {
		return "", "", nil, errors.New("session user mismatch")
	}

	// Verify it's a refresh token session
	if session.TokenType != "refresh" {
		return "", "", nil, errors.New("invalid token type")
	}

	// Get user data
	user, err = s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return "", "", nil, fmt.Errorf("user not found: %w", err)
	}

	// Delete old session (all tokens from this session - access + refresh)
	_ = s.sessionRepo.DeleteBySessionID(session.SessionID)

	// Generate new session ID for the new token pair
	newSessionID, err := s.authSvc.GenerateRandomToken(16)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	// Generate new access token
	accessToken, accessJTI, err := s.authSvc.GenerateToken(claims.UserID, claims.Email)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	// Generate new refresh token (token rotation for security)
	var refreshJTI string
	newRefreshToken, refreshJTI, err = s.authSvc.GenerateRefreshToken(claims.UserID, claims.Email)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Create new refresh session with new session ID
	if err := s.CreateSession(claims.UserID, newSessionID, refreshJTI, "refresh", ipAddress, userAgent, time.Now().Add(7*24*time.Hour)); err != nil {
		return "", "", nil, fmt.Errorf("failed to create refresh session: %w", err)
	}

	// Create access token session for tracking (same session ID)
	if err := s.CreateSession(claims.UserID, newSessionID, accessJTI, "access", ipAddress, userAgent, time.Now().Add(24*time.Hour)); err != nil {
		// Log but don't fail - access tokens can still work without session tracking
		slog.Warn("Failed to create access token session", "error", err)
	}

	return accessToken, newRefreshToken, user, nil
}

// InvalidateCurrentSession invalidates only the current login session.
// This deletes both the access and refresh tokens from the same login.
func (s *AuthService) InvalidateCurrentSession(token string) error {
	// Extract JTI without validation (works with expired tokens)
	jti, err := s.authSvc.ExtractJTI(token)
	if err != nil {
		return fmt.Errorf("failed to extract JTI: %w", err)
	}

	// Get session to find session_id
	session, err := s.sessionRepo.GetByJTI(jti)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	// Delete all tokens with the same session_id (access + refresh from this login)
	slog.Debug("Deleting session", "session_id", session.SessionID, "user_id", session.UserID)
	return s.sessionRepo.DeleteBySessionID(session.SessionID)
}

// InvalidateAllUserSessions invalidates all sessions for a user
func (s *AuthService) InvalidateAllUserSessions(userID uuid.UUID) error {
	return s.sessionRepo.DeleteAllUserSessions(userID)
}

// GetUserRoles retrieves all role names for a user
func (s *AuthService) GetUserRoles(userID uuid.UUID) ([]string, error) {
	return s.userRepo.GetUserRoles(userID)
}
