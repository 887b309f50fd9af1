package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"suprigest/internal/config"
)

func newTestService(t *testing.T, expiration time.Duration) *Service {
	t.Helper()
	cfg := &config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        expiration,
		RefreshExpiration: 168 * time.Hour,
	}
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}
	return svc
}

func TestHashPassword(t *testing.T) {
	svc := newTestService(t, 24*time.Hour)

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "" {
		t.Error("Hash should not be empty")
	}

	if hash == password {
		t.Error("Hash should not equal the original password")
	}
}

func TestVerifyPassword(t *testing.T) {
	svc := newTestService(t, 24*time.Hour)

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	// Test correct password
	err = svc.VerifyPassword(password, hash)
	if err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}

	// Test incorrect password
	err = svc.VerifyPassword("wrongpassword", hash)
	if err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestGenerateToken(t *testing.T) {
	svc := newTestService(t, 24*time.Hour)

	userID := uuid.New()
	email := "test@example.com"

	token, jti, err := svc.GenerateToken(userID, email)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if token == "" {
		t.Error("Token should not be empty")
	}

	if jti == "" {
		t.Error("JTI should not be empty")
	}
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(t, 24*time.Hour)

	userID := uuid.New()
	email := "test@example.com"

	// Generate a token
	token, jti, err := svc.GenerateToken(userID, email)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	// Validate the token
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, claims.UserID)
	}

	if claims.Email != email {
		t.Errorf("Expected email %s, got %s", email, claims.Email)
	}

	if claims.ID != jti {
		t.Errorf("Expected JTI %s, got %s", jti, claims.ID)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(t, -1*time.Hour) // Already expired

	userID := uuid.New()
	email := "test@example.com"

	// Generate an expired token
	token, _, err := svc.GenerateToken(userID, email)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	// Try to validate the expired token
	_, err = svc.ValidateToken(token)
	if err == nil {
		t.Error("Should reject expired token")
	}
}

func TestExtractJTIFromExpiredToken(t *testing.T) {
	svc := newTestService(t, -1*time.Hour)

	token, jti, err := svc.GenerateToken(uuid.New(), "test@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	extracted, err := svc.ExtractJTI(token)
	if err != nil {
		t.Fatalf("Failed to extract JTI: %v", err)
	}

	if extracted != jti {
		t.Errorf("Expected JTI %s, got %s", jti, extracted)
	}
}

func TestGenerateRandomToken(t *testing.T) {
	svc := newTestService(t, 24*time.Hour)

	token1, err := svc.GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate random token: %v", err)
	}

	if token1 == "" {
		t.Error("Token should not be empty")
	}

	// Generate another token and ensure they're different
	token2, err := svc.GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate second random token: %v", err)
	}

	if token1 == token2 {
		t.Error("Random tokens should be different")
	}
}
