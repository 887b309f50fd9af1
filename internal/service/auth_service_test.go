package service_test

import (
	"errors"
	"testing"
	"time"

	"suprigest/internal/auth"
	"suprigest/internal/config"
	"suprigest/internal/repository"
	"suprigest/internal/service"
	"suprigest/internal/testutil"
)

func newAuthService(t *testing.T, containers *testutil.TestContainers) *service.AuthService {
	t.Helper()

	authSvc, err := auth.NewService(&config.JWTConfig{
		Expiration:        24 * time.Hour,
		RefreshExpiration: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}

	userRepo := repository.NewUserRepository(containers.DB)
	sessionRepo := repository.NewSessionRepository(containers.DB)

	return service.NewAuthService(userRepo, sessionRepo, authSvc)
}

func TestLoginReturnsTokenPair(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	authService := newAuthService(t, containers)

	accessToken, refreshToken, accessJTI, refreshJTI, user, err := authService.Login(fixtures.AnalystUser.Email, "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if accessToken == "" || refreshToken == "" {
		t.Error("Expected both tokens to be issued")
	}
	if accessJTI == "" || refreshJTI == "" {
		t.Error("Expected both tokens to carry a JTI")
	}
	if accessJTI == refreshJTI {
		t.Error("Access and refresh tokens must have distinct JTIs")
	}
	if user == nil || user.Email != fixtures.AnalystUser.Email {
		t.Errorf("Expected user %s, got %+v", fixtures.AnalystUser.Email, user)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	authService := newAuthService(t, containers)

	_, _, _, _, _, err := authService.Login(fixtures.AnalystUser.Email, "wrong-password")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	_, _, _, _, _, err = authService.Login("nobody@test.com", "password123")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLoginRejectsInactiveProfile(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	testutil.SetupFixtures(t, containers.DB)
	authService := newAuthService(t, containers)

	user := testutil.CreateUser(t, containers.DB, "dormant@test.com", "Dormant", "User", "analista")

	_, err := containers.DB.Exec("UPDATE users SET is_active = false WHERE id = $1", user.ID)
	if err != nil {
		t.Fatalf("Failed to deactivate user: %v", err)
	}

	_, _, _, _, _, err = authService.Login(user.Email, "password123")
	if !errors.Is(err, service.ErrUserInactive) {
		t.Errorf("Expected ErrUserInactive, got %v", err)
	}
}
