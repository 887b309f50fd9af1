package middleware_test

import (
	"testing"

	"suprigest/internal/middleware"
	"suprigest/internal/models"
	"suprigest/internal/repository"
	"suprigest/internal/testutil"
)

func TestResolveAllowListWinsOverStoredRoles(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	user := testutil.CreateUser(t, containers.DB, "boss@test.com", "Boss", "User", models.RoleLeitura)
	userRepo := repository.NewUserRepository(containers.DB)
	gate := middleware.NewRoleGate(userRepo, []string{" Boss@Test.com "})

	role, err := gate.Resolve(user.ID, "BOSS@test.com")
	if err != nil {
		t.Fatalf("Failed to resolve role: %v", err)
	}
	if role != models.RoleAdminMaster {
		t.Errorf("Expected allow-listed email to resolve to admin_master, got %q", role)
	}
}

func TestResolveEarliestRoleRowWins(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	user := testutil.CreateUser(t, containers.DB, "multi@test.com", "Multi", "Role", models.RoleAnalista)
	userRepo := repository.NewUserRepository(containers.DB)

	// A later row must not shadow the first one
	if err := userRepo.AssignRole(user.ID, models.RoleSupervisor); err != nil {
		t.Fatalf("Failed to assign second role: %v", err)
	}

	gate := middleware.NewRoleGate(userRepo, nil)
	role, err := gate.Resolve(user.ID, user.Email)
	if err != nil {
		t.Fatalf("Failed to resolve role: %v", err)
	}
	if role != models.RoleAnalista {
		t.Errorf("Expected earliest role row to win, got %q", role)
	}
}

func TestResolveFallsBackToLeitura(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	user := testutil.CreateUser(t, containers.DB, "norole@test.com", "No", "Role", "")
	userRepo := repository.NewUserRepository(containers.DB)

	gate := middleware.NewRoleGate(userRepo, nil)
	role, err := gate.Resolve(user.ID, user.Email)
	if err != nil {
		t.Fatalf("Failed to resolve role: %v", err)
	}
	if role != models.RoleLeitura {
		t.Errorf("Expected fallback role leitura, got %q", role)
	}
}
