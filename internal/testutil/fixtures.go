package testutil

import (
	"database/sql"
	"testing"
	"time"

	"suprigest/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures holds test data
type Fixtures struct {
	DB          *sql.DB
	AdminUser   *models.User
	AnalystUser *models.User
	ReaderUser  *models.User
}

// SetupFixtures creates test users with their roles
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	fixtures := &Fixtures{
		DB: db,
	}

	fixtures.AdminUser = CreateUser(t, db, "admin@test.com", "Admin", "User", models.RoleAdminMaster)
	fixtures.AnalystUser = CreateUser(t, db, "analyst@test.com", "Analyst", "User", models.RoleAnalista)
	fixtures.ReaderUser = CreateUser(t, db, "reader@test.com", "Reader", "User", models.RoleLeitura)

	return fixtures
}

// Cleanup removes all test data
func (f *Fixtures) Cleanup(t *testing.T) {
	t.Helper()

	// Cleanup is handled by container termination
	// Data is not persisted between tests
}

// CreateUser creates an active user with the given role
func CreateUser(t *testing.T, db *sql.DB, email, firstName, lastName, role string) *models.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var user models.User
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, email, first_name, last_name, is_active, created_at, updated_at
	`, email, string(hashedPassword), firstName, lastName).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}

	if role != "" {
		_, err := db.Exec("INSERT INTO user_roles (user_id, role) VALUES ($1, $2)", user.ID, role)
		if err != nil {
			t.Fatalf("Failed to assign role %s to user %s: %v", role, email, err)
		}
	}

	return &user
}

// CreateJustification inserts a justification record. Status may be
// empty for a pending record.
func (f *Fixtures) CreateJustification(t *testing.T, idFormulario, organization, status string, lastDate time.Time) *models.JustificationRecord {
	t.Helper()

	var statusArg interface{}
	if status != "" {
		statusArg = status
	}

	var record models.JustificationRecord
	err := f.DB.QueryRow(`
		INSERT INTO prematurajustify (idformulario, supplynumber, serialnumber, lastdate, justify, organization, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, idformulario, organization, status
	`, idFormulario, "SUP-001", "SN-001", lastDate, "Defeito no equipamento", organization, statusArg).Scan(
		&record.ID, &record.IDFormulario, &record.Organization, &record.Status,
	)

	if err != nil {
		t.Fatalf("Failed to create justification %s: %v", idFormulario, err)
	}

	return &record
}

// CountUserRoles returns how many role rows a user has
func (f *Fixtures) CountUserRoles(t *testing.T, userID uuid.UUID) int {
	t.Helper()

	var count int
	err := f.DB.QueryRow("SELECT COUNT(*) FROM user_roles WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count user roles: %v", err)
	}
	return count
}
