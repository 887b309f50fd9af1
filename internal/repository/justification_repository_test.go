package repository_test

import (
	"errors"
	"testing"
	"time"

	"suprigest/internal/models"
	"suprigest/internal/repository"
	"suprigest/internal/testutil"

	"github.com/google/uuid"
)

func TestPendingFilterIncludesNullStatus(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewJustificationRepository(containers.DB)

	now := time.Now()
	fixtures.CreateJustification(t, "FORM-001", "Org A", "", now)
	fixtures.CreateJustification(t, "FORM-002", "Org A", models.StatusPendente, now)
	fixtures.CreateJustification(t, "FORM-003", "Org B", models.StatusAprovado, now)

	records, err := repo.GetAllWithFilters(repository.JustificationFilters{Status: models.StatusPendente}, 50, 0)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 pending records (NULL counts as pending), got %d", len(records))
	}

	count, err := repo.CountPending()
	if err != nil {
		t.Fatalf("Failed to count pending: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected pending count 2, got %d", count)
	}
}

func TestSearchAndOrganizationFilters(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewJustificationRepository(containers.DB)

	now := time.Now()
	fixtures.CreateJustification(t, "ABC-100", "Org A", "", now)
	fixtures.CreateJustification(t, "XYZ-200", "Org B", "", now)

	records, err := repo.GetAllWithFilters(repository.JustificationFilters{Search: "abc"}, 50, 0)
	if err != nil {
		t.Fatalf("Failed to search records: %v", err)
	}
	if len(records) != 1 || records[0].IDFormulario != "ABC-100" {
		t.Errorf("Expected case-insensitive search to match ABC-100, got %d records", len(records))
	}

	records, err = repo.GetAllWithFilters(repository.JustificationFilters{Organization: "Org B"}, 50, 0)
	if err != nil {
		t.Fatalf("Failed to filter by organization: %v", err)
	}
	if len(records) != 1 || records[0].IDFormulario != "XYZ-200" {
		t.Errorf("Expected organization filter to match XYZ-200, got %d records", len(records))
	}
}

func TestSetDecisionOnlyTouchesPendingRows(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	repo := repository.NewJustificationRepository(containers.DB)

	record := fixtures.CreateJustification(t, "FORM-010", "Org A", "", time.Now())

	updated, err := repo.SetDecision(record.ID, models.StatusAprovado, "analyst@test.com", nil, time.Now())
	if err != nil {
		t.Fatalf("Failed to approve record: %v", err)
	}
	if updated.Status == nil || *updated.Status != models.StatusAprovado {
		t.Errorf("Expected status aprovado, got %v", updated.Status)
	}
	if updated.AnalisadoPor == nil || *updated.AnalisadoPor != "analyst@test.com" {
		t.Errorf("Expected reviewer to be recorded, got %v", updated.AnalisadoPor)
	}
	if updated.DataAnalise == nil {
		t.Error("Expected analysis timestamp to be set")
	}

	// A second decision finds no pending row
	_, err = repo.SetDecision(record.ID, models.StatusReprovado, "other@test.com", nil, time.Now())
	if !errors.Is(err, repository.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound on second decision, got %v", err)
	}

	// The stored decision is unchanged
	stored, err := repo.GetByID(record.ID)
	if err != nil {
		t.Fatalf("Failed to reload record: %v", err)
	}
	if stored.Status == nil || *stored.Status != models.StatusAprovado {
		t.Errorf("Expected stored status to stay aprovado, got %v", stored.Status)
	}
}

func TestGetByIDUnknownRecord(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	repo := repository.NewJustificationRepository(containers.DB)

	_, err := repo.GetByID(uuid.New())
	if !errors.Is(err, repository.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}
