package service_test

import (
	"errors"
	"testing"
	"time"

	"suprigest/internal/models"
	"suprigest/internal/repository"
	"suprigest/internal/service"
	"suprigest/internal/testutil"
	"suprigest/internal/webhook"

	"github.com/google/uuid"
)

func newReviewService(containers *testutil.TestContainers) *service.ReviewService {
	justificationRepo := repository.NewJustificationRepository(containers.DB)
	settingsRepo := repository.NewSettingsRepository(containers.DB)
	dispatcher := webhook.NewDispatcher(settingsRepo)
	return service.NewReviewService(justificationRepo, dispatcher)
}

func TestApproveMarksRecordAndRecordsReviewer(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	svc := newReviewService(containers)

	record := fixtures.CreateJustification(t, "FORM-100", "Org A", "", time.Now())

	updated, err := svc.Approve(record.ID, "analyst@test.com")
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
}

func TestDecidedRecordRefusesFurtherReview(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	svc := newReviewService(containers)

	record := fixtures.CreateJustification(t, "FORM-101", "Org A", "", time.Now())

	if _, err := svc.Approve(record.ID, "analyst@test.com"); err != nil {
		t.Fatalf("Failed to approve record: %v", err)
	}

	if _, err := svc.Approve(record.ID, "other@test.com"); !errors.Is(err, service.ErrAlreadyDecided) {
		t.Errorf("Expected ErrAlreadyDecided on second approval, got %v", err)
	}
	if _, err := svc.Reject(record.ID, "other@test.com", "too late"); !errors.Is(err, service.ErrAlreadyDecided) {
		t.Errorf("Expected ErrAlreadyDecided on rejection after approval, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	svc := newReviewService(containers)

	record := fixtures.CreateJustification(t, "FORM-102", "Org A", "", time.Now())

	if _, err := svc.Reject(record.ID, "analyst@test.com", "   "); !errors.Is(err, service.ErrEmptyReason) {
		t.Errorf("Expected ErrEmptyReason for blank reason, got %v", err)
	}

	// The record stays pending after the refused rejection
	justificationRepo := repository.NewJustificationRepository(containers.DB)
	stored, err := justificationRepo.GetByID(record.ID)
	if err != nil {
		t.Fatalf("Failed to reload record: %v", err)
	}
	if stored.Status != nil && *stored.Status != models.StatusPendente {
		t.Errorf("Expected record to stay pending, got %v", *stored.Status)
	}

	updated, err := svc.Reject(record.ID, "analyst@test.com", "  Sem nota fiscal  ")
	if err != nil {
		t.Fatalf("Failed to reject record: %v", err)
	}
	if updated.Status == nil || *updated.Status != models.StatusReprovado {
		t.Errorf("Expected status reprovado, got %v", updated.Status)
	}
	if updated.MotivoReprovacao == nil || *updated.MotivoReprovacao != "Sem nota fiscal" {
		t.Errorf("Expected trimmed rejection reason to be stored, got %v", updated.MotivoReprovacao)
	}
}

func TestReviewUnknownRecord(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	testutil.SetupFixtures(t, containers.DB)
	svc := newReviewService(containers)

	if _, err := svc.Approve(uuid.New(), "analyst@test.com"); !errors.Is(err, repository.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestDownloadInfoGating(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	svc := newReviewService(containers)
	justificationRepo := repository.NewJustificationRepository(containers.DB)

	// Record without a download reference
	bare := fixtures.CreateJustification(t, "FORM-110", "Org A", "", time.Now())
	if _, _, err := svc.DownloadInfo(bare.ID); !errors.Is(err, service.ErrDownloadUnavailable) {
		t.Errorf("Expected ErrDownloadUnavailable without download reference, got %v", err)
	}

	// Record flagged as submitted without evidence
	noEvidence := models.NoEvidenceJustify
	download := "https://files.example.com/a.pdf"
	filename := "a.pdf"
	withoutEvidence := &models.JustificationRecord{
		IDFormulario: "FORM-111",
		Justify:      &noEvidence,
		Download:     &download,
		Filename:     &filename,
	}
	if err := justificationRepo.Create(withoutEvidence); err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	if _, _, err := svc.DownloadInfo(withoutEvidence.ID); !errors.Is(err, service.ErrDownloadUnavailable) {
		t.Errorf("Expected ErrDownloadUnavailable for no-evidence record, got %v", err)
	}

	// Record with a usable attachment
	justify := "Defeito no equipamento"
	withEvidence := &models.JustificationRecord{
		IDFormulario: "FORM-112",
		Justify:      &justify,
		Download:     &download,
		Filename:     &filename,
	}
	if err := justificationRepo.Create(withEvidence); err != nil {
		t.Fatalf("Failed to create record: %v", err)
	}
	gotDownload, gotFilename, err := svc.DownloadInfo(withEvidence.ID)
	if err != nil {
		t.Fatalf("Expected download info, got error: %v", err)
	}
	if gotDownload != download || gotFilename != filename {
		t.Errorf("Expected %q / %q, got %q / %q", download, filename, gotDownload, gotFilename)
	}
}
