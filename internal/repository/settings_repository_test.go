package repository_test

import (
	"testing"

	"suprigest/internal/repository"
	"suprigest/internal/testutil"
)

func TestSettingsDefaultsCreatedOnFirstRead(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	repo := repository.NewSettingsRepository(containers.DB)

	settings, err := repo.Get()
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}

	if settings.WebhookAprovacao != "" || settings.WebhookReprovacao != "" {
		t.Errorf("Expected empty webhook URLs by default, got %q / %q", settings.WebhookAprovacao, settings.WebhookReprovacao)
	}
	if settings.SchemaAtual != "public" {
		t.Errorf("Expected default schema 'public', got %q", settings.SchemaAtual)
	}
	if settings.AmbienteBanco != "producao" {
		t.Errorf("Expected default environment 'producao', got %q", settings.AmbienteBanco)
	}

	// A second read returns the same row, not a new one
	again, err := repo.Get()
	if err != nil {
		t.Fatalf("Failed to get settings again: %v", err)
	}
	if again.ID != settings.ID {
		t.Errorf("Expected the same settings row, got IDs %d and %d", settings.ID, again.ID)
	}
}

func TestSettingsUpdatePersistsAllColumns(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	repo := repository.NewSettingsRepository(containers.DB)

	settings, err := repo.Get()
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}

	settings.WebhookAprovacao = "https://hooks.example.com/approve"
	settings.WebhookReprovacao = "https://hooks.example.com/reject"
	settings.WebhookNotificacaoCliente = "https://hooks.example.com/digest"
	settings.WebhookCallback = "https://hooks.example.com/callback"
	settings.SchemaAtual = "homolog"
	settings.AmbienteBanco = "homologacao"

	if err := repo.Update(settings); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	stored, err := repo.Get()
	if err != nil {
		t.Fatalf("Failed to reload settings: %v", err)
	}
	if stored.WebhookAprovacao != "https://hooks.example.com/approve" {
		t.Errorf("Expected approval webhook to persist, got %q", stored.WebhookAprovacao)
	}
	if stored.WebhookNotificacaoCliente != "https://hooks.example.com/digest" {
		t.Errorf("Expected digest webhook to persist, got %q", stored.WebhookNotificacaoCliente)
	}
	if stored.AmbienteBanco != "homologacao" {
		t.Errorf("Expected environment to persist, got %q", stored.AmbienteBanco)
	}
}
