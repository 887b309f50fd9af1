package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"suprigest/internal/handlers"
	"suprigest/internal/middleware"
	"suprigest/internal/models"
	"suprigest/internal/repository"
	"suprigest/internal/testutil"
)

func newSettingsHandler(containers *testutil.TestContainers) *handlers.SettingsHandler {
	settingsRepo := repository.NewSettingsRepository(containers.DB)
	auditMw := middleware.NewAuditMiddleware(containers.DB)
	return handlers.NewSettingsHandler(settingsRepo, auditMw)
}

func TestGetSettingsCreatesDefaults(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	handler := newSettingsHandler(containers)

	req := httptest.NewRequest("GET", "/api/v1/admin/settings", nil)
	req = adminContext(req, fixtures.AdminUser)
	resp := testutil.NewTestResponse()

	handler.GetSettings(resp.ResponseRecorder, req)
	resp.AssertStatusOK(t)

	var settings models.Settings
	if err := json.Unmarshal(resp.Body.Bytes(), &settings); err != nil {
		t.Fatalf("Failed to decode settings: %v", err)
	}
	if settings.SchemaAtual != "public" || settings.AmbienteBanco != "producao" {
		t.Errorf("Expected default settings, got schema=%q environment=%q", settings.SchemaAtual, settings.AmbienteBanco)
	}
}

func TestUpdateSettingsRejectsUnknownFields(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	handler := newSettingsHandler(containers)

	body := `{"webhook_aprovacao":"https://hooks.example.com/a","webhook_custom":"https://hooks.example.com/x"}`
	req := httptest.NewRequest("PUT", "/api/v1/admin/settings", bytes.NewBufferString(body))
	req = adminContext(req, fixtures.AdminUser)
	resp := testutil.NewTestResponse()

	handler.UpdateSettings(resp.ResponseRecorder, req)
	resp.AssertStatusBadRequest(t)

	// The known field in the rejected payload was not applied
	settingsRepo := repository.NewSettingsRepository(containers.DB)
	stored, err := settingsRepo.Get()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if stored.WebhookAprovacao != "" {
		t.Errorf("Expected rejected payload to leave settings untouched, got %q", stored.WebhookAprovacao)
	}
}

func TestUpdateSettingsPersists(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	fixtures := testutil.SetupFixtures(t, containers.DB)
	handler := newSettingsHandler(containers)

	body := `{
		"webhook_aprovacao": "https://hooks.example.com/approve",
		"webhook_reprovacao": "https://hooks.example.com/reject",
		"webhook_notificacao_cliente": "https://hooks.example.com/digest",
		"webhook_callback": "https://hooks.example.com/callback",
		"schema_atual": "public",
		"ambiente_banco": "homologacao"
	}`
	req := httptest.NewRequest("PUT", "/api/v1/admin/settings", bytes.NewBufferString(body))
	req = adminContext(req, fixtures.AdminUser)
	resp := testutil.NewTestResponse()

	handler.UpdateSettings(resp.ResponseRecorder, req)
	resp.AssertStatusOK(t)

	settingsRepo := repository.NewSettingsRepository(containers.DB)
	stored, err := settingsRepo.Get()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if stored.WebhookAprovacao != "https://hooks.example.com/approve" {
		t.Errorf("Expected approval webhook to persist, got %q", stored.WebhookAprovacao)
	}
	if stored.AmbienteBanco != "homologacao" {
		t.Errorf("Expected environment to persist, got %q", stored.AmbienteBanco)
	}
}
