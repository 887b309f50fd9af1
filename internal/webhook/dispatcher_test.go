package webhook_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"suprigest/internal/models"
	"suprigest/internal/repository"
	"suprigest/internal/testutil"
	"suprigest/internal/webhook"
)

// captureServer records every JSON body POSTed to it.
func captureServer(t *testing.T) (*httptest.Server, chan map[string]interface{}) {
	t.Helper()

	received := make(chan map[string]interface{}, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode webhook payload: %v", err)
		}
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	return server, received
}

func waitForPayload(t *testing.T, received chan map[string]interface{}) map[string]interface{} {
	t.Helper()

	select {
	case payload := <-received:
		return payload
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for webhook delivery")
		return nil
	}
}

func testRecord() *models.JustificationRecord {
	org := "ABC"
	return &models.JustificationRecord{
		ID:           uuid.New(),
		IDFormulario: "FORM-100",
		SupplyNumber: "SUP-1",
		Organization: &org,
	}
}

func TestApprovalWebhookDelivery(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	server, received := captureServer(t)
	defer server.Close()

	settingsRepo := repository.NewSettingsRepository(containers.DB)
	settings, err := settingsRepo.Get()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	settings.WebhookAprovacao = server.URL
	if err := settingsRepo.Update(settings); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	dispatcher := webhook.NewDispatcher(settingsRepo)
	dispatcher.NotifyApproval(testRecord(), "analyst@test.com")

	payload := waitForPayload(t, received)
	if payload["evento"] != "aprovacao" {
		t.Errorf("Expected evento aprovacao, got %v", payload["evento"])
	}
	if payload["revisor"] != "analyst@test.com" {
		t.Errorf("Expected revisor analyst@test.com, got %v", payload["revisor"])
	}
	if payload["idformulario"] != "FORM-100" {
		t.Errorf("Expected record snapshot in payload, got idformulario %v", payload["idformulario"])
	}
	if _, ok := payload["motivo"]; ok {
		t.Error("Approval payload must not carry a motivo field")
	}
}

func TestRejectionWebhookCarriesReason(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	server, received := captureServer(t)
	defer server.Close()

	settingsRepo := repository.NewSettingsRepository(containers.DB)
	settings, err := settingsRepo.Get()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	settings.WebhookReprovacao = server.URL
	if err := settingsRepo.Update(settings); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	dispatcher := webhook.NewDispatcher(settingsRepo)
	dispatcher.NotifyRejection(testRecord(), "analyst@test.com", "Sem nota fiscal")

	payload := waitForPayload(t, received)
	if payload["evento"] != "reprovacao" {
		t.Errorf("Expected evento reprovacao, got %v", payload["evento"])
	}
	if payload["motivo"] != "Sem nota fiscal" {
		t.Errorf("Expected motivo in rejection payload, got %v", payload["motivo"])
	}
}

func TestPendingDigestDelivery(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	server, received := captureServer(t)
	defer server.Close()

	settingsRepo := repository.NewSettingsRepository(containers.DB)
	settings, err := settingsRepo.Get()
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	settings.WebhookNotificacaoCliente = server.URL
	if err := settingsRepo.Update(settings); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	dispatcher := webhook.NewDispatcher(settingsRepo)
	dispatcher.NotifyPendingDigest(7)

	payload := waitForPayload(t, received)
	if payload["pendentes"] != float64(7) {
		t.Errorf("Expected pendentes 7, got %v", payload["pendentes"])
	}
	if payload["geradoEm"] == "" || payload["geradoEm"] == nil {
		t.Error("Expected geradoEm timestamp in digest payload")
	}
}

func TestUnconfiguredWebhookIsSkipped(t *testing.T) {
	containers := testutil.SetupTestContainers(t)
	defer containers.Cleanup(t)

	server, received := captureServer(t)
	defer server.Close()

	// Default settings carry no webhook URLs, so nothing may reach
	// the server.
	settingsRepo := repository.NewSettingsRepository(containers.DB)
	if _, err := settingsRepo.Get(); err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	dispatcher := webhook.NewDispatcher(settingsRepo)
	dispatcher.NotifyApproval(testRecord(), "analyst@test.com")
	dispatcher.NotifyPendingDigest(3)

	select {
	case payload := <-received:
		t.Errorf("Expected no delivery for unconfigured URLs, got %v", payload)
	case <-time.After(500 * time.Millisecond):
	}
}
