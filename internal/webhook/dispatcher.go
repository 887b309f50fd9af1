package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"suprigest/internal/models"
	"suprigest/internal/repository"
)

const dispatchTimeout = 10 * time.Second

// Dispatcher delivers review decisions and digests to the operator
// configured webhook URLs. Delivery is fire-and-forget: failures are
// logged and never surfaced to the caller.
type Dispatcher struct {
	settingsRepo *repository.SettingsRepository
	client       *http.Client
}

// NewDispatcher creates a new webhook dispatcher
func NewDispatcher(settingsRepo *repository.SettingsRepository) *Dispatcher {
	return &Dispatcher{
		settingsRepo: settingsRepo,
		client:       &http.Client{Timeout: dispatchTimeout},
	}
}

// decisionPayload is the outbound snapshot of a reviewed record. The
// field names match the stored column names consumed downstream.
type decisionPayload struct {
	models.JustificationRecord
	Evento    string `json:"evento"`
	Revisor   string `json:"revisor"`
	Timestamp string `json:"timestamp"`
	Motivo    string `json:"motivo,omitempty"`
}

// NotifyApproval sends the approval webhook for a reviewed record
func (d *Dispatcher) NotifyApproval(record *models.JustificationRecord, reviewer string) {
	d.notifyDecision("aprovacao", record, reviewer, "")
}

// NotifyRejection sends the rejection webhook, carrying the reason
func (d *Dispatcher) NotifyRejection(record *models.JustificationRecord, reviewer, reason string) {
	d.notifyDecision("reprovacao", record, reviewer, reason)
}

func (d *Dispatcher) notifyDecision(event string, record *models.JustificationRecord, reviewer, reason string) {
	payload := decisionPayload{
		JustificationRecord: *record,
		Evento:              event,
		Revisor:             reviewer,
		Timestamp:           time.Now().Format(time.RFC3339),
		Motivo:              reason,
	}

	go func() {
		settings, err := d.settingsRepo.Get()
		if err != nil {
			slog.Error("Failed to load webhook settings", "event", event, "error", err)
			return
		}

		url := settings.WebhookAprovacao
		if event == "reprovacao" {
			url = settings.WebhookReprovacao
		}

		d.post(event, url, payload)
	}()
}

// NotifyPendingDigest sends the pending-records digest to the client
// notification webhook
func (d *Dispatcher) NotifyPendingDigest(pending int) {
	payload := map[string]interface{}{
		"pendentes": pending,
		"geradoEm":  time.Now().Format(time.RFC3339),
	}

	go func() {
		settings, err := d.settingsRepo.Get()
		if err != nil {
			slog.Error("Failed to load webhook settings", "event", "digest", "error", err)
			return
		}

		d.post("digest", settings.WebhookNotificacaoCliente, payload)
	}()
}

// post performs the actual delivery. An unconfigured URL is a logged
// no-op.
func (d *Dispatcher) post(event, url string, payload interface{}) {
	if url == "" {
		slog.Info("Webhook URL not configured, skipping dispatch", "event", event)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal webhook payload", "event", event, "error", err)
		return
	}

	resp, err := d.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Error("Webhook delivery failed", "event", event, "url", url, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		slog.Warn("Webhook endpoint returned an error",
			"event", event,
			"url", url,
			"status", fmt.Sprintf("%d", resp.StatusCode))
		return
	}

	slog.Debug("Webhook delivered", "event", event, "url", url, "status", resp.StatusCode)
}
