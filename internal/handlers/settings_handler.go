package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"suprigest/internal/middleware"
	"suprigest/internal/models"
	"suprigest/internal/repository"
)

// SettingsHandler handles the singleton configuration endpoints
type SettingsHandler struct {
	settingsRepo *repository.SettingsRepository
	auditMw      *middleware.AuditMiddleware
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsRepo *repository.SettingsRepository, auditMw *middleware.AuditMiddleware) *SettingsHandler {
	return &SettingsHandler{
		settingsRepo: settingsRepo,
		auditMw:      auditMw,
	}
}

// GetSettings returns the configuration row, creating defaults on
// first read
// @Summary Get settings
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Settings
// @Router /admin/settings [get]
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsRepo.Get()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	respondWithJSON(w, http.StatusOK, settings)
}

// UpdateSettingsRequest is the closed settings field set. Unknown
// fields are rejected by the decoder.
type UpdateSettingsRequest struct {
	WebhookAprovacao          string `json:"webhook_aprovacao"`
	WebhookReprovacao         string `json:"webhook_reprovacao"`
	WebhookNotificacaoCliente string `json:"webhook_notificacao_cliente"`
	WebhookCallback           string `json:"webhook_callback"`
	SchemaAtual               string `json:"schema_atual"`
	AmbienteBanco             string `json:"ambiente_banco"`
}

// UpdateSettings replaces all six configuration columns atomically
// @Summary Update settings
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateSettingsRequest true "Settings"
// @Success 200 {object} models.Settings
// @Failure 400 {object} map[string]string
// @Router /admin/settings [put]
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req UpdateSettingsRequest
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	settings := &models.Settings{
		WebhookAprovacao:          req.WebhookAprovacao,
		WebhookReprovacao:         req.WebhookReprovacao,
		WebhookNotificacaoCliente: req.WebhookNotificacaoCliente,
		WebhookCallback:           req.WebhookCallback,
		SchemaAtual:               req.SchemaAtual,
		AmbienteBanco:             req.AmbienteBanco,
	}

	if err := h.settingsRepo.Update(settings); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	var userID *uuid.UUID
	var userEmail *string
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}
	if email, ok := middleware.GetUserEmail(r.Context()); ok {
		userEmail = &email
	}
	_ = h.auditMw.LogAction(userID, userEmail, "settings.update", "settings", "", getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, settings)
}
