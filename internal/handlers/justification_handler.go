package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"suprigest/internal/middleware"
	"suprigest/internal/repository"
	"suprigest/internal/service"
)

// JustificationHandler handles justification record endpoints
type JustificationHandler struct {
	justificationRepo *repository.JustificationRepository
	reviewService     *service.ReviewService
	auditMw           *middleware.AuditMiddleware
}

// NewJustificationHandler creates a new justification handler
func NewJustificationHandler(justificationRepo *repository.JustificationRepository, reviewService *service.ReviewService, auditMw *middleware.AuditMiddleware) *JustificationHandler {
	return &JustificationHandler{
		justificationRepo: justificationRepo,
		reviewService:     reviewService,
		auditMw:           auditMw,
	}
}

func parsePaginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}

// ListRecords lists justification records with optional filters
// @Summary List justification records
// @Tags justifications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (pendente, aprovado, reprovado)"
// @Param organization query string false "Organization filter"
// @Param tipo_envio query string false "Shipment type filter"
// @Param search query string false "Search over form, supply and serial numbers"
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Router /justifications [get]
func (h *JustificationHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	filters := repository.JustificationFilters{
		Status:       r.URL.Query().Get("status"),
		Organization: r.URL.Query().Get("organization"),
		TipoEnvio:    r.URL.Query().Get("tipo_envio"),
		Search:       r.URL.Query().Get("search"),
	}
	limit, offset := parsePaginationParams(r)

	records, err := h.justificationRepo.GetAllWithFilters(filters, limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list records")
		return
	}

	total, err := h.justificationRepo.CountWithFilters(filters)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to count records")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetRecord returns a single justification record
// @Summary Get justification record
// @Tags justifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} models.JustificationRecord
// @Failure 404 {object} map[string]string
// @Router /justifications/{id} [get]
func (h *JustificationHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRecordID)
		return
	}

	record, err := h.justificationRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgRecordNotFound)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get record")
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// ApproveRecord approves a pending record
// @Summary Approve record
// @Tags justifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} models.JustificationRecord
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /justifications/{id}/approve [post]
func (h *JustificationHandler) ApproveRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRecordID)
		return
	}

	reviewer, _ := middleware.GetUserEmail(r.Context())

	record, err := h.reviewService.Approve(id, reviewer)
	if err != nil {
		h.respondReviewError(w, err)
		return
	}

	h.audit(r, "record.approve", "justifications/"+id.String(), "")

	respondWithJSON(w, http.StatusOK, record)
}

// RejectRequest is the rejection request body
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectRecord rejects a pending record with a reason
// @Summary Reject record
// @Tags justifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param request body RejectRequest true "Rejection reason"
// @Success 200 {object} models.JustificationRecord
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /justifications/{id}/reject [post]
func (h *JustificationHandler) RejectRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRecordID)
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	reviewer, _ := middleware.GetUserEmail(r.Context())

	record, err := h.reviewService.Reject(id, reviewer, req.Reason)
	if err != nil {
		h.respondReviewError(w, err)
		return
	}

	h.audit(r, "record.reject", "justifications/"+id.String(), "reason="+req.Reason)

	respondWithJSON(w, http.StatusOK, record)
}

// GetDownload returns the evidence download reference for a record
// @Summary Get evidence download reference
// @Tags justifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /justifications/{id}/download [get]
func (h *JustificationHandler) GetDownload(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRecordID)
		return
	}

	download, filename, err := h.reviewService.DownloadInfo(id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgRecordNotFound)
			return
		}
		if errors.Is(err, service.ErrDownloadUnavailable) {
			respondWithError(w, http.StatusConflict, "Record has no downloadable evidence")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to get download reference")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"download": download,
		"filename": filename,
	})
}

func (h *JustificationHandler) respondReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		respondWithError(w, http.StatusNotFound, ErrMsgRecordNotFound)
	case errors.Is(err, service.ErrAlreadyDecided):
		respondWithError(w, http.StatusConflict, "Record was already decided")
	case errors.Is(err, service.ErrEmptyReason):
		respondWithError(w, http.StatusBadRequest, "Rejection reason is required")
	default:
		respondWithError(w, http.StatusInternalServerError, "Failed to store review decision")
	}
}

func (h *JustificationHandler) audit(r *http.Request, action, resource, details string) {
	var userID *uuid.UUID
	var userEmail *string
	if id, ok := middleware.GetUserID(r.Context()); ok {
		userID = &id
	}
	if email, ok := middleware.GetUserEmail(r.Context()); ok {
		userEmail = &email
	}
	_ = h.auditMw.LogAction(userID, userEmail, action, resource, details, getIP(r), r.UserAgent())
}
