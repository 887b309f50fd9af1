package handlers

import (
	"net/http"
	"time"

	"suprigest/internal/repository"
	"suprigest/internal/service"
)

// DashboardHandler serves the aggregated dashboard metrics
type DashboardHandler struct {
	justificationRepo *repository.JustificationRepository
	metricsService    *service.MetricsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(justificationRepo *repository.JustificationRepository, metricsService *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{
		justificationRepo: justificationRepo,
		metricsService:    metricsService,
	}
}

// GetMetrics returns the full dashboard payload, recomputed from the
// current record set
// @Summary Dashboard metrics
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardMetrics
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	records, err := h.justificationRepo.GetAll()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load records")
		return
	}

	metrics := h.metricsService.Compute(records, time.Now())

	respondWithJSON(w, http.StatusOK, metrics)
}
