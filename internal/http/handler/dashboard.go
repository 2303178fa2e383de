package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"salespulse-api/internal/crm"
	"salespulse-api/internal/http/httperr"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/service"

	"go.uber.org/zap"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview handles GET /v1/dashboard/overview
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overview, err := h.service.Overview(ctx)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	writeOK(w, http.StatusOK, overview)
}

// Insights handles GET /v1/dashboard/insights?strategy=rules|stats&limit=1..4
func (h *DashboardHandler) Insights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	strategy := r.URL.Query().Get("strategy")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 4 {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidLimit, "limit must be between 1 and 4")
			return
		}
		limit = parsed
	}

	insights, err := h.service.Insights(ctx, strategy)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	if limit > 0 && len(insights) > limit {
		insights = insights[:limit]
	}

	writeOK(w, http.StatusOK, insights)
}

// Forecast handles GET /v1/dashboard/forecast?months=1..12
func (h *DashboardHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	months := 6 // Default
	if monthsStr := r.URL.Query().Get("months"); monthsStr != "" {
		parsed, err := strconv.Atoi(monthsStr)
		if err != nil || parsed < 1 || parsed > 12 {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "months must be between 1 and 12")
			return
		}
		months = parsed
	}

	points, err := h.service.MonthlyForecast(ctx, months)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	writeOK(w, http.StatusOK, points)
}

// QuarterForecast handles GET /v1/dashboard/forecast/quarters
func (h *DashboardHandler) QuarterForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	outlook, err := h.service.QuarterOutlook(ctx)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	writeOK(w, http.StatusOK, outlook)
}

// Helpers shared by the dashboard surface.

func writeOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":   true,
		"data": data,
	})
}

// handleServiceError maps service failures onto the error envelope.
// Upstream CRM failures surface as 502 so operators can tell them
// apart from our own faults.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error) {
	log := logger.GetLogger(ctx)
	logger.SetRootError(ctx, err)

	var apiErr *crm.APIError
	switch {
	case errors.Is(err, service.ErrUnknownStrategy):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStrategy, "strategy must be rules or stats")
	case errors.Is(err, service.ErrInvalidStage):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStage, "unknown pipeline stage")
	case errors.Is(err, service.ErrSyncInProgress):
		httperr.Conflict409(w, ctx, httperr.ErrCodeSyncInProgress, "a sync is already in progress")
	case errors.As(err, &apiErr):
		httperr.BadGateway502(w, ctx, httperr.ErrCodeUpstreamError, apiErr.Message)
	default:
		log.Error(ctx, "internal error",
			logger.Module("handler"),
			logger.Action("request"),
			zap.Error(err),
		)
		httperr.InternalError(w, ctx)
	}
}
