package handler

import (
	"net/http"
	"strconv"

	"salespulse-api/internal/http/httperr"
	"salespulse-api/internal/service"
)

type DealHandler struct {
	service *service.DashboardService
}

func NewDealHandler(service *service.DashboardService) *DealHandler {
	return &DealHandler{service: service}
}

// ListDeals handles GET /v1/deals?stage=&q=&limit=
func (h *DealHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stage := r.URL.Query().Get("stage")
	query := r.URL.Query().Get("q")

	limit := 0 // unlimited
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 1000 {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidLimit, "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}

	deals, err := h.service.Deals(ctx, stage, query, limit)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	writeOK(w, http.StatusOK, deals)
}

// Pipeline handles GET /v1/pipeline
func (h *DealHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stages, err := h.service.Pipeline(ctx)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	writeOK(w, http.StatusOK, stages)
}
