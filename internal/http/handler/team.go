package handler

import (
	"net/http"

	"salespulse-api/internal/service"
)

type TeamHandler struct {
	service *service.DashboardService
}

func NewTeamHandler(service *service.DashboardService) *TeamHandler {
	return &TeamHandler{service: service}
}

// Team handles GET /v1/team
func (h *TeamHandler) Team(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Team(ctx)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	writeOK(w, http.StatusOK, summary)
}
