package handler

import (
	"errors"
	"net/http"

	"salespulse-api/internal/http/httperr"
	"salespulse-api/internal/service"
)

type SyncHandler struct {
	service *service.SyncService
}

func NewSyncHandler(service *service.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Status handles GET /v1/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, h.service.Status())
}

// Trigger handles POST /v1/sync. Returns 202 with the initial status
// when a sync was started, 409 when one is already running.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Start(ctx); err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			httperr.Conflict409(w, ctx, httperr.ErrCodeSyncInProgress, "a sync is already in progress")
			return
		}
		handleServiceError(w, ctx, err)
		return
	}

	writeOK(w, http.StatusAccepted, h.service.Status())
}
