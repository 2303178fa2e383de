package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"salespulse-api/internal/crm"
	"salespulse-api/internal/domain"
	"salespulse-api/internal/http/httperr"
	"salespulse-api/internal/observability/logger"
	"salespulse-api/internal/service"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ConnectionHandler struct {
	httpClient *http.Client
	log        *logger.Logger
}

func NewConnectionHandler(httpClient *http.Client, log *logger.Logger) *ConnectionHandler {
	return &ConnectionHandler{httpClient: httpClient, log: log}
}

// Test handles POST /v1/connection/test. It validates the credentials
// payload and attempts a one-off authenticate without touching the
// server's live session or fallback state.
func (h *ConnectionHandler) Test(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req domain.ConnectionTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidFormat, "invalid JSON body")
		return
	}

	if err := req.Validate(); err != nil {
		fields := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = "failed " + fe.Tag() + " validation"
			}
		}
		httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeValidationError, "invalid credentials payload", fields)
		return
	}

	cfg := crm.Config{
		TokenURL:      req.TokenURL,
		ClientID:      req.ClientID,
		ClientSecret:  req.ClientSecret,
		Username:      req.Username,
		Password:      req.Password,
		SecurityToken: req.SecurityToken,
		HTTPClient:    h.httpClient,
	}

	result := domain.ConnectionTestResult{Connected: true}
	if err := service.TestConnection(ctx, cfg, h.log); err != nil {
		log.Warn(ctx, "connection test failed",
			logger.Module("connection"),
			logger.Action("test"),
			zap.Error(err),
		)
		result.Connected = false
		result.Error = err.Error()
	}

	writeOK(w, http.StatusOK, result)
}
