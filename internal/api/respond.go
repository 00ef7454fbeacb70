package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/models"
	"github.com/tahcohcat/calmkid/internal/tts"
)

type errorBody struct {
	Error   string `json:"error"`
	Balance *int   `json:"balance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.New().WithError(err).Warn("failed to encode response")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyCompleted),
		errors.Is(err, models.ErrAlreadyOwned),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, models.ErrStoreUnavailable), errors.Is(err, tts.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps domain errors to status codes. Internal failures are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var funds *models.InsufficientFundsError
	if errors.As(err, &funds) {
		body.Balance = &funds.Balance
	}
	if status >= http.StatusInternalServerError {
		logger.New().WithError(err).Error("request failed")
		if status == http.StatusInternalServerError {
			body.Error = "Internal Server Error"
		}
	}
	writeJSON(w, status, body)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Invalid("body", "invalid request body: %v", err)
	}
	return nil
}
