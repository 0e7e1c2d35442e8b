package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eline/driftline/internal/core"
)

// ErrorResponse is the JSON body written for every error status.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteServiceError maps service errors onto HTTP status codes.
func WriteServiceError(w http.ResponseWriter, err error) {
	var missing *core.MissingParameterError

	switch {
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, core.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &missing):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrInvalidState):
		// One uniform message for every state failure; the specific
		// cause stays in the logs.
		WriteError(w, http.StatusBadRequest, core.ErrInvalidState.Error())
	case errors.Is(err, core.ErrEmailTaken),
		errors.Is(err, core.ErrNoToken),
		errors.Is(err, core.ErrNoRefreshToken):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrExchangeFailed),
		errors.Is(err, core.ErrRefreshFailed):
		WriteError(w, http.StatusBadGateway, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
