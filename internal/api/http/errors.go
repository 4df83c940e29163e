package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"garage-booking/internal/domain"
	"garage-booking/internal/logger"
)

const (
	codeNotFound           = "not_found"
	codeMethodNotAllowed   = "method_not_allowed"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidID          = "invalid_id"
	codeUnauthorized       = "unauthorized"
	codeInvalidCredentials = "invalid_credentials"
	codeAccountDisabled    = "account_disabled"
	codeForbidden          = "forbidden"
	codeBookingNotFound    = "booking_not_found"
	codeVehicleNotFound    = "vehicle_not_found"
	codeItemNotFound       = "item_not_found"
	codeLocationNotFound   = "location_not_found"
	codeInvalidTransition  = "invalid_transition"
	codeAlreadyCancelled   = "already_cancelled"
	codeLookupUnavailable  = "lookup_unavailable"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

var notFoundCodes = []struct {
	err  error
	code string
}{
	{domain.ErrBookingNotFound, codeBookingNotFound},
	{domain.ErrVehicleNotFound, codeVehicleNotFound},
	{domain.ErrItemNotFound, codeItemNotFound},
	{domain.ErrLocationNotFound, codeLocationNotFound},
}

// writeServiceError maps a service error onto the response envelope.
// Unrecognised errors are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Code: verr.Code, Field: verr.Field})
		return
	}
	for _, nf := range notFoundCodes {
		if errors.Is(err, nf.err) {
			writeError(w, http.StatusNotFound, nf.code, nf.err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, codeAlreadyCancelled, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
	case errors.Is(err, domain.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, codeAccountDisabled, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
