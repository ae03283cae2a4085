package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/logging"
)

const (
	CodeConflict          = "conflict"
	CodeInsufficientFunds = "insufficient_funds"
	CodeNotFound          = "not_found"
	CodeValidation        = "validation"
	CodeInvalidRequest    = "invalid_request"
	CodeInternal          = "internal"

	CodeCheckoutInProgress = "checkout_in_progress"
	CodeRequestInProgress  = "request_in_progress"
)

func logFrom(r *http.Request) *slog.Logger {
	return logging.FromCtx(r.Context())
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.FromCtx(r.Context()).Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		respondError(w, r, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondError(w, r, http.StatusPaymentRequired, CodeInsufficientFunds, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, err.Error())
	case domain.IsValidation(err):
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error())
	default:
		logging.FromCtx(r.Context()).Error("request failed", slog.String("path", r.URL.Path), "error", err)
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body")
		return false
	}
	return true
}

// checkQuantity rejects quantities the stores cannot hold before any store
// is called.
func checkQuantity(w http.ResponseWriter, r *http.Request, quantity int) bool {
	if !domain.ValidQuantity(quantity) {
		respondDomainError(w, r, domain.ErrInvalidQuantity)
		return false
	}
	return true
}
