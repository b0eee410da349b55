package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
)

const (
	CodeValidationFailed = "validation_failed"
	CodeInvalidBody      = "invalid_request_body"
	CodeNotFound         = "not_found"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeConflict         = "conflict"
	CodeUpstream         = "upstream_failure"
	CodeInternal         = "internal_error"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// Classify maps an error onto an HTTP status and a stable machine code.
func Classify(err error) (int, string) {
	if _, ok := apperr.AsValidation(err); ok {
		return http.StatusBadRequest, CodeValidationFailed
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusBadGateway, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes err as a JSON error body. Internal errors are logged
// and their text is not leaked to the caller.
func RespondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code := Classify(err)
	body := errorResponse{Error: err.Error(), Code: code}
	if v, ok := apperr.AsValidation(err); ok {
		body.Error = "validation failed"
		body.Fields = v.Fields
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		body.Error = "internal error"
	}
	RespondJSON(w, status, body)
}

// DecodeJSON reads the request body into v. A malformed body is reported as a
// validation error on the "body" field.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Invalid("body", fmt.Sprintf("invalid json: %v", err))
	}
	return nil
}
