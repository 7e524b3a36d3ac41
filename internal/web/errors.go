package web

// errors.go provides unified error responses for the API.
//
// Every error is logged server-side with the request ID and answered with
// {detail, code, action}. detail carries the failing file and technical cause
// for processing failures; code and action come from core.MapError.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/tradecsv/internal/core"
	"github.com/JonMunkholm/tradecsv/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Action string `json:"action,omitempty"`
}

// respondError logs err and writes it as an ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	writeJSON(w, statusCode, ErrorResponse{
		Detail: core.Detail(err),
		Code:   userMsg.Code,
		Action: userMsg.Action,
	})
}

// statusFor maps a batch error to its HTTP status. Processing failures
// (*core.FileError) and everything unexpected are 500s.
func statusFor(err error) int {
	switch {
	case core.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyBatches):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
