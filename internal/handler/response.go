// Package handler contains the HTTP request handlers: the server-rendered
// pages, the login flow, and the internal JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/splatr/splatr/internal/apperror"
	"github.com/splatr/splatr/internal/middleware"
)

// DataResponse is the envelope every internal API success response uses.
type DataResponse struct {
	Metadata middleware.Metadata `json:"_metadata"`
	Data     any                 `json:"data"`
}

// ErrorResponse is the standard error format for API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP response. The detailed cause
// is logged server-side; clients only ever see the generic message for 5xx
// responses, never the internal error text.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("request failed", slog.String("error", err.Error()))

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, logger, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, logger, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, logger, http.StatusConflict, ErrorResponse{Error: "conflict", Message: appErr.Message})
			return
		}
	}

	writeJSON(w, logger, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// NotFound answers unmatched routes with a plain-text 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("404 NOT FOUND"))
}
