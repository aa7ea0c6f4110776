// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tastetrail/feedrank/internal/feed"
	"github.com/tastetrail/feedrank/internal/logging"
)

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError carries a machine-readable code alongside the human message.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta holds request metadata attached to successful responses.
type APIMeta struct {
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta describes cursor pagination for list responses.
type PaginationMeta struct {
	Limit      int     `json:"limit"`
	Count      int     `json:"count"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeViewerInactive     = "VIEWER_INACTIVE"
	ErrCodeInvalidCursor      = "INVALID_CURSOR"
	ErrCodeInvalidCoordinates = "INVALID_COORDINATES"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// ResponseWriter writes APIResponse envelopes with consistent metadata.
type ResponseWriter struct {
	logger zerolog.Logger
}

func NewResponseWriter(logger zerolog.Logger) *ResponseWriter {
	return &ResponseWriter{logger: logger}
}

// Success writes a 200 response with the given payload.
func (rw *ResponseWriter) Success(w http.ResponseWriter, r *http.Request, data interface{}) {
	rw.writeJSON(w, r, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    rw.meta(r, nil),
	})
}

// SuccessWithPagination writes a 200 response carrying pagination metadata.
func (rw *ResponseWriter) SuccessWithPagination(w http.ResponseWriter, r *http.Request, data interface{}, p *PaginationMeta) {
	rw.writeJSON(w, r, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    rw.meta(r, p),
	})
}

// NoContent writes an empty 204 response.
func (rw *ResponseWriter) NoContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error envelope with the given status and code.
func (rw *ResponseWriter) Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	rw.writeJSON(w, r, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// BadRequest writes a 400 error envelope.
func (rw *ResponseWriter) BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	rw.Error(w, r, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized writes a 401 error envelope.
func (rw *ResponseWriter) Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	rw.Error(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// NotFound writes a 404 error envelope.
func (rw *ResponseWriter) NotFound(w http.ResponseWriter, r *http.Request, message string) {
	rw.Error(w, r, http.StatusNotFound, ErrCodeNotFound, message)
}

// EngineError maps ranking engine errors to HTTP status codes and writes
// the envelope. Unknown errors become opaque 500s.
func (rw *ResponseWriter) EngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feed.ErrViewerNotFound):
		rw.Error(w, r, http.StatusNotFound, ErrCodeNotFound, "viewer not found")
	case errors.Is(err, feed.ErrViewerInactive):
		rw.Error(w, r, http.StatusNotFound, ErrCodeViewerInactive, "viewer account is inactive")
	case errors.Is(err, feed.ErrInvalidCursor):
		rw.Error(w, r, http.StatusBadRequest, ErrCodeInvalidCursor, "cursor is malformed or expired")
	case errors.Is(err, feed.ErrInvalidLimit):
		rw.Error(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit out of range")
	case errors.Is(err, feed.ErrInvalidCoordinates):
		rw.Error(w, r, http.StatusBadRequest, ErrCodeInvalidCoordinates, "latitude or longitude out of range")
	case errors.Is(err, feed.ErrStoreUnavailable):
		rw.Error(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "backing store unavailable")
	default:
		rw.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled engine error")
		rw.Error(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

func (rw *ResponseWriter) meta(r *http.Request, p *PaginationMeta) *APIMeta {
	return &APIMeta{
		RequestID:  logging.RequestIDFromContext(r.Context()),
		Timestamp:  time.Now().UTC(),
		Pagination: p,
	}
}

func (rw *ResponseWriter) writeJSON(w http.ResponseWriter, r *http.Request, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		rw.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to encode response")
	}
}
