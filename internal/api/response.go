// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Package api exposes the recommendation engine over HTTP with a Chi
// router. All endpoints share one response envelope so clients can handle
// success and failure uniformly.
package api

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/meetra-labs/recommend/internal/logging"
)

// APIResponse is the envelope every endpoint writes.
type APIResponse struct {
	// Success indicates whether the request was handled.
	Success bool `json:"success"`

	// Data carries the payload on success.
	Data interface{} `json:"data,omitempty"`

	// Error carries error details on failure.
	Error *APIError `json:"error,omitempty"`

	// Meta carries request tracing information.
	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError is the machine-readable error payload.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta carries tracing metadata alongside the payload.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes for API responses.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"
)

// respondOK writes a 200 success envelope.
func respondOK(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID: chimiddleware.GetReqID(r.Context()),
			Timestamp: time.Now().UTC(),
		},
	})
}

// respondError writes an error envelope with the given status.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta: &APIMeta{
			RequestID: chimiddleware.GetReqID(r.Context()),
			Timestamp: time.Now().UTC(),
		},
	})
}

// writeJSON encodes the envelope with goccy/go-json.
func writeJSON(w http.ResponseWriter, status int, payload APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON response")
	}
}
