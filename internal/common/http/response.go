// Package http provides standardized HTTP utilities for the caffeine tracker
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/baely/caffeine/internal/common/errors"
)

// Response is a standardized API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSON writes a JSON response. The body is encoded before the status is
// sent, so a value that cannot be encoded becomes a 500.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if data == nil {
		w.WriteHeader(statusCode)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		body, _ = json.Marshal(Response{Error: "failed to encode response"})
		statusCode = http.StatusInternalServerError
	}

	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Created writes a successful JSON response for a newly created resource
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, err error, statusCode int) {
	JSON(w, statusCode, Response{
		Success: false,
		Error:   err.Error(),
	})
}

// StatusCode maps an error to the HTTP status it should be reported with
func StatusCode(err error) int {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// HandleError determines the appropriate status code based on error type
func HandleError(w http.ResponseWriter, err error) {
	Error(w, err, StatusCode(err))
}

// NewRouter creates a new Chi router with standard middleware
func NewRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	return r
}
