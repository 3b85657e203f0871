package handler

// RESPONSE HELPERS:
// Every endpoint answers with one of three JSON envelopes:
//
//	single: {"success": true, "message": "...", "data": {...}}
//	list:   {"success": true, "count": 3, "total": 40,
//	         "pagination": {"page": 1, "limit": 12, "pages": 4}, "data": [...]}
//	error:  {"success": false, "message": "Video not found"}
//
// Handlers never build these by hand; they call writeData, writePage or
// writeError so the shape cannot drift between endpoints.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/service"
)

// Response is the envelope for a single resource or a plain acknowledgement.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse is the envelope for an unpaginated collection.
type ListResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

// PageResponse is the envelope for a paginated collection.
type PageResponse struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Total      int        `json:"total"`
	Pagination Pagination `json:"pagination"`
	Data       any        `json:"data"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body is written. Once Encode
// writes, the headers are on the wire and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Success: true, Count: len(items), Data: items})
}

func writePage[T any](w http.ResponseWriter, page *service.Page[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, PageResponse{
		Success: true,
		Count:   len(items),
		Total:   page.Total,
		Pagination: Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.Pages(),
		},
		Data: items,
	})
}

// writeError maps a domain error to an HTTP status and sends the error
// envelope.
//
// ERROR MAPPING:
// The service layer returns apperror sentinels wrapped in *AppError; this is
// the one place they become status codes. errors.Is walks the whole wrap
// chain, so fmt.Errorf("...: %w", appErr) still maps correctly.
//
// Anything untyped is an internal failure: it is logged with the request
// path and the client only sees a generic message. Raw errors can carry SQL
// or file paths.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrInvalidOperation):
			status = http.StatusBadRequest // 400
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized // 401
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden // 403
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound // 404
		}
		if status != http.StatusInternalServerError {
			writeJSON(w, status, Response{Success: false, Message: appErr.Message})
			return
		}
	}

	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, Response{
		Success: false,
		Message: "Server error",
	})
}
