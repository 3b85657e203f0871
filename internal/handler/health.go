// Package handler contains the HTTP handlers for the videohub API.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements the http.Handler interface:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Or more commonly, a function with the http.HandlerFunc signature, which
// chi's router accepts directly.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (path params, query, JSON body)
// 2. Call the service layer with the authenticated user's id
// 3. Write the response envelope (see response.go)
//
// Ownership checks, uniqueness rules and counters all live in the services.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the process can reach its database.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HandleHealth pings the database with a short timeout.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
