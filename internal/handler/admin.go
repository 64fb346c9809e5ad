// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/olegiv/corporate-blue/internal/module"
	"github.com/olegiv/corporate-blue/internal/store"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// eventLevels are the levels persisted by logging.EventLogHandler.
var eventLevels = []string{"warn", "error"}

// ModuleLister lists registered modules.
type ModuleLister interface {
	ListInfo() []module.Info
}

// AdminHandler serves read-only diagnostics under /admin.
type AdminHandler struct {
	queries *store.Queries
	modules ModuleLister
	logger  *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(queries *store.Queries, modules ModuleLister, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{queries: queries, modules: modules, logger: logger}
}

// Routes mounts the handler on an admin router.
func (h *AdminHandler) Routes(r chi.Router) {
	r.Get("/events", h.Events)
	r.Get("/settings", h.Settings)
	r.Get("/modules", h.Modules)
}

type eventResponse struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Events handles GET /admin/events?limit=N, newest first, with totals per level.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxEventLimit {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "limit must be between 1 and " + strconv.Itoa(maxEventLimit)})
			return
		}
		limit = n
	}

	events, err := h.queries.ListEvents(r.Context(), int64(limit))
	if err != nil {
		h.internalError(w, r, "listing events", err)
		return
	}

	counts := make(map[string]int64, len(eventLevels))
	for _, level := range eventLevels {
		n, err := h.queries.CountEventsByLevel(r.Context(), level)
		if err != nil {
			h.internalError(w, r, "counting events", err)
			return
		}
		counts[level] = n
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse(e))
	}
	render.JSON(w, r, map[string]any{"counts": counts, "events": out})
}

type variableResponse struct {
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings handles GET /admin/settings. Values are not included; use the
// owning module's API to read them.
func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	vars, err := h.queries.ListVariables(r.Context())
	if err != nil {
		h.internalError(w, r, "listing settings", err)
		return
	}
	out := make([]variableResponse, 0, len(vars))
	for _, v := range vars {
		out = append(out, variableResponse{Name: v.Name, Version: v.Version, Size: len(v.Value), UpdatedAt: v.UpdatedAt})
	}
	render.JSON(w, r, out)
}

// Modules handles GET /admin/modules.
func (h *AdminHandler) Modules(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.modules.ListInfo())
}

func (h *AdminHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "error", err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}
