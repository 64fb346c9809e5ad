// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/corporate-blue/internal/i18n"
	"github.com/olegiv/corporate-blue/internal/store"
)

// Registry manages module registration and lifecycle.
type Registry struct {
	modules      map[string]Module
	order        []string // initialization order
	activeStatus map[string]bool
	ctx          *Context
	logger       *slog.Logger
	mu           sync.RWMutex
}

// NewRegistry creates a new module registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		modules:      make(map[string]Module),
		activeStatus: make(map[string]bool),
		logger:       logger,
	}
}

// Register adds a module to the registry.
// Modules are initialized in the order they are added.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}

	r.modules[name] = m
	r.order = append(r.order, name)
	r.logger.Info("module registered", "name", name, "version", m.Version())

	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]
	return m, ok
}

// List returns all registered modules in registration order.
func (r *Registry) List() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modules := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		modules = append(modules, r.modules[name])
	}
	return modules
}

// Count returns the number of registered modules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// InitAll checks dependencies, runs module migrations, loads active status
// and initializes every module in registration order. The hook registry of
// ctx is wired to skip handlers of inactive modules.
func (r *Registry) InitAll(ctx *Context) error {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	if err := r.checkDependencies(); err != nil {
		return err
	}

	q := store.New(ctx.DB)
	if err := r.runAllMigrations(ctx.DB, q); err != nil {
		return err
	}

	if err := r.loadActiveStatus(q); err != nil {
		return fmt.Errorf("loading module active status: %w", err)
	}

	if ctx.Hooks != nil {
		ctx.Hooks.SetIsModuleActive(r.IsActive)
	}

	for _, name := range r.order {
		m := r.modules[name]
		r.logger.Info("initializing module", "name", name, "active", r.IsActive(name))

		if err := m.Init(ctx); err != nil {
			return fmt.Errorf("initializing module %q: %w", name, err)
		}

		if err := r.loadModuleTranslations(m); err != nil {
			r.logger.Warn("failed to load module translations", "module", name, "error", err)
		}
	}

	return nil
}

// checkDependencies verifies that all module dependencies are registered.
func (r *Registry) checkDependencies() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		for _, dep := range r.modules[name].Dependencies() {
			if _, ok := r.modules[dep]; !ok {
				return fmt.Errorf("module %q depends on %q which is not registered", name, dep)
			}
		}
	}
	return nil
}

// runAllMigrations applies pending module migrations in order.
func (r *Registry) runAllMigrations(db *sql.DB, q *store.Queries) error {
	bg := context.Background()

	for _, name := range r.order {
		for _, mig := range r.modules[name].Migrations() {
			applied, err := q.IsModuleMigrationApplied(bg, name, mig.Version)
			if err != nil {
				return fmt.Errorf("checking migration status for %s v%d: %w", name, mig.Version, err)
			}
			if applied {
				continue
			}

			r.logger.Info("applying migration", "module", name, "version", mig.Version, "description", mig.Description)

			if err := mig.Up(db); err != nil {
				return fmt.Errorf("running migration %s v%d: %w", name, mig.Version, err)
			}
			if err := q.RecordModuleMigration(bg, name, mig.Version); err != nil {
				return fmt.Errorf("recording migration %s v%d: %w", name, mig.Version, err)
			}
		}
	}
	return nil
}

// loadActiveStatus loads the active flag of every module. Unknown modules
// are stored as active.
func (r *Registry) loadActiveStatus(q *store.Queries) error {
	bg := context.Background()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		active, err := q.GetModuleActive(bg, name)
		if errors.Is(err, sql.ErrNoRows) {
			if err := q.InsertModule(bg, name, true); err != nil {
				return fmt.Errorf("inserting module %s: %w", name, err)
			}
			active = true
		} else if err != nil {
			return fmt.Errorf("loading active status for module %s: %w", name, err)
		}
		r.activeStatus[name] = active
	}
	return nil
}

// IsActive returns whether a module is active. Modules are active until
// InitAll loads a stored status saying otherwise.
func (r *Registry) IsActive(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active, ok := r.activeStatus[name]
	return !ok || active
}

// SetActive sets a module's active status and persists it.
func (r *Registry) SetActive(name string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; !exists {
		return fmt.Errorf("module %q not registered", name)
	}
	if r.ctx == nil || r.ctx.DB == nil {
		return fmt.Errorf("registry not initialized")
	}

	if _, err := store.New(r.ctx.DB).SetModuleActive(context.Background(), name, active); err != nil {
		return fmt.Errorf("updating module status: %w", err)
	}

	r.activeStatus[name] = active
	r.logger.Info("module status changed", "module", name, "active", active)
	return nil
}

// loadModuleTranslations merges a module's locales into the global catalog.
func (r *Registry) loadModuleTranslations(m Module) error {
	transFS := m.TranslationsFS()
	if transFS == nil {
		return nil
	}
	if _, err := fs.ReadDir(transFS, "locales"); err != nil {
		return nil
	}

	if err := i18n.LoadTranslationsFromFS(transFS, "."); err != nil {
		return fmt.Errorf("loading translations for module %s: %w", m.Name(), err)
	}
	return nil
}

// ShutdownAll shuts down all modules in reverse order.
func (r *Registry) ShutdownAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		r.logger.Info("shutting down module", "name", name)

		if err := r.modules[name].Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutting down module %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// RouteAll registers all module public routes behind an active-status check.
func (r *Registry) RouteAll(router chi.Router) {
	r.routeAll(router, func(m Module, sub chi.Router) { m.RegisterRoutes(sub) })
}

// AdminRouteAll registers all module admin routes behind an active-status check.
func (r *Registry) AdminRouteAll(router chi.Router) {
	r.routeAll(router, func(m Module, sub chi.Router) { m.RegisterAdminRoutes(sub) })
}

func (r *Registry) routeAll(router chi.Router, register func(Module, chi.Router)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		m := r.modules[name]
		router.Group(func(sub chi.Router) {
			sub.Use(r.moduleActiveMiddleware(name))
			register(m, sub)
		})
	}
}

// moduleActiveMiddleware answers 404 while the module is inactive.
func (r *Registry) moduleActiveMiddleware(moduleName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !r.IsActive(moduleName) {
				r.logger.Debug("blocked request to inactive module", "module", moduleName, "path", req.URL.Path)
				http.NotFound(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// AllTemplateFuncs returns combined template functions from all active modules.
func (r *Registry) AllTemplateFuncs() template.FuncMap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	funcs := make(template.FuncMap)
	for _, name := range r.order {
		if active, ok := r.activeStatus[name]; ok && !active {
			continue
		}
		for k, v := range r.modules[name].TemplateFuncs() {
			funcs[k] = v
		}
	}
	return funcs
}

// Info describes a registered module.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	Migrations  int    `json:"migrations"`
}

// ListInfo returns information about all registered modules.
func (r *Registry) ListInfo() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		m := r.modules[name]
		active, ok := r.activeStatus[name]
		infos = append(infos, Info{
			Name:        name,
			Version:     m.Version(),
			Description: m.Description(),
			Active:      !ok || active,
			Migrations:  len(m.Migrations()),
		})
	}
	return infos
}
