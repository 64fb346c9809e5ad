// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package module

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/olegiv/corporate-blue/internal/form"
	"github.com/olegiv/corporate-blue/internal/render"
)

// Hook names fired by the frontend handlers.
const (
	// HookPagePreprocess runs before every page render with a *render.PageContext.
	HookPagePreprocess = "page.preprocess"
	// HookCommentPreprocess runs before each comment render with a *render.CommentContext.
	HookCommentPreprocess = "comment.preprocess"
	// HookFormAlter runs before a form is rendered with a *FormAlterData.
	HookFormAlter = "form.alter"
)

// FormAlterData is the payload of HookFormAlter.
type FormAlterData struct {
	FormID string
	Form   *form.Form
	// Lang is the interface language of the request rendering the form.
	Lang string
}

// HookFunc is a function that can be registered as a hook handler.
// It receives a context and data, and returns modified data and an error.
// If the hook returns an error, subsequent hooks are not called.
type HookFunc func(ctx context.Context, data any) (any, error)

// HookHandler wraps a HookFunc with metadata.
type HookHandler struct {
	Name     string   // Name of the handler for debugging
	Module   string   // Module that registered the handler
	Priority int      // Lower priority runs first (default: 0)
	Fn       HookFunc // The actual handler function
}

// IsModuleActiveFunc is a function that checks if a module is active.
type IsModuleActiveFunc func(moduleName string) bool

// ObserveFunc receives the outcome of every Call.
type ObserveFunc func(hookName string, d time.Duration, err error)

// HookRegistry manages hook registration and execution.
type HookRegistry struct {
	hooks          map[string][]HookHandler
	logger         *slog.Logger
	isModuleActive IsModuleActiveFunc
	observe        ObserveFunc
	mu             sync.RWMutex
}

// NewHookRegistry creates a new hook registry.
func NewHookRegistry(logger *slog.Logger) *HookRegistry {
	return &HookRegistry{
		hooks:          make(map[string][]HookHandler),
		logger:         logger,
		isModuleActive: func(string) bool { return true },
	}
}

// SetIsModuleActive sets the callback function to check if a module is active.
func (h *HookRegistry) SetIsModuleActive(fn IsModuleActiveFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isModuleActive = fn
}

// SetObserver sets the callback invoked after every Call, e.g. for metrics.
func (h *HookRegistry) SetObserver(fn ObserveFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observe = fn
}

// Register adds a hook handler for the given hook name.
// Handlers with equal priority keep registration order.
func (h *HookRegistry) Register(hookName string, handler HookHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	handlers := append(h.hooks[hookName], handler)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority < handlers[j].Priority
	})
	h.hooks[hookName] = handlers

	h.logger.Debug("hook registered",
		"hook", hookName,
		"handler", handler.Name,
		"module", handler.Module,
		"priority", handler.Priority,
	)
}

// RegisterFunc is a convenience method to register a hook function with priority 0.
func (h *HookRegistry) RegisterFunc(hookName, handlerName, moduleName string, fn HookFunc) {
	h.Register(hookName, HookHandler{
		Name:   handlerName,
		Module: moduleName,
		Fn:     fn,
	})
}

// Call executes all handlers for the given hook name in priority order.
// Handlers from inactive modules are skipped. The data is passed through
// each handler; the first error stops execution and is returned.
func (h *HookRegistry) Call(ctx context.Context, hookName string, data any) (result any, err error) {
	h.mu.RLock()
	handlers := h.hooks[hookName]
	isModuleActive := h.isModuleActive
	observe := h.observe
	h.mu.RUnlock()

	if len(handlers) == 0 {
		return data, nil
	}

	if observe != nil {
		start := time.Now()
		defer func() { observe(hookName, time.Since(start), err) }()
	}

	h.logger.Debug("calling hooks", "hook", hookName, "handlers", len(handlers))

	current := data
	for _, handler := range handlers {
		if !isModuleActive(handler.Module) {
			continue
		}

		out, err := handler.Fn(ctx, current)
		if err != nil {
			h.logger.Error("hook handler error",
				"hook", hookName,
				"handler", handler.Name,
				"module", handler.Module,
				"error", err,
			)
			return nil, fmt.Errorf("hook %s handler %s: %w", hookName, handler.Name, err)
		}
		current = out
	}

	return current, nil
}

// PreprocessPage runs HookPagePreprocess. Handlers mutate pc in place.
func (h *HookRegistry) PreprocessPage(ctx context.Context, pc *render.PageContext) error {
	_, err := h.Call(ctx, HookPagePreprocess, pc)
	return err
}

// PreprocessComment runs HookCommentPreprocess. Handlers mutate cc in place.
func (h *HookRegistry) PreprocessComment(ctx context.Context, cc *render.CommentContext) error {
	_, err := h.Call(ctx, HookCommentPreprocess, cc)
	return err
}

// AlterForm runs HookFormAlter for the form with the given id.
func (h *HookRegistry) AlterForm(ctx context.Context, formID, lang string, f *form.Form) error {
	_, err := h.Call(ctx, HookFormAlter, &FormAlterData{FormID: formID, Lang: lang, Form: f})
	return err
}

// HasHandlers returns true if there are handlers registered for the hook.
func (h *HookRegistry) HasHandlers(hookName string) bool {
	return h.HandlerCount(hookName) > 0
}

// HandlerCount returns the number of handlers registered for a hook.
func (h *HookRegistry) HandlerCount(hookName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.hooks[hookName])
}

// ListHooks returns all registered hook names, sorted.
func (h *HookRegistry) ListHooks() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.hooks))
	for name := range h.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterAll removes all handlers registered by a module.
func (h *HookRegistry) UnregisterAll(moduleName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for hookName, handlers := range h.hooks {
		kept := handlers[:0:0]
		for _, handler := range handlers {
			if handler.Module != moduleName {
				kept = append(kept, handler)
			}
		}
		h.hooks[hookName] = kept
	}

	h.logger.Debug("all hooks unregistered for module", "module", moduleName)
}
