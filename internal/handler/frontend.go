// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP handlers of the public site.
package handler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/olegiv/corporate-blue/internal/form"
	"github.com/olegiv/corporate-blue/internal/middleware"
	"github.com/olegiv/corporate-blue/internal/module"
	"github.com/olegiv/corporate-blue/internal/render"
	"github.com/olegiv/corporate-blue/internal/theme"
	"github.com/olegiv/corporate-blue/internal/util"
)

// SearchFormID identifies the site search form passed to form hooks.
const SearchFormID = "search_block_form"

// Template keys looked up in the active theme's configuration.
const (
	templateFront  = "front"
	templatePage   = "page"
	templateSearch = "search"
	template404    = "404"
)

// CommentLister returns the comments shown under a page.
type CommentLister interface {
	ListComments(ctx context.Context, slug string) ([]*render.CommentContext, error)
}

// NoComments is a CommentLister for sites without comment storage. Pages
// still pass through the comment hook path, which simply sees no comments.
type NoComments struct{}

// ListComments always returns no comments.
func (NoComments) ListComments(context.Context, string) ([]*render.CommentContext, error) {
	return nil, nil
}

// FrontendHandler renders public pages with the active theme. Every page
// passes through the page preprocess hooks before rendering.
type FrontendHandler struct {
	themes    *theme.Manager
	hooks     *module.HookRegistry
	comments  CommentLister
	frontPage string
	logger    *slog.Logger
}

// NewFrontendHandler creates a frontend handler. comments may be nil.
func NewFrontendHandler(themes *theme.Manager, hooks *module.HookRegistry, comments CommentLister, frontPage string, logger *slog.Logger) *FrontendHandler {
	if frontPage == "" {
		frontPage = "/"
	}
	return &FrontendHandler{
		themes:    themes,
		hooks:     hooks,
		comments:  comments,
		frontPage: frontPage,
		logger:    logger,
	}
}

// Home handles GET / (the front page).
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	pc := h.newPageContext(r)
	h.render(w, r, pc, templateFront, http.StatusOK)
}

// Page handles GET /page/{slug}.
func (h *FrontendHandler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		h.NotFound(w, r)
		return
	}

	pc := h.newPageContext(r)
	pc.Title = cases.Title(language.Make(pc.Lang)).String(strings.ReplaceAll(slug, "-", " "))

	if h.comments != nil {
		comments, err := h.comments.ListComments(r.Context(), slug)
		if err != nil {
			h.logger.Error("failed to list comments", "slug", slug, "error", err)
			h.renderError(w, http.StatusInternalServerError)
			return
		}
		for _, c := range comments {
			if err := h.hooks.PreprocessComment(r.Context(), c); err != nil {
				h.logger.Error("comment preprocess failed", "slug", slug, "error", err)
				h.renderError(w, http.StatusInternalServerError)
				return
			}
		}
		if len(comments) > 0 {
			pc.Set("Comments", comments)
		}
	}

	h.render(w, r, pc, templatePage, http.StatusOK)
}

// Search handles GET /search.
func (h *FrontendHandler) Search(w http.ResponseWriter, r *http.Request) {
	pc := h.newPageContext(r)
	query := strings.TrimSpace(r.URL.Query().Get(SearchFormID))
	pc.Title = h.themes.Translate(pc.Lang, "Search")

	f, err := h.searchForm(r.Context(), pc.Lang, query)
	if err != nil {
		h.logger.Error("search form alter failed", "error", err)
		h.renderError(w, http.StatusInternalServerError)
		return
	}
	pc.Set("SearchForm", f.Render())
	pc.Set("Query", query)

	h.render(w, r, pc, templateSearch, http.StatusOK)
}

// NotFound renders the theme's 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	pc := h.newPageContext(r)
	pc.Title = h.themes.Translate(pc.Lang, "Page not found")
	h.render(w, r, pc, template404, http.StatusNotFound)
}

// newPageContext creates the page context shared by all frontend pages.
func (h *FrontendHandler) newPageContext(r *http.Request) *render.PageContext {
	lang := middleware.GetLanguage(r)
	return render.NewPageContext(r.URL.Path, r.URL.Path == h.frontPage, lang)
}

// searchForm builds the search form and runs the form hooks on it.
func (h *FrontendHandler) searchForm(ctx context.Context, lang, query string) (*form.Form, error) {
	label := h.themes.Translate(lang, "Search")
	f := form.New(SearchFormID, "/search", "get").Add(
		&form.Element{
			Name:       SearchFormID,
			Type:       form.TypeTextField,
			Title:      h.themes.Translate(lang, "Search this site"),
			Value:      query,
			Attributes: map[string]string{"size": "15", "maxlength": "128"},
		},
		&form.Element{Name: "actions", Type: form.TypeContainer, Children: []*form.Element{
			{Name: "submit", Type: form.TypeSubmit, Value: label},
		}},
	)
	if err := h.hooks.AlterForm(ctx, SearchFormID, lang, f); err != nil {
		return nil, err
	}
	return f, nil
}

// render runs the page hooks and renders the page with the active theme.
func (h *FrontendHandler) render(w http.ResponseWriter, r *http.Request, pc *render.PageContext, templateKey string, status int) {
	activeTheme := h.themes.GetActiveTheme()
	if activeTheme == nil {
		h.logger.Error("no active theme")
		h.renderError(w, http.StatusInternalServerError)
		return
	}
	pc.Theme = activeTheme.Name

	block, err := h.searchForm(r.Context(), pc.Lang, "")
	if err != nil {
		h.logger.Error("search block alter failed", "error", err)
		h.renderError(w, http.StatusInternalServerError)
		return
	}
	pc.Set("SearchBlock", block.Render())

	if err := h.hooks.PreprocessPage(r.Context(), pc); err != nil {
		h.logger.Error("page preprocess failed", "path", pc.Path, "error", err)
		h.renderError(w, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	name := activeTheme.GetTemplate(templateKey)
	if err := activeTheme.RenderPage(&buf, name, pc); err != nil {
		h.logger.Error("failed to render template", "template", name, "error", err)
		h.renderError(w, http.StatusInternalServerError)
		return
	}
	render.HTML(w, status, &buf)
}

// renderError writes a minimal error page that does not depend on the theme.
func (h *FrontendHandler) renderError(w http.ResponseWriter, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Error</title></head>
<body>
<h1>%d - %s</h1>
<p>An error occurred while processing your request.</p>
</body>
</html>`, statusCode, template.HTMLEscapeString(http.StatusText(statusCode)))
}
