// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package corporate_blue

import (
	"context"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/corporate-blue/internal/settings"
)

// Setting keys owned by the theme.
const (
	KeyBannerSettings = "theme_corporate_blue_banner_settings"
	KeyFirstInstall   = "theme_corporate_blue_first_install"
	KeyThemeDefault   = "theme_default"
)

// Banner is one slide of the front page slider.
// Active and Weight are stored and returned unchanged; they do not
// affect which banners are rendered or in what order.
type Banner struct {
	ImagePath string `json:"image_path" validate:"max=1024"`
	ImageURL  string `json:"image_url" validate:"max=2048"`
	Active    bool   `json:"active"`
	Weight    int    `json:"weight" validate:"gte=-100,lte=100"`
}

// safeURL accepts relative references and http(s) or mailto URLs.
var safeURL = regexp.MustCompile(`^(?:(?i:https?|mailto):.*|[^:]*)$`)

// scriptSchemes are link schemes a browser would execute.
var scriptSchemes = []string{"javascript", "vbscript", "data"}

// sliderPolicy limits slider markup to the elements the renderer emits.
var sliderPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^orbitDemo$`)).OnElements("div")
	p.AllowAttrs("href").OnElements("a")
	p.AllowNoAttrs().OnElements("a")
	p.AllowAttrs("src").Matching(safeURL).OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^img-sl$`)).OnElements("img")
	return p
}()

// GetBanners returns the stored banners in stored order. An unset key
// yields an empty slice. includeInactive is accepted for API
// compatibility; inactive banners are always returned.
func (m *Module) GetBanners(ctx context.Context, includeInactive bool) ([]Banner, error) {
	_ = includeInactive

	banners := []Banner{}
	if _, err := settings.GetJSON(ctx, m.ctx.Settings, KeyBannerSettings, &banners); err != nil {
		return nil, err
	}
	if banners == nil {
		banners = []Banner{}
	}
	return banners, nil
}

// SetBanners replaces the stored banners with a single write.
// Concurrent writers race; the last write wins.
func (m *Module) SetBanners(ctx context.Context, banners []Banner) error {
	if banners == nil {
		banners = []Banner{}
	}
	return settings.SetJSON(ctx, m.ctx.Settings, KeyBannerSettings, banners)
}

// GetBannersVersioned returns the stored banners and their revision.
// The revision is 0 while the key is unset.
func (m *Module) GetBannersVersioned(ctx context.Context) ([]Banner, int64, error) {
	banners := []Banner{}
	revision, err := settings.GetJSONVersioned(ctx, m.ctx.Settings, KeyBannerSettings, &banners)
	if err != nil {
		return nil, 0, err
	}
	if banners == nil {
		banners = []Banner{}
	}
	return banners, revision, nil
}

// SetBannersIfRevision replaces the stored banners only if their revision
// still equals revision. It returns the new revision, or an error wrapping
// settings.ErrVersionConflict.
func (m *Module) SetBannersIfRevision(ctx context.Context, banners []Banner, revision int64) (int64, error) {
	if banners == nil {
		banners = []Banner{}
	}
	return settings.SetJSONIfVersion(ctx, m.ctx.Settings, KeyBannerSettings, banners, revision)
}

// RenderBanners renders all stored banners, in stored order, as linked
// slider images inside the orbitDemo container.
func (m *Module) RenderBanners(ctx context.Context) (template.HTML, error) {
	banners, err := m.GetBanners(ctx, false)
	if err != nil {
		return "", fmt.Errorf("loading banners: %w", err)
	}

	out := renderSlider(banners, m.ctx.Files.URL, m.ctx.Files.BaseURL()+"/")
	m.ctx.Metrics.BannerRendered()
	return out, nil
}

// renderSlider builds the slider markup. resolve maps an image reference
// to its servable URL and home is the link target of banners without one.
func renderSlider(banners []Banner, resolve func(string) string, home string) template.HTML {
	var b strings.Builder
	b.WriteString(`<div id="orbitDemo">`)
	for i, banner := range banners {
		if href, ok := linkTarget(banner.ImageURL, home); ok {
			b.WriteString(`<a href="` + template.HTMLEscapeString(href) + `">`)
		} else {
			b.WriteString(`<a>`)
		}
		b.WriteString(`<img class="img-sl" src="` + template.HTMLEscapeString(resolve(banner.ImagePath)) +
			`" alt="slider image` + strconv.Itoa(i) + `" />`)
		b.WriteString(`</a>`)
	}
	b.WriteString(`</div>`)

	// #nosec G203 -- sanitized by sliderPolicy
	return template.HTML(sliderPolicy.Sanitize(b.String()))
}

// linkTarget returns the href for a banner link. An empty link points at
// home. Links using a script scheme are rejected.
func linkTarget(raw, home string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return home, true
	}

	// Browsers ignore whitespace and control characters inside a scheme.
	normalized := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	scheme, _, found := strings.Cut(normalized, ":")
	if !found || strings.ContainsAny(scheme, "/?#") {
		return raw, true
	}
	for _, s := range scriptSchemes {
		if strings.EqualFold(scheme, s) {
			return "", false
		}
	}
	return raw, true
}
