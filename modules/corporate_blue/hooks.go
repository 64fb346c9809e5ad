// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package corporate_blue

import (
	"context"
	"fmt"
	"html/template"

	"github.com/olegiv/corporate-blue/internal/form"
	"github.com/olegiv/corporate-blue/internal/module"
	"github.com/olegiv/corporate-blue/internal/render"
	"github.com/olegiv/corporate-blue/internal/settings"
	"github.com/olegiv/corporate-blue/internal/theme"
)

// SearchFormID is the form whose controls the theme restyles.
const SearchFormID = "search_block_form"

// Theme assets referenced by the hooks.
const (
	sliderScript     = "js/slide.js"
	sliderStylesheet = "css/slider.css"
	searchIcon       = "images/search_icon.png"
	defaultPhoto     = "images/default.png"

	sliderIntervalSetting = "slider_interval"
)

// registerHooks wires the theme into the page, comment and form pipelines.
func (m *Module) registerHooks() {
	m.ctx.Hooks.Register(module.HookPagePreprocess, module.HookHandler{
		Name:   "corporate_blue_preprocess_page",
		Module: m.Name(),
		Fn:     m.preprocessPage,
	})
	m.ctx.Hooks.Register(module.HookCommentPreprocess, module.HookHandler{
		Name:   "corporate_blue_preprocess_comment",
		Module: m.Name(),
		Fn:     m.preprocessComment,
	})
	m.ctx.Hooks.Register(module.HookFormAlter, module.HookHandler{
		Name:   "corporate_blue_form_alter",
		Module: m.Name(),
		Fn:     m.alterForm,
	})
}

// themeActive reports whether pages are rendered with this theme.
func (m *Module) themeActive() bool {
	if m.ctx.Themes == nil {
		return true
	}
	t := m.ctx.Themes.GetActiveTheme()
	return t == nil || t.Name == ThemeName
}

// preprocessPage installs the default banners on first run, exposes the
// slider markup as Banner and adds the slider assets to the front page.
func (m *Module) preprocessPage(ctx context.Context, data any) (any, error) {
	pc, ok := data.(*render.PageContext)
	if !ok {
		return data, fmt.Errorf("page preprocess: unexpected data %T", data)
	}
	if !m.themeActive() {
		return pc, nil
	}

	if err := m.EnsureInstalled(ctx); err != nil {
		return nil, err
	}

	banner, err := m.RenderBanners(ctx)
	if err != nil {
		return nil, err
	}
	pc.Banner = banner

	if pc.IsFrontPage {
		if pc.Assets == nil {
			pc.Assets = render.NewAssets()
		}
		pc.Assets.AddJS(m.assetURL(sliderScript))
		pc.Assets.AddCSS(m.assetURL(sliderStylesheet))
		if interval := m.sliderInterval(); interval != "" {
			pc.Set("SliderInterval", interval)
		}
	}
	return pc, nil
}

// preprocessComment sets Submitted and the fallback author picture.
func (m *Module) preprocessComment(ctx context.Context, data any) (any, error) {
	cc, ok := data.(*render.CommentContext)
	if !ok {
		return data, fmt.Errorf("comment preprocess: unexpected data %T", data)
	}
	if !m.themeActive() {
		return cc, nil
	}

	cc.Submitted = cc.Created

	themeName, err := settings.GetString(ctx, m.ctx.Settings, KeyThemeDefault, m.ctx.Config.ActiveTheme)
	if err != nil {
		return nil, err
	}
	src := m.ctx.Files.BaseURL() + theme.AssetURL(themeName, defaultPhoto)
	// #nosec G203 -- src is escaped
	cc.DefaultPhoto = template.HTML(`<img src="` + template.HTMLEscapeString(src) + `" />`)
	return cc, nil
}

// alterForm gives the search block a localized placeholder and an image
// submit button.
func (m *Module) alterForm(_ context.Context, data any) (any, error) {
	fa, ok := data.(*module.FormAlterData)
	if !ok {
		return data, fmt.Errorf("form alter: unexpected data %T", data)
	}
	if fa.FormID != SearchFormID || !m.themeActive() {
		return fa, nil
	}

	text, err := fa.Form.Find(SearchFormID)
	if err != nil {
		return nil, err
	}
	text.SetAttr("placeholder", m.translate(fa.Lang, "Search"))

	submit, err := fa.Form.Find("actions", "submit")
	if err != nil {
		return nil, err
	}
	button := &form.Element{
		Name:       submit.Name,
		Type:       form.TypeImageButton,
		Value:      submit.Value,
		Src:        m.assetURL(searchIcon),
		Attributes: submit.Attributes,
	}
	if err := fa.Form.Replace(button, "actions", "submit"); err != nil {
		return nil, err
	}
	return fa, nil
}

// sliderInterval returns the slide interval in milliseconds declared in
// theme.json, or "" when the theme does not declare one.
func (m *Module) sliderInterval() string {
	if m.ctx.Themes == nil {
		return ""
	}
	t, err := m.ctx.Themes.GetTheme(ThemeName)
	if err != nil || !t.HasSetting(sliderIntervalSetting) {
		return ""
	}
	return t.GetSettingDefault(sliderIntervalSetting)
}

// assetURL returns the absolute URL of one of this theme's static files.
func (m *Module) assetURL(rel string) string {
	return m.ctx.Files.BaseURL() + theme.AssetURL(ThemeName, rel)
}

func (m *Module) translate(lang, key string) string {
	if m.ctx.Themes == nil {
		return key
	}
	return m.ctx.Themes.Translate(lang, key)
}
