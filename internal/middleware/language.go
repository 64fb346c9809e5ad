// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/olegiv/corporate-blue/internal/i18n"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

// ContextKeyLanguage holds the negotiated interface language code.
const ContextKeyLanguage ContextKey = "language"

// LanguageCookieName stores an explicit ?lang= choice.
const LanguageCookieName = "corporate_blue_lang"

// Language negotiates the interface language from, in order: the lang
// query parameter (remembered in a cookie), the cookie, and the
// Accept-Language header. Unsupported codes fall through to the next source.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""

		if q := strings.ToLower(r.URL.Query().Get("lang")); q != "" && i18n.IsSupported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     LanguageCookieName,
				Value:    q,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		if lang == "" {
			if c, err := r.Cookie(LanguageCookieName); err == nil && i18n.IsSupported(strings.ToLower(c.Value)) {
				lang = strings.ToLower(c.Value)
			}
		}

		if lang == "" {
			lang = i18n.MatchLanguage(r.Header.Get("Accept-Language"))
		}

		ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLanguage returns the negotiated language, or "en" outside Language.
func GetLanguage(r *http.Request) string {
	if lang, ok := r.Context().Value(ContextKeyLanguage).(string); ok && lang != "" {
		return lang
	}
	return "en"
}
