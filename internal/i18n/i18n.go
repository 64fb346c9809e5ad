// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n provides translations for theme strings and the language
// negotiation used by the frontend.
package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed locales
var localesFS embed.FS

// DefaultLanguage is used when nothing better matches and as the fallback
// for keys missing in another language.
const DefaultLanguage = "en"

// SupportedLanguages lists the languages the theme is translated to.
var SupportedLanguages = []string{"en", "ru"}

// Message is one entry of a messages.json file.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Translation string `json:"translation"`
}

// MessageFile is the layout of locales/<lang>/messages.json.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// ErrNotInitialized is returned by loaders called before Init.
var ErrNotInitialized = errors.New("i18n not initialized")

type catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string // lang -> id -> translation
	printers map[string]*message.Printer
	tags     []language.Tag
	matcher  language.Matcher
	logger   *slog.Logger
}

var (
	catalogMu sync.RWMutex
	active    *catalog
)

func current() *catalog {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	return active
}

// Init replaces the global catalog with the embedded core translations.
func Init(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &catalog{
		messages: make(map[string]map[string]string),
		printers: make(map[string]*message.Printer),
		logger:   logger,
	}
	for _, lang := range SupportedLanguages {
		tag := language.MustParse(lang)
		c.tags = append(c.tags, tag)
		c.printers[lang] = message.NewPrinter(tag)
		if err := c.merge(localesFS, path.Join("locales", lang, "messages.json"), lang); err != nil {
			return fmt.Errorf("loading language %s: %w", lang, err)
		}
	}
	c.matcher = language.NewMatcher(c.tags)

	catalogMu.Lock()
	active = c
	catalogMu.Unlock()

	logger.Info("i18n initialized", "languages", SupportedLanguages)
	return nil
}

// merge adds the messages of one file, overwriting existing ids.
func (c *catalog) merge(fsys fs.FS, name, lang string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	var file MessageFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.messages[lang]
	if m == nil {
		m = make(map[string]string, len(file.Messages))
		c.messages[lang] = m
	}
	for _, msg := range file.Messages {
		m[msg.ID] = msg.Translation
	}
	c.logger.Debug("loaded translations", "language", lang, "file", name, "count", len(file.Messages))
	return nil
}

// LoadTranslationsFromFS merges <root>/locales/<lang>/messages.json from
// fsys into the catalog. Languages without a file are skipped.
func LoadTranslationsFromFS(fsys fs.FS, root string) error {
	c := current()
	if c == nil {
		return ErrNotInitialized
	}
	for _, lang := range SupportedLanguages {
		name := path.Join(root, "locales", lang, "messages.json")
		if _, err := fs.Stat(fsys, name); err != nil {
			continue
		}
		if err := c.merge(fsys, name, lang); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the translation of key in lang without falling back.
func Lookup(lang, key string) (string, bool) {
	c := current()
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.messages[lang][key]
	return s, ok
}

// T translates key to lang, falling back to DefaultLanguage and then to
// the key itself. With args the translation is a format string, printed
// with the number formatting of lang.
func T(lang, key string, args ...any) string {
	c := current()
	if c == nil {
		return key
	}
	if !IsSupported(lang) {
		lang = DefaultLanguage
	}

	s, ok := Lookup(lang, key)
	if !ok && lang != DefaultLanguage {
		if s, ok = Lookup(DefaultLanguage, key); ok {
			c.logger.Debug("missing translation, using default", "key", key, "lang", lang)
		}
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return s
	}
	return c.printers[lang].Sprintf(s, args...)
}

// MatchLanguage picks the best supported language for an Accept-Language
// header or a bare language code.
func MatchLanguage(accept string) string {
	c := current()
	if c == nil {
		return DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(accept)
		if err != nil {
			return DefaultLanguage
		}
		tags = []language.Tag{tag}
	}
	if _, idx, conf := c.matcher.Match(tags...); conf != language.No {
		return SupportedLanguages[idx]
	}
	return DefaultLanguage
}

// IsSupported reports whether lang is one of SupportedLanguages.
func IsSupported(lang string) bool {
	return slices.Contains(SupportedLanguages, strings.ToLower(lang))
}

// TranslationCount returns the number of messages loaded for lang.
func TranslationCount(lang string) int {
	c := current()
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages[lang])
}
