// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package form models frontend forms as ordered trees of elements that
// hooks can inspect and alter before rendering.
package form

import (
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// ErrElementNotFound is returned when a path does not resolve to an element.
var ErrElementNotFound = errors.New("form: element not found")

// Element types understood by Render.
const (
	TypeTextField   = "textfield"
	TypeSubmit      = "submit"
	TypeImageButton = "image_button"
	TypeHidden      = "hidden"
	TypeContainer   = "container"
	TypeMarkup      = "markup"
)

// Element is a single form control or a container of controls.
type Element struct {
	Name       string
	Type       string
	Title      string
	Value      string
	Src        string
	Attributes map[string]string
	Children   []*Element
}

// Attr returns the value of attribute name, or "" when unset.
func (e *Element) Attr(name string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[name]
}

// SetAttr sets attribute name to value.
func (e *Element) SetAttr(name, value string) {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[name] = value
}

// Child returns the direct child called name.
func (e *Element) Child(name string) (*Element, bool) {
	for _, c := range e.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Form is a named form with ordered top-level elements.
type Form struct {
	ID       string
	Action   string
	Method   string
	Elements []*Element
}

// New creates an empty form.
func New(id, action, method string) *Form {
	return &Form{ID: id, Action: action, Method: method}
}

// Add appends elements to the top level of the form.
func (f *Form) Add(elements ...*Element) *Form {
	f.Elements = append(f.Elements, elements...)
	return f
}

// Find resolves a path of element names, e.g. Find("actions", "submit").
func (f *Form) Find(path ...string) (*Element, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrElementNotFound)
	}

	el, ok := findIn(f.Elements, path[0])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, strings.Join(path, "."))
	}
	for _, name := range path[1:] {
		if el, ok = el.Child(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrElementNotFound, strings.Join(path, "."))
		}
	}
	return el, nil
}

// Replace swaps the element at path with replacement, keeping its position.
func (f *Form) Replace(replacement *Element, path ...string) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrElementNotFound)
	}

	siblings := &f.Elements
	if len(path) > 1 {
		parent, err := f.Find(path[:len(path)-1]...)
		if err != nil {
			return err
		}
		siblings = &parent.Children
	}

	name := path[len(path)-1]
	for i, el := range *siblings {
		if el.Name == name {
			(*siblings)[i] = replacement
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrElementNotFound, strings.Join(path, "."))
}

func findIn(elements []*Element, name string) (*Element, bool) {
	for _, el := range elements {
		if el.Name == name {
			return el, true
		}
	}
	return nil, false
}

// Render returns the HTML markup of the form.
func (f *Form) Render() template.HTML {
	var b strings.Builder

	b.WriteString(`<form id="` + template.HTMLEscapeString(strings.ReplaceAll(f.ID, "_", "-")) + `"`)
	if f.Action != "" {
		b.WriteString(` action="` + template.HTMLEscapeString(f.Action) + `"`)
	}
	method := f.Method
	if method == "" {
		method = "get"
	}
	b.WriteString(` method="` + template.HTMLEscapeString(method) + `">`)
	b.WriteString(`<input type="hidden" name="form_id" value="` + template.HTMLEscapeString(f.ID) + `" />`)

	for _, el := range f.Elements {
		renderElement(&b, el)
	}
	b.WriteString(`</form>`)

	return template.HTML(b.String()) // #nosec G203 -- all values are escaped above
}

func renderElement(b *strings.Builder, el *Element) {
	switch el.Type {
	case TypeContainer:
		b.WriteString(`<div class="form-` + template.HTMLEscapeString(el.Name) + `"`)
		writeAttrs(b, el.Attributes)
		b.WriteString(`>`)
		for _, c := range el.Children {
			renderElement(b, c)
		}
		b.WriteString(`</div>`)
	case TypeTextField:
		if el.Title != "" {
			b.WriteString(`<label for="edit-` + template.HTMLEscapeString(el.Name) + `" class="element-invisible">` +
				template.HTMLEscapeString(el.Title) + `</label>`)
		}
		b.WriteString(`<input type="text" id="edit-` + template.HTMLEscapeString(el.Name) +
			`" name="` + template.HTMLEscapeString(el.Name) + `" value="` + template.HTMLEscapeString(el.Value) + `"`)
		writeAttrs(b, el.Attributes)
		b.WriteString(` />`)
	case TypeSubmit:
		b.WriteString(`<input type="submit" name="op" value="` + template.HTMLEscapeString(el.Value) + `"`)
		writeAttrs(b, el.Attributes)
		b.WriteString(` />`)
	case TypeImageButton:
		b.WriteString(`<input type="image" name="op" src="` + template.HTMLEscapeString(el.Src) +
			`" value="` + template.HTMLEscapeString(el.Value) + `"`)
		writeAttrs(b, el.Attributes)
		b.WriteString(` />`)
	case TypeHidden:
		b.WriteString(`<input type="hidden" name="` + template.HTMLEscapeString(el.Name) +
			`" value="` + template.HTMLEscapeString(el.Value) + `" />`)
	case TypeMarkup:
		b.WriteString(template.HTMLEscapeString(el.Value))
	}
}

// writeAttrs writes attributes in name order so output is stable.
func writeAttrs(b *strings.Builder, attrs map[string]string) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(` ` + template.HTMLEscapeString(name) + `="` + template.HTMLEscapeString(attrs[name]) + `"`)
	}
}
