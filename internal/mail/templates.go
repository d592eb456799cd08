// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package mail

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.md
var templateFS embed.FS

// Rendered holds the output of a template.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// Templates is a set of markdown email templates. The first line of each
// template must be a level-one heading; it becomes the subject.
type Templates struct {
	set *template.Template
	md  goldmark.Markdown
}

var funcs = template.FuncMap{
	"quote": func(s string) string {
		lines := strings.Split(strings.TrimSpace(s), "\n")
		for i, l := range lines {
			lines[i] = "> " + strings.TrimRight(l, "\r")
		}
		return strings.Join(lines, "\n")
	},
}

// LoadTemplates parses the embedded templates.
func LoadTemplates() (*Templates, error) {
	return ParseTemplates(templateFS, "templates")
}

// ParseTemplates parses every *.md file in dir of fsys. Templates are named
// after their file name without extension.
func ParseTemplates(fsys fs.FS, dir string) (*Templates, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	set := template.New("mail").Funcs(funcs).Option("missingkey=error")
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		if _, err := set.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
	}

	return &Templates{
		set: set,
		md:  goldmark.New(goldmark.WithExtensions(extension.Linkify)),
	}, nil
}

// Has reports whether a template with the given name exists.
func (t *Templates) Has(name string) bool {
	return t.set.Lookup(name) != nil
}

// Render executes the named template and converts its markdown to HTML.
func (t *Templates) Render(name string, data Data) (Rendered, error) {
	tpl := t.set.Lookup(name)
	if tpl == nil {
		return Rendered{}, fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return Rendered{}, fmt.Errorf("executing template %s: %w", name, err)
	}

	text := strings.TrimSpace(buf.String())
	subject, body, ok := strings.Cut(text, "\n")
	if !ok || !strings.HasPrefix(subject, "# ") {
		return Rendered{}, fmt.Errorf("template %s must start with a heading", name)
	}
	subject = strings.TrimSpace(strings.TrimPrefix(subject, "# "))

	var html bytes.Buffer
	if err := t.md.Convert([]byte(text), &html); err != nil {
		return Rendered{}, fmt.Errorf("rendering markdown %s: %w", name, err)
	}

	return Rendered{
		Subject: subject,
		Text:    strings.TrimSpace(body),
		HTML:    html.String(),
	}, nil
}
