/*
Package render turns template files into HTML for the site builder.

Templates use the standard Go "html/template" package. Every ".html" file in the
templates folder is loaded into a shared set, so a source file can pull in layouts
and partials defined there:

	{{template "comic" .}}
	{{define "title"}}Chapter one{{end}}
	{{define "body"}}<img src="../images/1.png" alt="">{{end}}

Here "comic" is a layout defined in templates/comic.html whose {{block}} actions are
overridden by the source file. Partials are invoked by file name, for example
{{template "pagination.html" .}}.

Markdown sources (".md") may start with TOML front matter delimited by "+++" or YAML
front matter delimited by "---". The body is rendered to HTML and passed as .Content,
together with .FrontMatter, to the layout named by the "template" key ("default" if
not given).

Templates may use these helper functions:

	join(parts ...string) string     The same as path.Join
	ext(path string) string          The same as path.Ext
	trimsuffix(string, string) string
	trimprefix(string, string) string
	trimspace(string) string
	markdown(string) template.HTML   Render a Markdown string into HTML
	now() time.Time                  Current time
*/
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"
)

// DefaultLayout is the layout used for Markdown files without a template key.
const DefaultLayout = "default"

// Renderer produces HTML from the template file at name using data as context.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// Templates renders files using html/template with a shared set of layouts and partials.
// It is safe for concurrent use.
type Templates struct {
	base *template.Template
}

// New loads every ".html" file in dir as the shared layout set. A missing
// folder yields an empty set.
func New(dir string) (*Templates, error) {
	funcMap := template.FuncMap{
		"join":       path.Join,
		"ext":        path.Ext,
		"trimsuffix": strings.TrimSuffix,
		"trimprefix": strings.TrimPrefix,
		"trimspace":  strings.TrimSpace,
		"markdown":   md,
		"now":        time.Now,
	}
	base := template.New("panels").Funcs(funcMap)
	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("render.New: %w", err)
	}
	if len(files) > 0 {
		base, err = base.ParseFiles(files...)
		if err != nil {
			return nil, fmt.Errorf("render.New: %w", err)
		}
	}
	return &Templates{base: base}, nil
}

// Render executes the file at name. The shared set is cloned first so that
// blocks defined by one file never leak into another.
func (t *Templates) Render(name string, data map[string]any) (string, error) {
	tpl, err := t.base.Clone()
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	if strings.EqualFold(filepath.Ext(name), ".md") {
		return renderMarkdown(tpl, name, data)
	}
	tpl, err = tpl.ParseFiles(name)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	var wtr bytes.Buffer
	err = tpl.ExecuteTemplate(&wtr, filepath.Base(name), data)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return wtr.String(), nil
}

// renderMarkdown reads a Markdown file, renders it, and executes the layout
// named by its front matter.
func renderMarkdown(tpl *template.Template, name string, data map[string]any) (string, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	front, body, err := parseFrontMatter(b)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	layout := DefaultLayout
	if front.Template != "" {
		layout = front.Template
	}
	if tpl.Lookup(layout) == nil {
		return "", fmt.Errorf("render %s: %w", name, errors.New("no layout named "+layout))
	}
	ctx := make(map[string]any, len(data)+2)
	for k, v := range data {
		ctx[k] = v
	}
	ctx["FrontMatter"] = front
	ctx["Content"] = md(string(body))
	var wtr bytes.Buffer
	err = tpl.ExecuteTemplate(&wtr, layout, ctx)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return wtr.String(), nil
}

// md converts Markdown to HTML and is used in templates.
func md(s string) template.HTML {
	return template.HTML(blackfriday.Run([]byte(s), blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Footnotes)))
}
