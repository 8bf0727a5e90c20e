// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package present

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/recommend"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageIndex    = "index"
	PageResults  = "results"
	PageNotFound = "not_found"
	PageError    = "error"
)

var pages = []string{PageIndex, PageResults, PageNotFound, PageError}

// ModeOption is one entry of the "Search by" radio group.
type ModeOption struct {
	Value    string
	Label    string
	Checked  bool
	Values   []string
	Selected string
}

// Page is the data every HTML page is rendered with.
type Page struct {
	Modes []ModeOption

	// Query echoes what the user asked for, when anything was asked.
	Query recommend.Query

	Cards []Card

	// NotFoundTitle and Suggestions fill the not-found page.
	NotFoundTitle string
	Suggestions   []string

	// Error is a user-facing message for the error page.
	Error string

	// PostersEnabled is false when no TMDB key is configured.
	PostersEnabled bool
}

// NewPage builds the form state for the given options. The mode matching q
// is pre-selected, title mode otherwise.
func NewPage(opts catalog.Options, q recommend.Query) *Page {
	years := make([]string, len(opts.Years))
	for i, y := range opts.Years {
		years[i] = strconv.Itoa(y)
	}
	values := map[recommend.Mode][]string{
		recommend.ModeTitle: opts.Titles,
		recommend.ModeGenre: opts.Genres,
		recommend.ModeYear:  years,
	}

	current := q.Mode
	if _, err := recommend.ParseMode(string(current)); err != nil {
		current = recommend.ModeTitle
	}

	p := &Page{Query: q}
	for _, m := range recommend.Modes {
		opt := ModeOption{
			Value:   string(m),
			Label:   m.Label(),
			Checked: m == current,
			Values:  values[m],
		}
		if opt.Checked {
			opt.Selected = q.Value
		}
		p.Modes = append(p.Modes, opt)
	}
	return p
}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates. Each page is its own set
// layered over the shared layout.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"noPoster": func() string { return NoPoster },
		"noResults": func() string { return NoResults },
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes a page into w. The page is rendered to a buffer first so
// a template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
