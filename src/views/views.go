// Package views renders the server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"girlmath-server/src/models"
	"girlmath-server/src/util"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const layout = "templates/base.html"

// Page is the data every template receives. Data holds the page specific view model.
type Page struct {
	Title     string
	Identity  *models.Identity
	Flash     *util.Flash
	CSRFToken string
	ReadOnly  bool
	Data      any
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": util.FormatMoney,
	"percent": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"date": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04")
	},
	"abs": func(d decimal.Decimal) decimal.Decimal {
		return d.Abs()
	},
	// width returns value as a percentage of max, for CSS bar widths.
	"width": func(value, max decimal.Decimal) string {
		if !max.IsPositive() {
			return "0"
		}
		return value.Mul(decimal.NewFromInt(100)).Div(max).Round(1).String()
	},
	// clamp limits a progress percentage to the 0..100 range of a progress bar.
	"clamp": func(v float64) float64 {
		switch {
		case v < 0:
			return 0
		case v > 100:
			return 100
		}
		return v
	},
}

// New parses every page in the embedded template directory against the base layout.
func New() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		if name == layout {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, layout, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[strings.TrimPrefix(name, "templates/")] = tmpl
	}
	return r, nil
}

// Render writes page with the given status. The page is executed into a
// buffer first so a template error never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
