// Package views renders the console pages.
package views

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"orgconsole/services"
)

// FS holds the page templates
//
//go:embed templates/*.gohtml
var FS embed.FS

// PageTemplate is the entry template rendered for every console page
const PageTemplate = "page"

// Page is the data a console page is rendered from
type Page struct {
	services.Snapshot
	AppName string
	CSRF    template.HTML
}

// Parse loads every template from FS
func Parse() (*template.Template, error) {
	return template.New(PageTemplate).Funcs(Funcs()).ParseFS(FS, "templates/*.gohtml")
}

// Funcs returns the helpers available to the templates
func Funcs() template.FuncMap {
	return template.FuncMap{
		"orNA": OrNA,
		"date": Date,
	}
}

// OrNA returns "N/A" for blank values
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// Date formats a timestamp for display, "N/A" when unset
func Date(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Local().Format("Jan 2, 2006")
}
