package view

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.tmpl
var files embed.FS

// Page template names accepted by gin's c.HTML.
const (
	Dashboard   = "dashboard.tmpl"
	Devices     = "devices.tmpl"
	Roles       = "roles.tmpl"
	Schedules   = "schedules.tmpl"
	Diagnostics = "diagnostics.tmpl"
	Alerts      = "alerts.tmpl"
	Error       = "error.tmpl"
)

var funcs = template.FuncMap{
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Templates parses every embedded page together with the shared layout partials.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.tmpl")
}
