package server

import (
	"embed"
	"html/template"
)

//go:embed templates/*
var templateFiles embed.FS

var templateFS = subFS(templateFiles, "templates")

// ParseTemplates parses every page template from the embedded filesystem
func ParseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "*.html")
}
