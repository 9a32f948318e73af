package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"sheetcheck/domain/report"

	"github.com/gin-gonic/gin"
)

var funcMap = template.FuncMap{
	"join": strings.Join,
	"mb": func(n int64) string {
		return fmt.Sprintf("%.0f MB", float64(n)/(1024*1024))
	},
	"statusClass": func(s report.CheckStatus) string {
		switch s {
		case report.StatusInvalid:
			return "status-invalid"
		case report.StatusMissing:
			return "status-missing"
		default:
			return "status-valid"
		}
	},
}

// loadTemplates parses every page and partial under ui/templates. Pages are
// named by their file name so handlers can execute "index.html" directly.
func loadTemplates(files fs.FS) (*template.Template, error) {
	templatesFS, err := fs.Sub(files, "ui/templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}
	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob partials: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no templates found under ui/templates")
	}

	t := template.New("").Funcs(funcMap)
	for _, file := range append(partials, pages...) {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := t.New(file).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	return t, nil
}

// renderTemplate renders to a buffer first so a template error never leaves
// a half written page
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Template error for %s: %v", name, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Warn("Error writing template response: %v", err)
	}
}
