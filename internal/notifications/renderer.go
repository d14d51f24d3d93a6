package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// TypeSubscriptionRemoved is the type of notifications sent to users whose
// subscription was removed by someone else.
const TypeSubscriptionRemoved = "subscription_removed"

// RenderData is the input of notification templates.
type RenderData struct {
	Originator   string
	Recipient    string
	CategoryName string
	CreatedAt    time.Time
}

// Renderer renders notifications from templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer creates a new renderer and loads all templates.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"title":      titleCase,
		"upper":      strings.ToUpper,
		"formatTime": formatTime,
	}

	r := &Renderer{templates: make(map[string]*template.Template)}

	for _, part := range []string{"title", "content"} {
		name := fmt.Sprintf("%s_%s", TypeSubscriptionRemoved, part)
		filename := fmt.Sprintf("templates/%s.tmpl", name)

		content, err := templatesFS.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", filename, err)
		}

		tmpl, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return r, nil
}

// Render renders the title and content of a notification of the given type.
func (r *Renderer) Render(notificationType string, data RenderData) (title, content string, err error) {
	title, err = r.execute(notificationType+"_title", data)
	if err != nil {
		return "", "", err
	}
	content, err = r.execute(notificationType+"_content", data)
	if err != nil {
		return "", "", err
	}
	return title, content, nil
}

func (r *Renderer) execute(name string, data RenderData) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Template functions

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(s)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 15:04 UTC")
}
