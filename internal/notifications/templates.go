package notifications

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"whvmatch/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// TemplateData is the input of a notification template.
type TemplateData struct {
	SenderName string
	JobTitle   string
}

type templateSource struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

type compiledTemplate struct {
	title   *template.Template
	message *template.Template
}

// Templates renders notification titles and messages per notification type.
type Templates struct {
	byType map[models.NotificationType]compiledTemplate
}

// LoadTemplates parses the embedded templates.yaml.
func LoadTemplates() (*Templates, error) {
	return ParseTemplates(defaultTemplates)
}

// ParseTemplates parses a YAML document keyed by notification type.
func ParseTemplates(data []byte) (*Templates, error) {
	var src map[models.NotificationType]templateSource
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}

	t := &Templates{byType: make(map[models.NotificationType]compiledTemplate, len(src))}
	for typ, s := range src {
		title, err := template.New(string(typ) + ".title").Option("missingkey=error").Parse(s.Title)
		if err != nil {
			return nil, fmt.Errorf("template %s title: %w", typ, err)
		}
		message, err := template.New(string(typ) + ".message").Option("missingkey=error").Parse(s.Message)
		if err != nil {
			return nil, fmt.Errorf("template %s message: %w", typ, err)
		}
		t.byType[typ] = compiledTemplate{title: title, message: message}
	}
	return t, nil
}

// Render returns the title and message for typ.
func (t *Templates) Render(typ models.NotificationType, data TemplateData) (string, string, error) {
	c, ok := t.byType[typ]
	if !ok {
		return "", "", fmt.Errorf("no template for notification type %q", typ)
	}
	var title, message bytes.Buffer
	if err := c.title.Execute(&title, data); err != nil {
		return "", "", fmt.Errorf("render %s title: %w", typ, err)
	}
	if err := c.message.Execute(&message, data); err != nil {
		return "", "", fmt.Errorf("render %s message: %w", typ, err)
	}
	return title.String(), message.String(), nil
}
