package service

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/mariaangelps/490-The-Team/internal/markdown"
)

//go:embed emails/*.md
var emailFS embed.FS

type emailData struct {
	AppName    string
	Name       string
	URL        string
	TTLMinutes int
}

type renderedEmail struct {
	Subject string
	Text    string
	HTML    string
}

// emailTemplates executes the embedded markdown emails. The front matter
// carries the subject; the body is sent as text and as rendered HTML.
type emailTemplates struct {
	tmpl *template.Template
	md   *markdown.Parser
}

func newEmailTemplates() *emailTemplates {
	return &emailTemplates{
		tmpl: template.Must(template.New("emails").Option("missingkey=error").ParseFS(emailFS, "emails/*.md")),
		md:   markdown.NewParser(),
	}
}

func (t *emailTemplates) render(kind string, data emailData) (*renderedEmail, error) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, kind+".md", data); err != nil {
		return nil, fmt.Errorf("execute %s email: %w", kind, err)
	}

	doc, err := t.md.Parse(buf.Bytes())
	if err != nil {
		return nil, err
	}

	var meta struct {
		Subject string `yaml:"subject"`
	}
	if err := doc.Decode(&meta); err != nil {
		return nil, err
	}
	if meta.Subject == "" {
		return nil, fmt.Errorf("%s email has no subject", kind)
	}

	return &renderedEmail{Subject: meta.Subject, Text: doc.Body, HTML: doc.HTML}, nil
}
