// Package markdown renders the markdown documents shipped with the app,
// such as email templates, into HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

var fence = []byte("---")

// Document is a rendered markdown source.
type Document struct {
	// Body is the markdown without its front matter, readable as plain text.
	Body string
	HTML string
	meta *frontmatter.Data
}

// Decode unmarshals the front matter into dst. Documents without front
// matter leave dst untouched.
func (d *Document) Decode(dst any) error {
	if d.meta == nil {
		return nil
	}
	if err := d.meta.Decode(dst); err != nil {
		return fmt.Errorf("decode front matter: %w", err)
	}
	return nil
}

type Parser struct {
	md goldmark.Markdown
}

// NewParser renders GFM. Raw HTML in the source is omitted from the output.
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Parse(source []byte) (*Document, error) {
	ctx := parser.NewContext()
	var buf bytes.Buffer

	err := p.md.Convert(source, &buf, parser.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	return &Document{
		Body: string(stripFrontmatter(source)),
		HTML: buf.String(),
		meta: frontmatter.Get(ctx),
	}, nil
}

// stripFrontmatter drops a leading YAML block delimited by --- lines.
func stripFrontmatter(source []byte) []byte {
	trimmed := bytes.TrimLeft(source, "\r\n")
	if !bytes.HasPrefix(trimmed, fence) {
		return source
	}
	rest := trimmed[len(fence):]
	for len(rest) > 0 {
		line, next, found := bytes.Cut(rest, []byte("\n"))
		rest = next
		if bytes.Equal(bytes.TrimSpace(line), fence) {
			return bytes.TrimLeft(rest, "\r\n")
		}
		if !found {
			break
		}
	}
	return source
}
