// Package markdown renders Markdown bodies (front matter already removed)
// into HTML fragments.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML. It is a pure transformation: no
// filesystem access, no shared mutable state, safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer constructs a Renderer with GitHub-flavored extensions and
// stable auto heading IDs.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				// Content is authored locally, not user-submitted; raw HTML
				// in posts passes through.
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts a Markdown body into an HTML fragment.
//
// Fenced code blocks are emitted verbatim inside <pre><code> with only
// HTML-entity escaping; their text is never reinterpreted as Markdown.
func (r *Renderer) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
