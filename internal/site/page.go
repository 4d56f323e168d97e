package site

import (
	"github.com/perjones/mdblog/internal/frontmatter"
)

// Page is one content document carried through the build. Fields fill in
// as stages run: front matter first, then rendered body, then route, then
// the final laid-out document.
type Page struct {
	Source string // content-relative source path, e.g. "posts/first-post.md"
	Slug   string
	Meta   frontmatter.PageMeta

	Body     []byte // Markdown body, front matter stripped
	BodyHTML string // rendered HTML fragment

	Route string // site-absolute output path, e.g. "/blog/hello/index.html"
	URL   string // site-absolute directory route, e.g. "/blog/hello/"

	HTML string // complete document after layout
}
