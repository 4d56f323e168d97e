// Package routes maps content documents to output paths under the
// configured base path.
package routes

import (
	"strings"

	"github.com/perjones/mdblog/internal/errors"
)

// Generator computes output paths of the form {base}/{slug}/index.html and
// rejects slug collisions. The base path is fully configurable; nothing is
// hard-coded.
type Generator struct {
	base string
	// seen maps route -> source file that claimed it.
	seen map[string]string
}

// NewGenerator creates a route generator for the given base path. The base
// is normalized once here so every derived route and absolute link agrees.
func NewGenerator(base string) *Generator {
	return &Generator{
		base: NormalizeBase(base),
		seen: make(map[string]string),
	}
}

// Base returns the normalized base path ("/" or "/prefix").
func (g *Generator) Base() string { return g.base }

// BaseURL returns the base in directory form ("/" or "/prefix/"), the form
// pages link to.
func (g *Generator) BaseURL() string {
	if g.base == "/" {
		return "/"
	}
	return g.base + "/"
}

// IndexPath returns the output path of the site index page.
func (g *Generator) IndexPath() string {
	if g.base == "/" {
		return "/index.html"
	}
	return g.base + "/index.html"
}

// NormalizeBase canonicalizes a configured base path: always a leading
// slash, never a trailing slash (except root itself), duplicate slashes
// collapsed. Empty input means root.
func NormalizeBase(base string) string {
	parts := strings.FieldsFunc(base, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(parts, "/")
}

// Route returns the output path for a slug and records it for collision
// detection. The sourceFile is used in DuplicateRoute reports.
func (g *Generator) Route(slug, sourceFile string) (string, error) {
	route := g.PathFor(slug)
	if prev, taken := g.seen[route]; taken {
		return "", errors.DuplicateRoute(route, sourceFile, prev)
	}
	g.seen[route] = sourceFile
	return route, nil
}

// PathFor computes the output path for a slug without claiming it.
func (g *Generator) PathFor(slug string) string {
	if g.base == "/" {
		return "/" + slug + "/index.html"
	}
	return g.base + "/" + slug + "/index.html"
}

// URLFor computes the canonical page URL (directory form) for a slug.
func (g *Generator) URLFor(slug string) string {
	if g.base == "/" {
		return "/" + slug + "/"
	}
	return g.base + "/" + slug + "/"
}

// AssetPath resolves a site-relative asset reference against the base.
func (g *Generator) AssetPath(ref string) string {
	ref = strings.TrimPrefix(ref, "/")
	if g.base == "/" {
		return "/" + ref
	}
	return g.base + "/" + ref
}
