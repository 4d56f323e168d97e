// Package linkcheck verifies that rendered pages only reference assets and
// pages that exist in the built output tree.
package linkcheck

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	apperrors "github.com/perjones/mdblog/internal/errors"
)

// Ref is a link-like reference extracted from rendered HTML.
type Ref struct {
	URL       string // raw destination as written
	Tag       string // a, img, link, script, source
	Attribute string // href or src
}

// ExtractRefs parses an HTML document and collects every element reference
// that can point at a local file.
func ExtractRefs(htmlText string) ([]Ref, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryValidation, apperrors.SeverityError, "failed to parse rendered HTML")
	}

	var refs []Ref
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href := attr(n, "href"); href != "" {
					refs = append(refs, Ref{URL: href, Tag: n.Data, Attribute: "href"})
				}
			case "img", "script", "source", "video", "audio":
				if src := attr(n, "src"); src != "" {
					refs = append(refs, Ref{URL: src, Tag: n.Data, Attribute: "src"})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

// Checker resolves references against the set of paths the build produced.
type Checker struct {
	base string
	// exists holds every site-absolute path the build wrote, e.g.
	// "/blog/hello/index.html" and "/blog/images/hero.png".
	exists map[string]struct{}
}

// NewChecker creates a Checker for a normalized base path.
func NewChecker(base string) *Checker {
	return &Checker{base: base, exists: make(map[string]struct{})}
}

// AddOutput records a site-absolute output path as existing. Directory
// routes are also registered in their "/slug/" form.
func (c *Checker) AddOutput(p string) {
	c.exists[p] = struct{}{}
	if strings.HasSuffix(p, "/index.html") {
		c.exists[strings.TrimSuffix(p, "index.html")] = struct{}{}
	}
}

// CheckPage verifies every local reference on one rendered page. pageRoute
// is the page's site-absolute directory route (used to resolve relative
// references); sourceFile names the offending document in errors.
func (c *Checker) CheckPage(sourceFile, pageRoute, htmlText string) error {
	refs, err := ExtractRefs(htmlText)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		target, local := c.resolve(pageRoute, ref.URL)
		if !local {
			continue
		}
		if _, ok := c.exists[target]; !ok {
			return apperrors.MissingAsset(sourceFile, ref.URL).WithContext("resolved", target)
		}
	}
	return nil
}

// resolve maps a reference to a site-absolute path. Returns local=false
// for external URLs, anchors, and special protocols.
func (c *Checker) resolve(pageRoute, ref string) (string, bool) {
	if ref == "" || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(ref, "mailto:") || strings.HasPrefix(ref, "tel:") ||
		strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "javascript:") {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" || u.Host != "" {
		return "", false
	}

	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = path.Join(pageRoute, p)
	}
	p = path.Clean(p)
	if strings.HasSuffix(u.Path, "/") && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
