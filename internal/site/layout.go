package site

import (
	"html/template"
	"strings"

	"github.com/perjones/mdblog/internal/config"
	apperrors "github.com/perjones/mdblog/internal/errors"
	"github.com/perjones/mdblog/internal/routes"
)

// Layout wraps rendered page fragments in the site's HTML shell.
type Layout struct {
	tmpl      *template.Template
	indexTmpl *template.Template
	siteTitle string
	siteDesc  string
}

// stylesheetName is the conventional site stylesheet at the content root.
const stylesheetName = "style.css"

// layoutTemplate is the page shell. Asset and page URLs are fully resolved
// before execution, so the template itself is base-agnostic.
const layoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}} | {{.SiteTitle}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
{{- if .StylesheetURL}}
<link rel="stylesheet" href="{{.StylesheetURL}}">
{{- end}}
</head>
<body>
<header>
<nav><a href="{{.HomeURL}}">{{.SiteTitle}}</a></nav>
</header>
<main>
<article>
{{- if .HeroImage}}
<img class="hero" src="{{.HeroImage}}" alt="">
{{- end}}
<h1 class="title">{{.Title}}</h1>
{{- if .PubDate}}
<time datetime="{{.PubDateISO}}">{{.PubDate}}</time>
{{- end}}
{{.Body}}
</article>
</main>
<footer>
<p>{{.SiteTitle}}{{if .SiteDescription}} &mdash; {{.SiteDescription}}{{end}}</p>
</footer>
</body>
</html>
`

// layoutData is the execution context for one page.
type layoutData struct {
	SiteTitle       string
	SiteDescription string
	Title           string
	Description     string
	HeroImage       string
	PubDate         string
	PubDateISO      string
	HomeURL         string
	StylesheetURL   string
	Body            template.HTML
}

// NewLayout parses the page shell for the configured site.
func NewLayout(cfg *config.Config) (*Layout, error) {
	tmpl, err := template.New("page").Parse(layoutTemplate)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInternal, apperrors.SeverityFatal, "failed to parse page layout")
	}
	indexTmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryInternal, apperrors.SeverityFatal, "failed to parse index layout")
	}
	return &Layout{
		tmpl:      tmpl,
		indexTmpl: indexTmpl,
		siteTitle: cfg.Site.Title,
		siteDesc:  cfg.Site.Description,
	}, nil
}

// Apply wraps one rendered page. All absolute references are derived from
// the route generator so changing the base changes every link. The
// stylesheet link is emitted only when the build actually carries one.
func (l *Layout) Apply(page *Page, rg *routes.Generator, hasStylesheet bool) (string, error) {
	data := layoutData{
		SiteTitle:       l.siteTitle,
		SiteDescription: l.siteDesc,
		Title:           page.Meta.Title,
		Description:     page.Meta.Description,
		HeroImage:       resolveHero(page.Meta.HeroImage, rg),
		HomeURL:         rg.BaseURL(),
		Body:            template.HTML(page.BodyHTML),
	}
	if hasStylesheet {
		data.StylesheetURL = rg.AssetPath(stylesheetName)
	}
	if !page.Meta.PubDate.IsZero() {
		data.PubDate = page.Meta.PubDate.Format("Jan 2, 2006")
		data.PubDateISO = page.Meta.PubDate.Format("2006-01-02")
	}

	var b strings.Builder
	if err := l.tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// indexTemplate lists every published page, newest first.
const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.SiteTitle}}</title>
{{- if .SiteDescription}}
<meta name="description" content="{{.SiteDescription}}">
{{- end}}
{{- if .StylesheetURL}}
<link rel="stylesheet" href="{{.StylesheetURL}}">
{{- end}}
</head>
<body>
<header>
<nav><a href="{{.HomeURL}}">{{.SiteTitle}}</a></nav>
</header>
<main>
<h1>{{.SiteTitle}}</h1>
{{- if .SiteDescription}}
<p>{{.SiteDescription}}</p>
{{- end}}
<ul class="posts">
{{- range .Posts}}
<li>
<a href="{{.URL}}">{{.Title}}</a>
{{- if .PubDate}}
<time datetime="{{.PubDateISO}}">{{.PubDate}}</time>
{{- end}}
{{- if .Description}}
<p>{{.Description}}</p>
{{- end}}
</li>
{{- end}}
</ul>
</main>
<footer>
<p>{{.SiteTitle}}{{if .SiteDescription}} &mdash; {{.SiteDescription}}{{end}}</p>
</footer>
</body>
</html>
`

type indexEntry struct {
	Title       string
	Description string
	URL         string
	PubDate     string
	PubDateISO  string
}

type indexData struct {
	SiteTitle       string
	SiteDescription string
	HomeURL         string
	StylesheetURL   string
	Posts           []indexEntry
}

// ApplyIndex renders the site index page over the given pages, which must
// already be sorted for display.
func (l *Layout) ApplyIndex(pages []*Page, rg *routes.Generator, hasStylesheet bool) (string, error) {
	data := indexData{
		SiteTitle:       l.siteTitle,
		SiteDescription: l.siteDesc,
		HomeURL:         rg.BaseURL(),
	}
	if hasStylesheet {
		data.StylesheetURL = rg.AssetPath(stylesheetName)
	}
	for _, page := range pages {
		entry := indexEntry{
			Title:       page.Meta.Title,
			Description: page.Meta.Description,
			URL:         page.URL,
		}
		if !page.Meta.PubDate.IsZero() {
			entry.PubDate = page.Meta.PubDate.Format("Jan 2, 2006")
			entry.PubDateISO = page.Meta.PubDate.Format("2006-01-02")
		}
		data.Posts = append(data.Posts, entry)
	}

	var b strings.Builder
	if err := l.indexTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// resolveHero maps a front matter hero reference to a page-usable URL.
// Site-absolute references are re-rooted under the base; relative ones are
// left for the browser to resolve against the page route.
func resolveHero(ref string, rg *routes.Generator) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "/") {
		return rg.AssetPath(ref)
	}
	return ref
}
