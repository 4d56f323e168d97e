// Package site orchestrates the build: enumerate content, split front
// matter, render Markdown, compute routes, apply the layout, and write a
// fully regenerated output tree. A build either publishes everything or
// nothing.
package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/perjones/mdblog/internal/config"
	"github.com/perjones/mdblog/internal/content"
	apperrors "github.com/perjones/mdblog/internal/errors"
	"github.com/perjones/mdblog/internal/frontmatter"
	"github.com/perjones/mdblog/internal/linkcheck"
	"github.com/perjones/mdblog/internal/logfields"
	"github.com/perjones/mdblog/internal/markdown"
	"github.com/perjones/mdblog/internal/metrics"
	"github.com/perjones/mdblog/internal/routes"
)

// Builder runs site builds for one configuration.
type Builder struct {
	cfg      *config.Config
	source   content.Source
	renderer *markdown.Renderer
	layout   *Layout
	recorder metrics.Recorder

	// checkOnly validates the full pipeline but never promotes the
	// staging tree into the output directory.
	checkOnly bool
}

// NewBuilder creates a Builder reading from the given content source.
func NewBuilder(cfg *config.Config, source content.Source) (*Builder, error) {
	layout, err := NewLayout(cfg)
	if err != nil {
		return nil, err
	}
	return &Builder{
		cfg:      cfg,
		source:   source,
		renderer: markdown.NewRenderer(),
		layout:   layout,
		recorder: metrics.NoopRecorder{},
	}, nil
}

// SetRecorder injects a metrics recorder. Returns the builder for chaining.
func (b *Builder) SetRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	b.recorder = r
	return b
}

// SetCheckOnly makes Build validate everything without publishing.
func (b *Builder) SetCheckOnly(on bool) *Builder {
	b.checkOnly = on
	return b
}

// BuildState carries mutable state across stages of one build.
type BuildState struct {
	BuildID string
	Pages   []*Page
	Assets  []content.Asset
	Routes  *routes.Generator
	Report  *Report

	// IndexHTML is the rendered site index page at the base route.
	IndexHTML string

	stageDir  string // staging tree all writes target
	outputDir string // final tree, replaced wholesale on promote
}

// Build runs all stages. On failure the staging tree is discarded and the
// previous output is left untouched; the returned Report always describes
// what happened.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	buildID := uuid.NewString()
	start := time.Now()

	bs := &BuildState{
		BuildID:   buildID,
		Routes:    routes.NewGenerator(b.cfg.Site.Base),
		Report:    newReport(buildID),
		outputDir: filepath.Clean(b.cfg.Output.Directory),
	}
	bs.stageDir = bs.outputDir + ".staging"

	slog.Info("Starting site build",
		logfields.BuildID(buildID),
		logfields.Path(bs.outputDir),
		slog.String("base", bs.Routes.Base()))

	stages := []namedStage{
		{"prepare", b.stagePrepare},
		{"load", b.stageLoad},
		{"parse", b.stageParse},
		{"render", b.stageRender},
		{"routes", b.stageRoutes},
		{"layout", b.stageLayout},
		{"index", b.stageIndex},
		{"write_pages", b.stageWritePages},
		{"copy_assets", b.stageCopyAssets},
		{"verify_links", b.stageVerifyLinks},
		{"promote", b.stagePromote},
	}

	err := runStages(ctx, bs, b.recorder, stages)

	bs.Report.Duration = time.Since(start)
	bs.Report.Pages = len(bs.Pages)
	bs.Report.Assets = len(bs.Assets)
	b.recorder.ObserveBuildDuration(bs.Report.Duration)

	if err != nil {
		// No partial publish: drop the staging tree.
		if rmErr := os.RemoveAll(bs.stageDir); rmErr != nil {
			slog.Warn("Failed to remove staging directory", logfields.Path(bs.stageDir), logfields.Error(rmErr))
		}
		b.recorder.IncBuildOutcome(bs.Report.Outcome)
		return bs.Report, err
	}

	bs.Report.Outcome = "success"
	b.recorder.IncBuildOutcome("success")
	b.recorder.SetPagesRendered(len(bs.Pages))
	b.recorder.SetAssetsCopied(len(bs.Assets))

	if !b.checkOnly {
		if perr := bs.Report.persist(bs.outputDir); perr != nil {
			slog.Warn("Failed to persist build report", logfields.Error(perr))
		}
	}

	slog.Info("Site build finished",
		logfields.BuildID(buildID),
		logfields.Count(len(bs.Pages)),
		logfields.DurationMS(float64(bs.Report.Duration.Milliseconds())))
	return bs.Report, nil
}

// stagePrepare creates a fresh staging directory.
func (b *Builder) stagePrepare(_ context.Context, bs *BuildState) error {
	if err := os.RemoveAll(bs.stageDir); err != nil {
		return apperrors.IOFailure("remove", bs.stageDir, err)
	}
	if err := os.MkdirAll(bs.stageDir, 0o755); err != nil {
		return apperrors.IOFailure("mkdir", bs.stageDir, err)
	}
	return nil
}

// stageLoad enumerates the content store.
func (b *Builder) stageLoad(_ context.Context, bs *BuildState) error {
	docs, err := b.source.Documents()
	if err != nil {
		return err
	}
	assets, err := b.source.Assets()
	if err != nil {
		return err
	}

	bs.Pages = make([]*Page, 0, len(docs))
	for _, doc := range docs {
		bs.Pages = append(bs.Pages, &Page{Source: doc.Path, Body: doc.Raw})
	}
	bs.Assets = assets
	slog.Debug("Content loaded", logfields.Count(len(docs)), slog.Int("assets", len(assets)))
	return nil
}

// stageParse splits and validates front matter for every document. Draft
// documents are dropped here and produce no page.
func (b *Builder) stageParse(_ context.Context, bs *BuildState) error {
	kept := bs.Pages[:0]
	for _, page := range bs.Pages {
		fm, body, has, _, err := frontmatter.Split(page.Body)
		if err != nil {
			return apperrors.MalformedFrontMatter(page.Source, err)
		}
		if !has {
			return apperrors.MalformedFrontMatter(page.Source, frontmatter.ErrNoFrontMatter)
		}

		fields, err := frontmatter.ParseYAML(fm)
		if err != nil {
			return apperrors.MalformedFrontMatter(page.Source, err)
		}
		meta, err := frontmatter.MetaFromMap(fields)
		if err != nil {
			return apperrors.MalformedFrontMatter(page.Source, err)
		}
		if meta.Draft {
			slog.Debug("Skipping draft", logfields.File(page.Source))
			continue
		}

		page.Meta = meta
		page.Body = body
		page.Slug = routes.Slugify(page.Source)
		if page.Slug == "" {
			return apperrors.EmptySlug(page.Source)
		}
		kept = append(kept, page)
	}
	bs.Pages = kept
	return nil
}

// stageRender converts every page body into an HTML fragment.
func (b *Builder) stageRender(_ context.Context, bs *BuildState) error {
	for _, page := range bs.Pages {
		html, err := b.renderer.Render(page.Body)
		if err != nil {
			return apperrors.RenderFailed(page.Source, err)
		}
		page.BodyHTML = html
	}
	return nil
}

// stageRoutes assigns output paths and rejects slug collisions.
func (b *Builder) stageRoutes(_ context.Context, bs *BuildState) error {
	for _, page := range bs.Pages {
		route, err := bs.Routes.Route(page.Slug, page.Source)
		if err != nil {
			return err
		}
		page.Route = route
		page.URL = bs.Routes.URLFor(page.Slug)
		bs.Report.Routes = append(bs.Report.Routes, route)
	}
	return nil
}

// stageLayout wraps every rendered fragment in the page shell.
func (b *Builder) stageLayout(_ context.Context, bs *BuildState) error {
	hasStylesheet := b.hasStylesheet(bs)
	for _, page := range bs.Pages {
		doc, err := b.layout.Apply(page, bs.Routes, hasStylesheet)
		if err != nil {
			return apperrors.RenderFailed(page.Source, err)
		}
		page.HTML = doc
	}
	return nil
}

// stageIndex renders the site index page listing posts newest first.
func (b *Builder) stageIndex(_ context.Context, bs *BuildState) error {
	ordered := make([]*Page, len(bs.Pages))
	copy(ordered, bs.Pages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Meta.PubDate.After(ordered[j].Meta.PubDate)
	})

	html, err := b.layout.ApplyIndex(ordered, bs.Routes, b.hasStylesheet(bs))
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryRender, apperrors.SeverityFatal, "failed to render site index")
	}
	bs.IndexHTML = html
	return nil
}

// stageWritePages writes the index page plus one {slug}/index.html per
// page into staging.
func (b *Builder) stageWritePages(_ context.Context, bs *BuildState) error {
	indexDest := filepath.Join(bs.stageDir, "index.html")
	if err := os.WriteFile(indexDest, []byte(bs.IndexHTML), 0o644); err != nil {
		return apperrors.IOFailure("write", indexDest, err)
	}

	for _, page := range bs.Pages {
		rel := strings.TrimPrefix(page.Route, bs.Routes.Base())
		rel = strings.TrimPrefix(rel, "/")
		dest := filepath.Join(bs.stageDir, filepath.FromSlash(rel))

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return apperrors.IOFailure("mkdir", page.Source, err)
		}
		if err := os.WriteFile(dest, []byte(page.HTML), 0o644); err != nil {
			return apperrors.IOFailure("write", page.Source, err)
		}
	}
	return nil
}

// stageCopyAssets carries every content asset into staging unchanged.
func (b *Builder) stageCopyAssets(_ context.Context, bs *BuildState) error {
	for _, asset := range bs.Assets {
		dest := filepath.Join(bs.stageDir, filepath.FromSlash(asset.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return apperrors.IOFailure("mkdir", dest, err)
		}
		if err := os.WriteFile(dest, asset.Data, 0o644); err != nil {
			return apperrors.IOFailure("write", asset.Path, err)
		}
	}
	return nil
}

// stageVerifyLinks rejects pages referencing files the build did not
// produce.
func (b *Builder) stageVerifyLinks(_ context.Context, bs *BuildState) error {
	if !b.cfg.Build.VerifyLinksEnabled() {
		return nil
	}

	checker := linkcheck.NewChecker(bs.Routes.Base())
	checker.AddOutput(bs.Routes.IndexPath())
	for _, page := range bs.Pages {
		checker.AddOutput(page.Route)
	}
	for _, asset := range bs.Assets {
		checker.AddOutput(bs.Routes.AssetPath(asset.Path))
	}

	if err := checker.CheckPage("index", bs.Routes.BaseURL(), bs.IndexHTML); err != nil {
		return err
	}
	for _, page := range bs.Pages {
		if err := checker.CheckPage(page.Source, page.URL, page.HTML); err != nil {
			return err
		}
	}
	return nil
}

// hasStylesheet reports whether the content carries the conventional root
// stylesheet.
func (b *Builder) hasStylesheet(bs *BuildState) bool {
	for _, asset := range bs.Assets {
		if asset.Path == stylesheetName {
			return true
		}
	}
	return false
}

// stagePromote atomically replaces the output tree with the staging tree.
func (b *Builder) stagePromote(_ context.Context, bs *BuildState) error {
	if b.checkOnly {
		return os.RemoveAll(bs.stageDir)
	}

	if err := os.RemoveAll(bs.outputDir); err != nil {
		return apperrors.IOFailure("remove", bs.outputDir, err)
	}
	if err := os.Rename(bs.stageDir, bs.outputDir); err != nil {
		return apperrors.IOFailure("rename", bs.stageDir, err)
	}
	return nil
}
