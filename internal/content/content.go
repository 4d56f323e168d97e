// Package content enumerates the Markdown documents and assets that make
// up the site. All filesystem access is behind the Source interface so the
// parse/render/route logic can be exercised purely in memory.
package content

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/perjones/mdblog/internal/errors"
	"github.com/perjones/mdblog/internal/logfields"
)

// Document is one raw Markdown content file. Immutable after load.
type Document struct {
	Path string // source-relative identifier, e.g. "posts/first-post.md"
	Raw  []byte
}

// Asset is a non-Markdown file carried into the output tree unchanged.
type Asset struct {
	Path string // source-relative, e.g. "images/hero.png"
	Data []byte
}

// Source yields the documents and assets of one build. Implementations
// must return stable, deterministic ordering.
type Source interface {
	Documents() ([]Document, error)
	Assets() ([]Asset, error)
}

// DirSource reads content from a directory tree: every .md file is a
// document, everything else an asset. Hidden files and directories are
// skipped.
type DirSource struct {
	root string
}

// NewDirSource creates a Source over the given content directory.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: filepath.Clean(root)}
}

// Documents walks the content tree and loads every Markdown file.
func (s *DirSource) Documents() ([]Document, error) {
	var docs []Document
	err := s.walk(func(rel string, data []byte) {
		docs = append(docs, Document{Path: rel, Raw: data})
	}, func(rel string) bool {
		return strings.EqualFold(filepath.Ext(rel), ".md")
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	slog.Debug("Content documents loaded", logfields.Path(s.root), logfields.Count(len(docs)))
	return docs, nil
}

// Assets walks the content tree and loads every non-Markdown file.
func (s *DirSource) Assets() ([]Asset, error) {
	var assets []Asset
	err := s.walk(func(rel string, data []byte) {
		assets = append(assets, Asset{Path: rel, Data: data})
	}, func(rel string) bool {
		return !strings.EqualFold(filepath.Ext(rel), ".md")
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })
	return assets, nil
}

func (s *DirSource) walk(emit func(rel string, data []byte), match func(rel string) bool) error {
	if _, err := os.Stat(s.root); err != nil {
		return errors.IOFailure("stat", s.root, err)
	}

	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.IOFailure("walk", path, err)
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return errors.IOFailure("rel", path, relErr)
		}
		rel = filepath.ToSlash(rel)
		if !match(rel) {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return errors.IOFailure("read", rel, readErr)
		}
		emit(rel, data)
		return nil
	})
}

// MemSource is an in-memory Source for tests and programmatic builds.
type MemSource struct {
	Docs  map[string][]byte // path -> raw document
	Files map[string][]byte // path -> asset data
}

func (s *MemSource) Documents() ([]Document, error) {
	docs := make([]Document, 0, len(s.Docs))
	for path, raw := range s.Docs {
		docs = append(docs, Document{Path: path, Raw: raw})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (s *MemSource) Assets() ([]Asset, error) {
	assets := make([]Asset, 0, len(s.Files))
	for path, data := range s.Files {
		assets = append(assets, Asset{Path: path, Data: data})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })
	return assets, nil
}
