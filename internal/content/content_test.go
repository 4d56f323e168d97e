package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perjones/mdblog/internal/errors"
)

func writeFile(t *testing.T, root, rel string, data string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestDirSource_Documents_FindsMarkdownRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "about.md", "---\ntitle: About\n---\nhi\n")
	writeFile(t, root, "posts/first-post.md", "---\ntitle: First\n---\nbody\n")
	writeFile(t, root, "images/hero.png", "\x89PNG")

	docs, err := NewDirSource(root).Documents()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Deterministic ordering by path.
	require.Equal(t, "about.md", docs[0].Path)
	require.Equal(t, "posts/first-post.md", docs[1].Path)
	require.Contains(t, string(docs[1].Raw), "title: First")
}

func TestDirSource_Assets_FindsNonMarkdown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/first-post.md", "---\ntitle: First\n---\n")
	writeFile(t, root, "images/hero.png", "\x89PNG")
	writeFile(t, root, "style.css", "body{}")

	assets, err := NewDirSource(root).Assets()
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, "images/hero.png", assets[0].Path)
	require.Equal(t, "style.css", assets[1].Path)
}

func TestDirSource_SkipsHiddenFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".drafts/wip.md", "---\ntitle: WIP\n---\n")
	writeFile(t, root, ".notes.md", "scratch")
	writeFile(t, root, "visible.md", "---\ntitle: V\n---\n")

	docs, err := NewDirSource(root).Documents()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "visible.md", docs[0].Path)
}

func TestDirSource_MissingRoot_ReportsIOFailure(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "nope")).Documents()
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryFileSystem))
}

func TestMemSource_DeterministicOrdering(t *testing.T) {
	src := &MemSource{
		Docs: map[string][]byte{
			"b.md": []byte("b"),
			"a.md": []byte("a"),
		},
		Files: map[string][]byte{
			"z.png": []byte("z"),
			"a.png": []byte("a"),
		},
	}

	docs, err := src.Documents()
	require.NoError(t, err)
	require.Equal(t, "a.md", docs[0].Path)
	require.Equal(t, "b.md", docs[1].Path)

	assets, err := src.Assets()
	require.NoError(t, err)
	require.Equal(t, "a.png", assets[0].Path)
	require.Equal(t, "z.png", assets[1].Path)
}
