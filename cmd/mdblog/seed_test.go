package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perjones/mdblog/internal/config"
	"github.com/perjones/mdblog/internal/content"
	"github.com/perjones/mdblog/internal/site"
)

func TestSeedContent_WritesStarterFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content")

	require.NoError(t, seedContent(dir, false))

	for _, name := range []string{"first-post.md", "about.md"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}
}

func TestSeedContent_PreservesExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "first-post.md")
	require.NoError(t, os.WriteFile(existing, []byte("mine"), 0o644))

	require.NoError(t, seedContent(dir, false))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "mine", string(data))

	require.NoError(t, seedContent(dir, true))
	data, err = os.ReadFile(existing)
	require.NoError(t, err)
	require.NotEqual(t, "mine", string(data))
}

// The seeded tree must build cleanly out of the box.
func TestSeedContent_Builds(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content")
	require.NoError(t, seedContent(dir, false))

	cfg := &config.Config{}
	cfg.Site.Base = "/"
	cfg.Site.Title = "Seed Blog"
	cfg.Content.Directory = dir
	cfg.Output.Directory = filepath.Join(t.TempDir(), "public")

	builder, err := site.NewBuilder(cfg, content.NewDirSource(dir))
	require.NoError(t, err)

	report, err := builder.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, "success", report.Outcome)
	require.Equal(t, 2, report.Pages)

	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "first-post", "index.html"))
	require.NoError(t, err)
}
