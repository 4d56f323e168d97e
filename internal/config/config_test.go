package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/perjones/mdblog/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: Test Blog\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Test Blog", cfg.Site.Title)
	require.Equal(t, "/", cfg.Site.Base)
	require.Equal(t, "./content", cfg.Content.Directory)
	require.Equal(t, "./public", cfg.Output.Directory)
	require.Equal(t, OutputModeStatic, cfg.Output.Mode)
	require.Equal(t, ":8080", cfg.Server.Listen)
	require.True(t, cfg.Build.VerifyLinksEnabled())
	require.True(t, cfg.Server.WatchEnabled())
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  url: https://blog.example.com
  base: /blog/
  title: Example
output:
  mode: server
  directory: ./out
server:
  listen: ":4321"
  rebuild_interval: 15m
build:
  verify_links: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/blog/", cfg.Site.Base)
	require.Equal(t, OutputModeServer, cfg.Output.Mode)
	require.Equal(t, ":4321", cfg.Server.Listen)
	require.False(t, cfg.Build.VerifyLinksEnabled())

	interval, err := cfg.Server.RebuildIntervalDuration()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, interval)
}

func TestLoad_MissingFile_ReturnsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryConfig))
}

func TestLoad_InvalidOutputMode_Rejected(t *testing.T) {
	path := writeConfig(t, "output:\n  mode: hybrid\n")
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
}

func TestLoad_RelativeSiteURL_Rejected(t *testing.T) {
	path := writeConfig(t, "site:\n  url: /not-absolute\n")
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
}

func TestLoad_GitSourceWithoutURL_Rejected(t *testing.T) {
	path := writeConfig(t, "content:\n  source:\n    branch: main\n")
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryValidation))
}

// An unset branch stays empty so the clone follows the remote HEAD,
// whatever the repository's default branch is called.
func TestLoad_GitSourceBranchStaysEmpty(t *testing.T) {
	path := writeConfig(t, "content:\n  source:\n    url: https://example.com/blog.git\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.Content.Source.Branch)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("BLOG_BASE", "/from-env/")
	path := writeConfig(t, "site:\n  base: ${BLOG_BASE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/from-env/", cfg.Site.Base)
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)

	require.NoError(t, Init(path, true))

	// The generated example must itself load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, OutputModeStatic, cfg.Output.Mode)
}
