// Package config loads and validates the site configuration. A Config is
// read once per invocation and passed explicitly; there is no ambient
// global configuration state.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/perjones/mdblog/internal/errors"
)

// OutputMode selects what the configured invocation produces.
type OutputMode string

const (
	// OutputModeStatic writes a static file tree and exits.
	OutputModeStatic OutputMode = "static"
	// OutputModeServer builds and then serves the site with live rebuild.
	OutputModeServer OutputMode = "server"
)

// Config is the full application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Server  ServerConfig  `yaml:"server"`
}

// SiteConfig holds site identity and the base path applied to every
// generated route and absolute asset reference.
type SiteConfig struct {
	URL         string `yaml:"url,omitempty"`
	Base        string `yaml:"base,omitempty"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
}

// ContentConfig locates the content store.
type ContentConfig struct {
	Directory string     `yaml:"directory"`
	Source    *GitSource `yaml:"source,omitempty"`
}

// GitSource optionally pulls the content directory from a git repository
// before building.
type GitSource struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	Depth  int    `yaml:"depth,omitempty"`
	Token  string `yaml:"token,omitempty"`
}

// OutputConfig controls where and how the built site is written.
type OutputConfig struct {
	Mode      OutputMode `yaml:"mode,omitempty"`
	Directory string     `yaml:"directory"`
}

// BuildConfig holds build behavior knobs.
type BuildConfig struct {
	// VerifyLinks controls the post-render pass that rejects pages
	// referencing assets absent from the output tree.
	VerifyLinks *bool `yaml:"verify_links,omitempty"`
}

// VerifyLinksEnabled reports the effective link verification setting
// (enabled unless explicitly disabled).
func (b BuildConfig) VerifyLinksEnabled() bool {
	return b.VerifyLinks == nil || *b.VerifyLinks
}

// ServerConfig configures the preview server used in server output mode.
type ServerConfig struct {
	Listen          string `yaml:"listen,omitempty"`
	Watch           *bool  `yaml:"watch,omitempty"`
	RebuildInterval string `yaml:"rebuild_interval,omitempty"`
	Metrics         bool   `yaml:"metrics,omitempty"`
	HistoryDB       string `yaml:"history_db,omitempty"`
}

// WatchEnabled reports whether the content watcher should run (enabled
// unless explicitly disabled).
func (s ServerConfig) WatchEnabled() bool {
	return s.Watch == nil || *s.Watch
}

// RebuildIntervalDuration parses the optional periodic rebuild interval.
// Zero means no periodic rebuild.
func (s ServerConfig) RebuildIntervalDuration() (time.Duration, error) {
	if s.RebuildInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(s.RebuildInterval)
}

// Load reads, expands, and validates configuration from the given file.
func Load(configPath string) (*Config, error) {
	// Load .env if present so ${VAR} references in the config resolve.
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ConfigNotFound(configPath)
		}
		return nil, apperrors.IOFailure("read", configPath, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal, "failed to parse configuration").
			WithContext("path", configPath)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "My Blog"
	}
	if c.Site.Base == "" {
		c.Site.Base = "/"
	}
	if c.Content.Directory == "" {
		c.Content.Directory = "./content"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./public"
	}
	if c.Output.Mode == "" {
		c.Output.Mode = OutputModeStatic
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	// Branch deliberately has no default: an empty branch clones the
	// remote HEAD, which works for any default branch name.
}

// Validate checks field values that cannot be defaulted away.
func (c *Config) Validate() error {
	switch c.Output.Mode {
	case OutputModeStatic, OutputModeServer:
	default:
		return apperrors.ValidationFailed("output.mode",
			fmt.Sprintf("must be %q or %q, got %q", OutputModeStatic, OutputModeServer, c.Output.Mode))
	}

	if c.Site.URL != "" {
		u, err := url.Parse(c.Site.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return apperrors.ValidationFailed("site.url", "must be an absolute URL")
		}
	}

	if c.Content.Source != nil && c.Content.Source.URL == "" {
		return apperrors.ValidationFailed("content.source.url", "required when content.source is set")
	}

	if _, err := c.Server.RebuildIntervalDuration(); err != nil {
		return apperrors.ValidationFailed("server.rebuild_interval", "must be a duration like 15m")
	}

	return nil
}

// Init writes an example configuration file. Refuses to overwrite an
// existing file unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := strings.TrimLeft(exampleConfig, "\n")
	if err := os.WriteFile(configPath, []byte(example), 0o644); err != nil {
		return apperrors.IOFailure("write", configPath, err)
	}
	return nil
}

const exampleConfig = `
site:
  url: https://example.com
  base: /
  title: My Blog
  description: A personal blog

content:
  directory: ./content

output:
  mode: static
  directory: ./public

build:
  verify_links: true

server:
  listen: ":8080"
  watch: true
  metrics: true
`
