// Package gitsource clones the content repository before a build when the
// configuration points the content store at a git URL.
package gitsource

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/perjones/mdblog/internal/config"
	apperrors "github.com/perjones/mdblog/internal/errors"
	"github.com/perjones/mdblog/internal/logfields"
)

// Client clones content repositories into a workspace directory.
type Client struct {
	workspaceDir string
}

// NewClient creates a Client rooted at the given workspace directory.
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir}
}

// Clone fetches the configured content repository fresh and returns the
// local checkout path. Any existing checkout is removed first; builds
// always start from the current remote state.
func (c *Client) Clone(ctx context.Context, src *config.GitSource) (string, error) {
	checkout := filepath.Join(c.workspaceDir, "content-repo")
	if err := os.RemoveAll(checkout); err != nil {
		return "", apperrors.IOFailure("remove", checkout, err)
	}

	slog.Debug("Cloning content repository",
		logfields.URL(src.URL), slog.String("branch", src.Branch))

	opts := &git.CloneOptions{URL: src.URL}
	if src.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + src.Branch)
		opts.SingleBranch = true
	}
	if src.Depth > 0 {
		opts.Depth = src.Depth
	}
	if src.Token != "" {
		// Token auth over HTTP, the form forges accept for deploy tokens.
		opts.Auth = &http.BasicAuth{Username: "token", Password: src.Token}
	}

	repo, err := git.PlainCloneContext(ctx, checkout, false, opts)
	if err != nil {
		return "", apperrors.GitCloneFailed(src.URL, err)
	}

	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Content repository cloned",
			logfields.URL(src.URL),
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(checkout))
	} else {
		slog.Info("Content repository cloned", logfields.URL(src.URL), logfields.Path(checkout))
	}
	return checkout, nil
}
