package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_Error_IncludesCategoryAndSeverity(t *testing.T) {
	err := New(CategoryConfig, SeverityFatal, "configuration file not found")
	require.Contains(t, err.Error(), "config")
	require.Contains(t, err.Error(), "fatal")
	require.Contains(t, err.Error(), "configuration file not found")
}

func TestBuildError_Error_NamesOffendingFile(t *testing.T) {
	err := MalformedFrontMatter("content/about.md", stderrors.New("missing closing delimiter"))
	require.Contains(t, err.Error(), "content/about.md")
	require.Equal(t, "content/about.md", err.File())
}

func TestBuildError_Unwrap_PreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := IOFailure("write", "public/index.html", cause)
	require.ErrorIs(t, err, cause)
}

func TestIsCategory_MatchesThroughWrapping(t *testing.T) {
	err := DuplicateRoute("/blog/hello/index.html", "hello.md", "Hello.md")
	wrapped := fmt.Errorf("build aborted: %w", err)

	require.True(t, IsCategory(wrapped, CategoryRoute))
	require.False(t, IsCategory(wrapped, CategoryAsset))
	require.Equal(t, CategoryRoute, GetCategory(wrapped))
}

func TestGetCategory_NonBuildError_ReturnsInternal(t *testing.T) {
	require.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestWithContext_AccumulatesFields(t *testing.T) {
	err := New(CategoryAsset, SeverityFatal, "referenced asset not found").
		WithFile("post.md").
		WithContext("ref", "../images/hero.png")

	require.Equal(t, "post.md", err.Context["file"])
	require.Equal(t, "../images/hero.png", err.Context["ref"])
}
