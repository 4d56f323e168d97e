package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestContentWatcher_TriggersAfterWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "posts"), 0o755))

	rebuildCh := make(chan string, 1)
	cw, err := newContentWatcher(dir, rebuildCh)
	require.NoError(t, err)
	defer cw.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cw.run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts", "new.md"), []byte("# Hi"), 0o644))

	select {
	case reason := <-rebuildCh:
		require.Equal(t, "content changed", reason)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rebuild trigger after writing content")
	}
}

func TestContentWatcher_NewDirectoryIsPickedUp(t *testing.T) {
	dir := t.TempDir()

	rebuildCh := make(chan string, 1)
	cw, err := newContentWatcher(dir, rebuildCh)
	require.NoError(t, err)
	defer cw.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cw.run(ctx)

	sub := filepath.Join(dir, "drafts")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	select {
	case <-rebuildCh:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rebuild trigger after creating a directory")
	}

	// A file inside the new directory must also be seen.
	require.NoError(t, os.WriteFile(filepath.Join(sub, "wip.md"), []byte("# WIP"), 0o644))

	select {
	case <-rebuildCh:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rebuild trigger for a file in the new directory")
	}
}

func TestContentWatcher_IgnoresHiddenAndTempFiles(t *testing.T) {
	cw := &contentWatcher{}

	require.False(t, cw.relevant(fsnotify.Event{Name: "/content/.hello.md.swp", Op: fsnotify.Write}))
	require.False(t, cw.relevant(fsnotify.Event{Name: "/content/hello.md~", Op: fsnotify.Write}))
	require.False(t, cw.relevant(fsnotify.Event{Name: "/content/hello.md", Op: fsnotify.Chmod}))
	require.True(t, cw.relevant(fsnotify.Event{Name: "/content/hello.md", Op: fsnotify.Write}))
	require.True(t, cw.relevant(fsnotify.Event{Name: "/content/hello.md", Op: fsnotify.Remove}))
}
