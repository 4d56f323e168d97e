package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/perjones/mdblog/internal/logfields"
)

// watchDebounce absorbs editor save bursts into one rebuild.
const watchDebounce = 500 * time.Millisecond

// contentWatcher watches the content tree recursively and requests a
// rebuild after changes settle.
type contentWatcher struct {
	root      string
	watcher   *fsnotify.Watcher
	rebuildCh chan<- string
}

func newContentWatcher(root string, rebuildCh chan<- string) (*contentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("resolve content directory: %w", err)
	}

	cw := &contentWatcher{root: absRoot, watcher: watcher, rebuildCh: rebuildCh}
	if err := cw.addRecursive(absRoot); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	slog.Info("Watching content directory", logfields.Path(absRoot))
	return cw, nil
}

// addRecursive registers the directory and every subdirectory with the
// watcher. fsnotify does not watch recursively on its own.
func (cw *contentWatcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != dir {
			return filepath.SkipDir
		}
		if err := cw.watcher.Add(path); err != nil {
			return fmt.Errorf("watch directory %s: %w", path, err)
		}
		return nil
	})
}

// run consumes filesystem events until ctx is canceled, debouncing bursts
// into single rebuild requests.
func (cw *contentWatcher) run(ctx context.Context) {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.relevant(event) {
				continue
			}
			// New directories must be picked up so files created inside
			// them are seen.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := cw.addRecursive(event.Name); err != nil {
						slog.Warn("Failed to watch new directory",
							logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case cw.rebuildCh <- "content changed":
			default:
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// relevant filters out events that cannot affect the built site.
func (cw *contentWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	// Editors write through temp files ending in ~.
	if strings.HasSuffix(base, "~") {
		return false
	}
	return true
}

func (cw *contentWatcher) close() {
	_ = cw.watcher.Close()
}
