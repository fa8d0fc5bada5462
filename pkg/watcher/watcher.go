// Package watcher triggers registry rebuilds when skill documents change
// on disk. Events are debounced so a burst of writes (editor saves, git
// checkouts) results in a single wholesale rebuild.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/parchment-ai/skillreg/pkg/logger"
)

const defaultDebounce = 500 * time.Millisecond

// RebuildFunc is invoked after a debounced change burst, typically
// (*registry.Registry).Rebuild.
type RebuildFunc func(ctx context.Context) error

// Watcher observes skill directories for markdown changes.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	rebuild  RebuildFunc
}

// Option is a function that configures a Watcher
type Option func(*Watcher) error

// WithDebounce overrides the default 500ms debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) error {
		if d < 0 {
			return errors.Errorf("debounce cannot be negative: %s", d)
		}
		w.debounce = d
		return nil
	}
}

// New creates a watcher over the given directories.
func New(dirs []string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, errors.New("at least one directory to watch must be specified")
	}
	if rebuild == nil {
		return nil, errors.New("rebuild callback must be specified")
	}

	w := &Watcher{
		dirs:     dirs,
		debounce: defaultDebounce,
		rebuild:  rebuild,
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Run watches until the context is cancelled. Directories that do not
// exist yet are skipped; they are picked up on the next Run.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer fsw.Close()

	watched := 0
	for _, dir := range w.dirs {
		if err := addRecursive(fsw, dir); err != nil {
			logger.G(ctx).WithError(err).WithField("dir", dir).Debug("skipping unwatchable directory")
			continue
		}
		watched++
	}
	if watched == 0 {
		return errors.New("no watchable skill directories")
	}

	logger.G(ctx).WithField("directories", watched).Info("watching skill directories")

	// A rebuild replaces the whole index, so all pending events collapse
	// into one timer.
	var pending *time.Timer
	rebuilds := make(chan struct{}, 1)
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.G(ctx).WithFields(map[string]interface{}{
				"file":      event.Name,
				"operation": event.Op.String(),
			}).Debug("skill document changed")

			// New skill subdirectories need watching too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(fsw, event.Name)
				}
			}

			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(w.debounce, func() {
				select {
				case rebuilds <- struct{}{}:
				default:
				}
			})

		case <-rebuilds:
			if err := w.rebuild(ctx); err != nil {
				logger.G(ctx).WithError(err).Error("skill index rebuild failed, keeping previous index")
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Error("file watcher error")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// relevant reports whether an event should schedule a rebuild: content
// changes to markdown files, or directory-level create/remove/rename.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.HasSuffix(event.Name, ".md") {
		return true
	}
	// Directory events carry no extension; removal can't be stat'ed, so
	// treat extensionless paths as potential skill directories.
	return filepath.Ext(event.Name) == ""
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
