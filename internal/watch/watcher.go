// Package watch triggers rebuilds when the mod's sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/livebuild/internal/logfields"
)

// OnChange is called once per debounced burst of changes with the affected paths.
type OnChange func(ctx context.Context, changed []string) error

// Watcher monitors files and directory trees and calls OnChange after
// Debounce has elapsed without further events. Calls never overlap.
type Watcher struct {
	dirs     []string
	files    map[string]bool
	debounce time.Duration
	onChange OnChange
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// skipDir reports directories that never hold sources.
func skipDir(name string) bool {
	return name == "target" || name == "build" || (strings.HasPrefix(name, ".") && name != ".")
}

// New watches paths. Directories are watched recursively, files through their
// parent directory. Paths that do not exist are skipped with a warning.
func New(paths []string, debounce time.Duration, onChange OnChange, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		files:    make(map[string]bool),
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		logger:   logger,
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve watch path %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Watch path does not exist", logfields.Path(abs))
			continue
		}
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to stat watch path %s: %w", abs, err)
		}
		if info.IsDir() {
			w.dirs = append(w.dirs, abs)
			if err := w.addTree(abs); err != nil {
				_ = fw.Close()
				return nil, err
			}
			continue
		}
		w.files[abs] = true
		if err := fw.Add(filepath.Dir(abs)); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}
	}
	if len(w.dirs) == 0 && len(w.files) == 0 {
		_ = fw.Close()
		return nil, errors.New("no existing paths to watch")
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// relevant reports whether an event on name concerns a watched path.
func (w *Watcher) relevant(name string) bool {
	if w.files[name] {
		return true
	}
	for _, d := range w.dirs {
		if name == d || strings.HasPrefix(name, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run blocks until ctx is done, calling OnChange for each debounced burst.
// Errors from OnChange are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	w.logger.Info("Watching for changes", slog.Any("dirs", w.dirs), slog.Int("files", len(w.files)))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending []string

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if !slices.Contains(pending, event.Name) {
				pending = append(pending, event.Name)
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			changed := pending
			pending = nil
			if err := w.onChange(ctx, changed); err != nil {
				w.logger.Error("Rebuild failed", logfields.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}
