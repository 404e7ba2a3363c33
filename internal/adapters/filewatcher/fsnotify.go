// Package filewatcher provides file system monitoring adapters.
// Clean Architecture: Adapter implementing ports.FileWatcher.
package filewatcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/0xcro3dile/docguard/internal/domain/ports"
)

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
// It watches a directory tree, adding subdirectories as they appear.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions []string              // File extensions to watch (e.g., ".pdf", ".txt")
	skipDir    func(name string) bool // Directories pruned from the watch
}

// NewFSNotifyWatcher creates a new file watcher reporting files with one of
// extensions. skipDir may be nil.
func NewFSNotifyWatcher(extensions []string, skipDir func(name string) bool) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	lowered := make([]string, len(extensions))
	for i, e := range extensions {
		lowered[i] = strings.ToLower(e)
	}
	extensions = lowered
	if skipDir == nil {
		skipDir = func(string) bool { return false }
	}

	return &FSNotifyWatcher{
		watcher:    w,
		extensions: extensions,
		skipDir:    skipDir,
	}, nil
}

// Watch starts monitoring the directory tree and emits events.
// Directory creation and removal are reported regardless of extension.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan ports.FileEvent, error) {
	if err := w.addTree(dir); err != nil {
		return nil, err
	}

	events := make(chan ports.FileEvent, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}

				isDir := false
				if event.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						isDir = true
						if w.skipDir(filepath.Base(event.Name)) {
							continue
						}
						if err := w.addTree(event.Name); err != nil {
							log.Printf("[ERROR] watch %s: %v", event.Name, err)
						}
					}
				}

				if !isDir && !w.isWatchedExtension(event.Name) && !w.isRemoval(event) {
					continue
				}

				var op ports.FileOperation
				switch {
				case event.Op&fsnotify.Create == fsnotify.Create:
					op = ports.FileCreated
				case event.Op&fsnotify.Write == fsnotify.Write:
					op = ports.FileModified
				case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					op = ports.FileDeleted
				default:
					continue
				}

				select {
				case events <- ports.FileEvent{Path: event.Name, Operation: op}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[ERROR] file watcher: %v", err)
			}
		}
	}()

	return events, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

// addTree adds dir and every non-pruned subdirectory.
func (w *FSNotifyWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skipDir(d.Name()) {
			return fs.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// isWatchedExtension checks if the file has a watched extension.
func (w *FSNotifyWatcher) isWatchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// isRemoval reports removals of extensionless paths, which may have been directories.
func (w *FSNotifyWatcher) isRemoval(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && filepath.Ext(event.Name) == ""
}
