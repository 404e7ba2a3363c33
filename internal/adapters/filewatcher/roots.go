package filewatcher

import (
	"context"
	"log"
	"sync"

	"github.com/0xcro3dile/docguard/internal/domain/ports"
)

// RootWatcher keeps one watcher per workspace root and reports every change path
// to onChange. Roots are added lazily, the first time they are searched.
type RootWatcher struct {
	ctx      context.Context
	cancel   context.CancelFunc
	onChange func(path string)
	newWatch func() (ports.FileWatcher, error)

	mu       sync.Mutex
	watchers map[string]ports.FileWatcher
	wg       sync.WaitGroup
}

// NewRootWatcher creates a root watcher whose per-root watchers report files
// with one of extensions and prune with skipDir.
func NewRootWatcher(ctx context.Context, extensions []string, skipDir func(name string) bool, onChange func(path string)) *RootWatcher {
	return newRootWatcher(ctx, onChange, func() (ports.FileWatcher, error) {
		return NewFSNotifyWatcher(extensions, skipDir)
	})
}

func newRootWatcher(ctx context.Context, onChange func(path string), newWatch func() (ports.FileWatcher, error)) *RootWatcher {
	ctx, cancel := context.WithCancel(ctx)
	return &RootWatcher{
		ctx:      ctx,
		cancel:   cancel,
		onChange: onChange,
		newWatch: newWatch,
		watchers: make(map[string]ports.FileWatcher),
	}
}

// Ensure starts watching root if it is not watched yet.
func (r *RootWatcher) Ensure(root string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchers[root]; ok || r.ctx.Err() != nil {
		return
	}

	w, err := r.newWatch()
	if err != nil {
		log.Printf("[ERROR] creating watcher for %s: %v", root, err)
		return
	}
	events, err := w.Watch(r.ctx, root)
	if err != nil {
		w.Stop()
		log.Printf("[ERROR] watching %s: %v", root, err)
		return
	}
	r.watchers[root] = w
	log.Printf("[INFO] watching workspace root %s", root)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for ev := range events {
			r.onChange(ev.Path)
		}
	}()
}

// Watched returns the number of roots being watched.
func (r *RootWatcher) Watched() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

// Close stops all watchers and waits for their event loops to exit.
func (r *RootWatcher) Close() error {
	r.cancel()
	r.mu.Lock()
	var firstErr error
	for root, w := range r.watchers {
		if err := w.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.watchers, root)
	}
	r.mu.Unlock()
	r.wg.Wait()
	return firstErr
}
