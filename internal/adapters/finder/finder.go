// Package finder ranks documents under the workspace roots by file name.
// Clean Architecture: Adapter implementing ports.FileFinder.
// Discovery is name-based only; content is read later by the extractor.
package finder

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

// Hit reasons and scores.
const (
	ReasonExactMatch    = "explicit_filename_exact_match"
	ReasonFilenameMatch = "filename_match"

	ScoreExactMatch = 9998.0
)

var ignoreDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"dist":          true,
	"build":         true,
	".next":         true,
	"__pycache__":   true,
	".venv":         true,
	".idea":         true,
	".vscode":       true,
	".pytest_cache": true,
	".mypy_cache":   true,
}

var (
	directiveRe = regexp.MustCompile(`(?i)\bfile\s*:\s*(?:"([^"]+)"|(\S+))`)
	splitRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Finder walks the roots on every search unless caching is enabled, in which case
// listings are kept per root until Invalidate reports a change under that root.
type Finder struct {
	exts map[string]bool

	mu      sync.RWMutex
	cache   map[string][]string
	roots   map[string]bool
	caching bool
	onRoot  func(root string)
}

// Option configures a Finder.
type Option func(*Finder)

// WithCache enables per-root listing caching. onNewRoot, if set, is called the
// first time a root is listed so the caller can start watching it.
func WithCache(onNewRoot func(root string)) Option {
	return func(f *Finder) {
		f.caching = true
		f.onRoot = onNewRoot
	}
}

// NewFinder creates a file finder that discovers files with one of extensions.
// Extensions are matched case-insensitively and include the leading dot.
func NewFinder(extensions []string, opts ...Option) *Finder {
	f := &Finder{
		exts:  make(map[string]bool, len(extensions)),
		cache: make(map[string][]string),
		roots: make(map[string]bool),
	}
	for _, ext := range extensions {
		f.exts[strings.ToLower(ext)] = true
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find implements ports.FileFinder.
func (f *Finder) Find(ctx context.Context, query string, roots []string, limit int) ([]entities.FileHit, error) {
	var files []string
	for _, root := range roots {
		listing, err := f.list(ctx, root)
		if err != nil {
			return nil, err
		}
		files = append(files, listing...)
	}

	wanted := Directive(query)
	tokens := tokenize(query)
	if wanted != "" {
		wantedLow := strings.ToLower(wanted)
		for _, p := range files {
			if strings.ToLower(filepath.Base(p)) == wantedLow {
				return []entities.FileHit{{Path: p, Reason: ReasonExactMatch, Score: ScoreExactMatch}}, nil
			}
		}
		tokens = tokenize(wanted)
	}

	var hits []entities.FileHit
	for _, p := range files {
		name := filepath.Base(p)
		s := scoreName(tokens, name)
		if wanted != "" && strings.Contains(strings.ToLower(name), strings.ToLower(wanted)) {
			s += 5
		}
		if s <= 0 {
			continue
		}
		hits = append(hits, entities.FileHit{Path: p, Reason: ReasonFilenameMatch, Score: s})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit < 1 {
		limit = 1
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Invalidate drops the cached listing of every root that contains path.
func (f *Finder) Invalidate(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for root := range f.cache {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			delete(f.cache, root)
			log.Printf("[DEBUG] finder cache invalidated for %s", root)
		}
	}
}

// list returns the cached listing of root, walking it on a miss.
func (f *Finder) list(ctx context.Context, root string) ([]string, error) {
	if !f.caching {
		return f.walk(ctx, root)
	}

	f.mu.RLock()
	listing, ok := f.cache[root]
	f.mu.RUnlock()
	if ok {
		return listing, nil
	}

	listing, err := f.walk(ctx, root)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cache[root] = listing
	first := !f.seen(root)
	f.mu.Unlock()

	if first && f.onRoot != nil {
		f.onRoot(root)
	}
	return listing, nil
}

// seen marks root as known and reports whether it already was. Callers hold mu.
func (f *Finder) seen(root string) bool {
	if f.roots[root] {
		return true
	}
	f.roots[root] = true
	return false
}

// walk lists candidate documents under root, pruning ignored and hidden directories.
func (f *Finder) walk(ctx context.Context, root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && SkipDir(name) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !f.Candidate(name) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return out, nil
}

// SkipDir reports whether a directory is pruned from discovery.
func SkipDir(name string) bool {
	return ignoreDirs[name] || strings.HasPrefix(name, ".")
}

// Candidate reports whether a file name is eligible for discovery.
// Files without an extension are eligible.
func (f *Finder) Candidate(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == "" || f.exts[ext]
}

// Directive returns the file name from a file:"X" or file:X directive.
func Directive(query string) string {
	m := directiveRe.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[2])
}

func tokenize(q string) []string {
	var out []string
	for _, t := range splitRe.Split(strings.ToLower(strings.TrimSpace(q)), -1) {
		if len(t) >= 2 {
			out = append(out, t)
		}
	}
	return out
}

// scoreName gives 2 points per token found in the name and 3 more when all are found.
func scoreName(tokens []string, name string) float64 {
	low := strings.ToLower(name)
	score := 0.0
	all := true
	for _, t := range tokens {
		if strings.Contains(low, t) {
			score += 2
		} else {
			all = false
		}
	}
	if score > 0 && all {
		score += 3
	}
	return score
}
