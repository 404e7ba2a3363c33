// Package workspace validates the folders a request may read from.
// Clean Architecture: Adapter implementing ports.WorkspaceGuard.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoots is returned by Resolve when a path is not under any allowed root.
var ErrOutsideRoots = errors.New("path is outside the allowed workspace roots")

// Guard resolves roots and checks containment on the local filesystem.
type Guard struct{}

// NewGuard creates a workspace guard.
func NewGuard() *Guard {
	return &Guard{}
}

// AllowedRoots returns the resolved candidates that exist and are directories,
// in input order, without duplicates.
func (g *Guard) AllowedRoots(candidates []string) []string {
	var roots []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		p, err := resolve(c)
		if err != nil {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		if !seen[p] {
			seen[p] = true
			roots = append(roots, p)
		}
	}
	return roots
}

// Resolve returns the resolved path when it lies under one of roots.
func (g *Guard) Resolve(path string, roots []string) (string, error) {
	p, err := resolve(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}
	for _, root := range roots {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return p, nil
		}
	}
	return "", ErrOutsideRoots
}

// resolve expands ~, makes the path absolute and follows symlinks.
// Paths that do not exist yet are cleaned but not followed.
func resolve(path string) (string, error) {
	path = ExpandHome(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
