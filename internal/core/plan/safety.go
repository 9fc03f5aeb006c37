package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Boundary rejects candidate paths that resolve outside the project root
// or match a protected glob. Callers drop rejected paths before plan
// construction; a rejection is never a plan-level error.
type Boundary struct {
	root      string
	protected []string
}

// NewBoundary creates a Boundary for the given project root. Protected
// patterns use doublestar glob syntax and match against the cleaned
// slash-separated relative path.
func NewBoundary(root string, protected []string) *Boundary {
	return &Boundary{root: filepath.Clean(root), protected: protected}
}

// Root returns the project root the boundary guards.
func (b *Boundary) Root() string {
	return b.root
}

// Check canonicalizes a candidate relative path and returns the cleaned
// path, or an error describing why the path is unsafe.
func (b *Boundary) Check(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("absolute path %q not allowed", path)
	}

	cleaned := filepath.Clean(filepath.FromSlash(path))

	rel, err := filepath.Rel(b.root, filepath.Join(b.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes project root", path)
	}

	slashed := filepath.ToSlash(rel)
	for _, pattern := range b.protected {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return "", fmt.Errorf("path %q matches protected pattern %q", path, pattern)
		}
	}

	return rel, nil
}

// Abs returns the absolute path under the root for an already-checked
// relative path.
func (b *Boundary) Abs(rel string) string {
	return filepath.Join(b.root, rel)
}
