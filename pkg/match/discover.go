package match

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the default maximum file size for discovery (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// DefaultSkipPatterns contains directory names that are skipped by default during discovery.
var DefaultSkipPatterns = []string{
	"node_modules",
	".git",
	"vendor",
	"dist",
	".next",
	"__pycache__",
	"coverage",
	".cache",
	"target",
}

// PathMatcher decides which files belong to a language.
// *lang.Profile satisfies it.
type PathMatcher interface {
	MatchPath(path string) bool
}

// Discover walks root and reads every file owned by m.
// Source paths are slash-separated and relative to root.
//
// Unreadable entries are reported in errs and the walk continues past them.
// Files larger than the size limit are skipped. A cancelled context stops
// the walk and is reported as ErrSearchCancelled.
func Discover(ctx context.Context, root string, m PathMatcher, opts ...DiscoverOption) ([]Source, []error) {
	options := &DiscoverOptions{}
	for _, opt := range opts {
		opt(options)
	}
	applyDiscoverDefaults(options)

	skipSet := buildSkipSet(append(append([]string{}, DefaultSkipPatterns...), options.ExcludePatterns...))

	var (
		sources []Source
		errs    []error
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			errs = append(errs, fmt.Errorf("access error at %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() {
			if shouldSkipDir(path, root, skipSet) {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("compute relative path for %s: %w", path, err))
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !m.MatchPath(relPath) {
			return nil
		}
		if len(options.Patterns) > 0 && !matchesAnyPattern(relPath, options.Patterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get file info for %s: %w", path, err))
			return nil
		}
		if info.Size() > options.MaxFileSize {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read file %s: %w", relPath, err))
			return nil
		}

		sources = append(sources, Source{Path: relPath, Content: content})
		return nil
	})

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			errs = append(errs, fmt.Errorf("%w: %w", ErrSearchCancelled, err))
		} else {
			errs = append(errs, err)
		}
	}

	return sources, errs
}

func buildSkipSet(patterns []string) map[string]bool {
	skipSet := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		skipSet[p] = true
	}
	return skipSet
}

func shouldSkipDir(path, rootPath string, skipSet map[string]bool) bool {
	if path == rootPath {
		return false
	}
	return skipSet[filepath.Base(path)]
}

func matchesAnyPattern(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}
