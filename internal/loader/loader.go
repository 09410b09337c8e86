package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/docquery-mcp/pkg/types"
)

// Config controls document discovery.
type Config struct {
	// Extensions is the set of file extensions treated as content,
	// including the leading dot (".md").
	Extensions []string

	// ExcludedDirs is the set of directory names never descended into.
	ExcludedDirs []string
}

// Loader discovers documentation files under one or more root directories.
type Loader struct {
	extensions map[string]struct{}
	excluded   map[string]struct{}
	logger     *zap.Logger
}

// New creates a Loader. A nil logger falls back to a no-op logger.
func New(cfg Config, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	extensions := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	excluded := make(map[string]struct{}, len(cfg.ExcludedDirs))
	for _, dir := range cfg.ExcludedDirs {
		excluded[dir] = struct{}{}
	}

	return &Loader{
		extensions: extensions,
		excluded:   excluded,
		logger:     logger,
	}
}

// Load walks every root directory in order and returns the deduplicated
// set of documents found.
//
// A nonexistent or unreadable root fails the whole load. A single
// unreadable file is logged and skipped. When roots overlap, a file is
// returned once: the first root to reach it wins, keyed by normalized
// absolute path. Traversal order within a root is filesystem-dependent
// and callers must not rely on it.
func (l *Loader) Load(ctx context.Context, roots []string) ([]types.Document, error) {
	seen := make(map[string]struct{})
	var docs []types.Document

	for _, root := range roots {
		loaded, err := l.loadRoot(ctx, root, seen)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}

	return docs, nil
}

// loadRoot walks a single root, appending documents not already in seen.
func (l *Loader) loadRoot(ctx context.Context, root string, seen map[string]struct{}) ([]types.Document, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrRootNotFound, root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrRootNotFound, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrRootNotFound, root)
	}

	var docs []types.Document

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// An unreadable root directory is fatal; anything below it
			// is logged and skipped.
			if path == absRoot {
				return fmt.Errorf("%w: %s: %v", types.ErrRootNotFound, root, err)
			}
			l.logger.Warn("skipping unreadable entry",
				zap.String("path", path),
				zap.Error(err),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if l.excludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !l.includeFile(d.Name()) {
			return nil
		}

		id := filepath.Clean(path)
		if _, ok := seen[id]; ok {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable file",
				zap.String("path", path),
				zap.Error(err),
			)
			return nil
		}

		seen[id] = struct{}{}
		docs = append(docs, types.NewDocument(id, string(content)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// excludeDir reports whether a directory name should be skipped.
// Hidden directories are skipped in addition to the configured set.
func (l *Loader) excludeDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := l.excluded[name]
	return ok
}

// includeFile reports whether a file name matches the content extensions.
func (l *Loader) includeFile(name string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
