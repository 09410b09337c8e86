package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docquery-mcp/pkg/types"
)

func testConfig() Config {
	return Config{
		Extensions:   []string{".md"},
		ExcludedDirs: []string{"node_modules", ".git", "dist"},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFiltersAndExcludes(t *testing.T) {
	// Scenario: guide.md is content, node_modules/lib.md is under an
	// excluded dir, notes.txt has the wrong extension.
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "guide.md"), "# Guide")
	writeFile(t, filepath.Join(root, "node_modules", "lib.md"), "# Lib")
	writeFile(t, filepath.Join(root, "notes.txt"), "notes")

	l := New(testConfig(), nil)
	docs, err := l.Load(context.Background(), []string{root})
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "# Guide", docs[0].Text)
	assert.Equal(t, filepath.Join(root, "guide.md"), docs[0].ID)
	assert.Equal(t, docs[0].ID, docs[0].FilePath())
}

func TestLoadOverlappingRoots(t *testing.T) {
	// Scenario: ./docs and ./docs/api both configured; ref.md lives
	// under both and must appear exactly once.
	root := t.TempDir()
	docsDir := filepath.Join(root, "docs")
	apiDir := filepath.Join(docsDir, "api")
	writeFile(t, filepath.Join(docsDir, "intro.md"), "# Intro")
	writeFile(t, filepath.Join(apiDir, "ref.md"), "# Ref")

	l := New(testConfig(), nil)

	// Narrower root first: its copy wins, the broader walk must not
	// add ref.md a second time.
	docs, err := l.Load(context.Background(), []string{apiDir, docsDir})
	require.NoError(t, err)

	ids := make(map[string]int)
	for _, d := range docs {
		ids[d.ID]++
	}
	assert.Len(t, docs, 2)
	assert.Equal(t, 1, ids[filepath.Join(apiDir, "ref.md")])
	assert.Equal(t, 1, ids[filepath.Join(docsDir, "intro.md")])
}

func TestLoadNoDuplicateIdentifiers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "a")
	writeFile(t, filepath.Join(root, "sub", "b.md"), "b")

	l := New(testConfig(), nil)
	// Same root twice plus the subdirectory.
	docs, err := l.Load(context.Background(), []string{root, root, filepath.Join(root, "sub")})
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, d := range docs {
		_, dup := seen[d.ID]
		assert.False(t, dup, "duplicate identifier %s", d.ID)
		seen[d.ID] = struct{}{}
	}
	assert.Len(t, docs, 2)
}

func TestLoadHiddenDirsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".obsidian", "hidden.md"), "hidden")
	writeFile(t, filepath.Join(root, "visible.md"), "visible")

	l := New(testConfig(), nil)
	docs, err := l.Load(context.Background(), []string{root})
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, "visible", docs[0].Text)
}

func TestLoadNonexistentRootFatal(t *testing.T) {
	l := New(testConfig(), nil)
	_, err := l.Load(context.Background(), []string{"/nonexistent/docquery/root"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRootNotFound)
}

func TestLoadRootIsFileFatal(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.md")
	writeFile(t, path, "x")

	l := New(testConfig(), nil)
	_, err := l.Load(context.Background(), []string{path})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRootNotFound)
}

func TestLoadUnreadableFileSkipped(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.md"), "ok")
	locked := filepath.Join(root, "locked.md")
	writeFile(t, locked, "secret")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	l := New(testConfig(), nil)
	docs, err := l.Load(context.Background(), []string{root})
	require.NoError(t, err, "a single unreadable file must not be fatal")

	require.Len(t, docs, 1)
	assert.Equal(t, "ok", docs[0].Text)
}

func TestLoadCaseInsensitiveExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "UPPER.MD"), "upper")

	l := New(testConfig(), nil)
	docs, err := l.Load(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadContextCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(testConfig(), nil)
	_, err := l.Load(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}
