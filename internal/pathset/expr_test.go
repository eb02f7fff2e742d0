package pathset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forgebuild/forge/internal/pathset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMkdir(t *testing.T, parts ...string) string {
	t.Helper()

	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(p, 0o755))

	return p
}

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestChildrenFiltersByName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "A.scala"))
	mustWriteFile(t, filepath.Join(dir, "README.md"))

	root := pathset.Root(dir)
	expr := pathset.Children(pathset.Single(root), pathset.Glob("*.scala"))

	paths, err := expr.Evaluate()
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "A.scala", paths[0].String())
}

func TestDescendantsSkipsExcludedDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustMkdir(t, dir, "src")
	mustMkdir(t, dir, ".svn")
	mustWriteFile(t, filepath.Join(dir, "src", "A.scala"))
	mustWriteFile(t, filepath.Join(dir, ".svn", "hidden.scala"))

	root := pathset.Root(dir)
	filter := pathset.Difference(pathset.Glob("*.scala"), pathset.Exact(".svn"))
	expr := pathset.Descendants(pathset.Single(root), filter, false)

	paths, err := expr.Evaluate()
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "src/A.scala", paths[0].String())
}

func TestUnionExprDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "A.scala"))

	root := pathset.Root(dir)
	single, err := root.Join("A.scala")
	require.NoError(t, err)

	expr := pathset.UnionExpr(pathset.Single(single), pathset.Single(single))

	paths, err := expr.Evaluate()
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}
