package pathset_test

import (
	"path/filepath"
	"testing"

	"github.com/forgebuild/forge/internal/pathset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRejectsDotAndDotDot(t *testing.T) {
	t.Parallel()

	root := pathset.Root(t.TempDir())

	_, err := root.Join(".")
	assert.Error(t, err)

	_, err = root.Join("..")
	assert.Error(t, err)

	_, err = root.Join("a/b")
	assert.Error(t, err)
}

func TestEqualityByResolvedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := pathset.Root(dir)

	a, err := root.Join("src")
	require.NoError(t, err)
	a, err = a.Join("Main.x")
	require.NoError(t, err)

	b, err := pathset.FromString(dir, "src/Main.x")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Abs(), b.Abs())
}

func TestStringRendersRelativeToRebase(t *testing.T) {
	t.Parallel()

	root := pathset.Root(t.TempDir())

	sub, err := root.Join("alpha")
	require.NoError(t, err)
	sub, err = sub.Join("beta")
	require.NoError(t, err)

	rebased := sub.Rebase()

	leaf, err := rebased.Join("gamma")
	require.NoError(t, err)

	assert.Equal(t, "gamma", leaf.String())

	unrebased, err := root.Join("alpha")
	require.NoError(t, err)
	unrebased, err = unrebased.Join("beta")
	require.NoError(t, err)

	assert.Equal(t, "alpha/beta", unrebased.String())
}

func TestFromStringRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, rel := range []string{"a.x", "src/main/a.x", "deep/nested/dir/file.x"} {
		p, err := pathset.FromString(dir, rel)
		require.NoError(t, err)
		assert.Equal(t, filepath.ToSlash(rel), p.String())

		p2, err := pathset.FromString(dir, p.String())
		require.NoError(t, err)
		assert.True(t, p.Equal(p2))
	}
}
