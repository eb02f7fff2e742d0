package version_test

import (
	"testing"

	"github.com/forgebuild/forge/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullGrammar(t *testing.T) {
	t.Parallel()

	v, err := version.Parse("1.2.3-b45-beta")
	require.NoError(t, err)
	assert.False(t, v.IsOpaque())
	assert.Equal(t, 45, v.Build)
	assert.Equal(t, "beta", v.Status)
	assert.Equal(t, "1.2.3-b45-beta", v.String())
}

func TestParseMajorOnly(t *testing.T) {
	t.Parallel()

	v, err := version.Parse("7")
	require.NoError(t, err)
	assert.Equal(t, "7", v.String())
}

func TestParseMajorMinor(t *testing.T) {
	t.Parallel()

	v, err := version.Parse("1.4")
	require.NoError(t, err)
	assert.Equal(t, "1.4", v.String())
}

func TestParseOpaqueQuotedString(t *testing.T) {
	t.Parallel()

	v, err := version.Parse(`"nightly-snapshot"`)
	require.NoError(t, err)
	assert.True(t, v.IsOpaque())
	assert.Equal(t, "nightly-snapshot", v.Opaque)
}

func TestParseInvalidGrammarFails(t *testing.T) {
	t.Parallel()

	_, err := version.Parse("not-a-version!!")
	require.Error(t, err)
}

func TestCompareOrdersByNumericPrefixOnly(t *testing.T) {
	t.Parallel()

	a, err := version.Parse("1.2.3-b99")
	require.NoError(t, err)

	b, err := version.Parse("1.2.4-b1")
	require.NoError(t, err)

	assert.Equal(t, -1, a.Compare(b))
}

func TestCompareOnOpaqueVersionPanics(t *testing.T) {
	t.Parallel()

	a, err := version.Parse(`"custom"`)
	require.NoError(t, err)

	b, err := version.Parse("1.0.0")
	require.NoError(t, err)

	assert.Panics(t, func() { a.Compare(b) })
}

func TestMeetsConstraint(t *testing.T) {
	t.Parallel()

	v, err := version.Parse("1.5.0")
	require.NoError(t, err)

	ok, err := v.MeetsConstraint(">= 1.0, < 2.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.MeetsConstraint(">= 2.0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMeetsConstraintOnOpaqueVersionErrors(t *testing.T) {
	t.Parallel()

	v, err := version.Parse(`"custom"`)
	require.NoError(t, err)

	_, err = v.MeetsConstraint(">= 1.0")
	require.Error(t, err)
}
