package pathset_test

import (
	"testing"

	"github.com/forgebuild/forge/internal/pathset"
	"github.com/stretchr/testify/assert"
)

func TestGlobAnchoredWholeName(t *testing.T) {
	t.Parallel()

	f := pathset.Glob("*.scala")
	assert.True(t, f.Accept("Main.scala"))
	assert.False(t, f.Accept("Main.scala.bak"))
	assert.False(t, f.Accept("xMain.scalax"))
}

func TestGlobMultiStar(t *testing.T) {
	t.Parallel()

	f := pathset.Glob("Test*Suite*.scala")
	assert.True(t, f.Accept("TestFooSuiteBar.scala"))
	assert.False(t, f.Accept("FooSuite.scala"))
}

func TestFastGlobMatchesSameAsGlob(t *testing.T) {
	t.Parallel()

	a := pathset.Glob("*.class")
	b := pathset.FastGlob("*.class")

	for _, name := range []string{"Main.class", "Main.scala", "a.class.bak"} {
		assert.Equal(t, a.Accept(name), b.Accept(name), name)
	}
}

func TestDifferenceExcludesSubset(t *testing.T) {
	t.Parallel()

	f := pathset.Difference(pathset.All(), pathset.Exact(".svn", ".git"))
	assert.True(t, f.Accept("src"))
	assert.False(t, f.Accept(".svn"))
	assert.False(t, f.Accept(".git"))
}

func TestUnionShortCircuits(t *testing.T) {
	t.Parallel()

	f := pathset.Union(pathset.Exact("a"), pathset.Exact("b"))
	assert.True(t, f.Accept("a"))
	assert.True(t, f.Accept("b"))
	assert.False(t, f.Accept("c"))
}

func TestNegate(t *testing.T) {
	t.Parallel()

	f := pathset.Negate(pathset.Exact("a"))
	assert.False(t, f.Accept("a"))
	assert.True(t, f.Accept("b"))
}
