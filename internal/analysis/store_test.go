package analysis_test

import (
	"os"
	"testing"

	"github.com/forgebuild/forge/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkSourceCreatesEmptyEntries(t *testing.T) {
	t.Parallel()

	st := analysis.New()
	st.MarkSource("A.x")

	assert.Contains(t, st.AllSources(), "A.x")
	assert.Empty(t, st.ClassesOf("A.x"))
}

func TestSelfEdgeNeverSurvivesRemoveSelfDep(t *testing.T) {
	t.Parallel()

	st := analysis.New()
	st.AddSourceDep("A.x", "A.x")
	st.AddSourceDep("A.x", "B.x")

	st.RemoveSelfDep("A.x")

	deps := st.SourceDeps["A.x"]
	_, hasSelf := deps["A.x"]
	_, hasB := deps["B.x"]

	assert.False(t, hasSelf)
	assert.True(t, hasB)
}

func TestRemoveSourceDeletesGeneratedClassesAndClearsAllMaps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	st := analysis.New()
	st.AddGenerated("B.x", "B.class")
	st.AddSourceDep("B.x", "A.x")
	st.AddTest("B.x", "pkg.BTest")

	// create the file so RemoveSource can delete it
	classPath := dir + "/B.class"
	require.NoError(t, os.WriteFile(classPath, []byte("x"), 0o644))

	st.RemoveSource("B.x", dir, nil)

	assert.NotContains(t, st.AllSources(), "B.x")
	assert.Empty(t, st.ClassesOf("B.x"))
	assert.NoFileExists(t, classPath)
}

func TestRemoveDependentErasesReverseEdges(t *testing.T) {
	t.Parallel()

	st := analysis.New()
	st.AddSourceDep("B.x", "A.x")
	st.AddSourceDep("C.x", "A.x")

	st.RemoveDependent("A.x")

	assert.NotContains(t, st.SourceDeps["B.x"], "A.x")
	assert.NotContains(t, st.SourceDeps["C.x"], "A.x")
}

func TestTakeDepsRemovesAndReturns(t *testing.T) {
	t.Parallel()

	st := analysis.New()
	st.AddSourceDep("B.x", "A.x")

	deps := st.TakeDeps("B.x")
	assert.Contains(t, deps, "A.x")
	assert.NotContains(t, st.SourceDeps, "B.x")
}

func TestExternalDepsByFileInverts(t *testing.T) {
	t.Parallel()

	st := analysis.New()
	st.AddExternalDep("/lib/L.jar", "A.x")
	st.AddExternalDep("/lib/L.jar", "B.x")

	byFile := st.ExternalDepsByFile()
	assert.ElementsMatch(t, []string{"A.x", "B.x"}, byFile["/lib/L.jar"])
}
