package staleness_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forgebuild/forge/internal/analysis"
	"github.com/forgebuild/forge/internal/staleness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func setTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// newFixture sets up A.x and B.x (B depends on A), compiles them once
// (simulating the external compiler via direct Store calls, as the
// callback registry would), and returns the engine with that baseline
// analysis already saved to disk.
func newFixture(t *testing.T) (*staleness.Engine, string, string, string) {
	t.Helper()

	root := t.TempDir()
	outputDir := filepath.Join(root, "classes")
	analysisDir := filepath.Join(root, "analysis")
	require.NoError(t, os.MkdirAll(outputDir, 0o755))

	aPath := filepath.Join(root, "A.x")
	bPath := filepath.Join(root, "B.x")

	base := time.Now().Add(-time.Hour)
	touch(t, aPath, base)
	touch(t, bPath, base)

	store := analysis.New()
	engine := &staleness.Engine{Store: store, OutputDir: outputDir, AnalysisDir: analysisDir}

	dirty, err := engine.ComputeDirty([]string{aPath, bPath}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{aPath, bPath}, dirty, "fresh project: both sources are dirty")

	// Simulate the compiler (via the callback registry in a real build)
	// reporting the facts it discovered for this pass.
	store.AddGenerated(aPath, "A.cls")
	store.AddGenerated(bPath, "B.cls")
	store.AddSourceDep(bPath, aPath)
	store.MarkSource(aPath)

	classMTime := base.Add(time.Minute)
	touch(t, filepath.Join(outputDir, "A.cls"), classMTime)
	touch(t, filepath.Join(outputDir, "B.cls"), classMTime)

	require.NoError(t, engine.Finalize(true))

	return engine, root, aPath, bPath
}

func TestFreshCompileThenNoopRecompile(t *testing.T) {
	t.Parallel()

	engine, _, aPath, bPath := newFixture(t)

	assert.Empty(t, engine.Store.SourceDeps[aPath])
	assert.Contains(t, engine.Store.SourceDeps[bPath], aPath)

	dirty, err := engine.ComputeDirty([]string{aPath, bPath}, nil)
	require.NoError(t, err)
	assert.Empty(t, dirty, "nothing changed since the fresh compile")
}

func TestTouchingASourcePropagatesToDependents(t *testing.T) {
	t.Parallel()

	engine, _, aPath, bPath := newFixture(t)

	setTime(t, aPath, time.Now().Add(time.Hour))

	dirty, err := engine.ComputeDirty([]string{aPath, bPath}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{aPath, bPath}, dirty, "B must recompile because it depends on A")
}

func TestExternalArtifactChangeRecompilesOnlyDependent(t *testing.T) {
	t.Parallel()

	engine, root, aPath, bPath := newFixture(t)

	libPath := filepath.Join(root, "L.jar")
	touch(t, libPath, time.Now().Add(-30*time.Minute))
	engine.Store.AddExternalDep(libPath, bPath)
	require.NoError(t, engine.Finalize(true))

	// Replace L.jar with a newer file.
	setTime(t, libPath, time.Now().Add(time.Hour))

	dirty, err := engine.ComputeDirty([]string{aPath, bPath}, []string{libPath})
	require.NoError(t, err)
	assert.Equal(t, []string{bPath}, dirty)
}

func TestRemovedSourceIsCleanedUpNotRecompiled(t *testing.T) {
	t.Parallel()

	engine, _, aPath, bPath := newFixture(t)

	classPath := filepath.Join(engine.OutputDir, "B.cls")
	require.FileExists(t, classPath)
	require.NoError(t, os.Remove(bPath))

	dirty, err := engine.ComputeDirty([]string{aPath}, nil)
	require.NoError(t, err)
	assert.Empty(t, dirty, "a removed source is cleaned up, not recompiled")

	assert.NoFileExists(t, classPath)
	assert.NotContains(t, engine.Store.AllSources(), bPath)
}
