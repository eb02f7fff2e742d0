package bootstrap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forgebuild/forge/internal/bootstrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectInfo(t *testing.T, root, name, version string) {
	t.Helper()

	metaDir := filepath.Join(root, bootstrap.MetadataDir)
	require.NoError(t, os.MkdirAll(metaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(metaDir, "info"), []byte(name+"\n"+version+"\n"), 0o644))
}

func writeSource(t *testing.T, root, relPath, contents string) string {
	t.Helper()

	path := filepath.Join(root, "src", "main", "scala", relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestLoadWithoutBuilderProjectRegistersCompileAndCleanTasks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectInfo(t, root, "demo", "1.0")
	writeSource(t, root, "Greeter.scala", "class Greeter {\n}\n")

	p, cleanup, err := bootstrap.Load(root)
	require.NoError(t, err)
	defer cleanup()

	assert.Contains(t, p.Tasks, "compile")
	assert.Contains(t, p.Tasks, "clean")
}

func TestNativeCompileTaskPopulatesAnalysisAndDetectsTests(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectInfo(t, root, "demo", "1.0")
	src := writeSource(t, root, "BTest.scala", "class BTest extends TestCase {\n}\n")

	p, cleanup, err := bootstrap.Load(root)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, p.Tasks["compile"].Run())

	assert.Contains(t, p.Analysis.AllSources(), src)
	assert.Contains(t, p.Analysis.ClassesOf(src), "BTest.class")
	assert.Contains(t, p.Analysis.AllTests(), "BTest<<<TestCase")
}

func TestNativeCompileTaskIsIdempotentOnUnchangedSources(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectInfo(t, root, "demo", "1.0")
	writeSource(t, root, "Greeter.scala", "class Greeter {\n}\n")

	p, cleanup, err := bootstrap.Load(root)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, p.Tasks["compile"].Run())

	before := p.Analysis.AllClasses()

	p2, cleanup2, err := bootstrap.Load(root)
	require.NoError(t, err)
	defer cleanup2()

	require.NoError(t, p2.Tasks["compile"].Run())

	assert.ElementsMatch(t, before, p2.Analysis.AllClasses())
}

func TestNativeTestTaskRunsWithNoConfiguredFrameworks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectInfo(t, root, "demo", "1.0")
	writeSource(t, root, "BTest.scala", "class BTest extends TestCase {\n}\n")

	p, cleanup, err := bootstrap.Load(root)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, p.Tasks["compile"].Run())

	assert.Contains(t, p.Analysis.AllTests(), "BTest<<<TestCase")
	assert.NoError(t, p.Tasks["test"].Run())
}

func TestNativeCleanTaskRemovesOutputDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectInfo(t, root, "demo", "1.0")
	writeSource(t, root, "Greeter.scala", "class Greeter {\n}\n")

	p, cleanup, err := bootstrap.Load(root)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, p.Tasks["compile"].Run())
	require.NoError(t, p.Tasks["clean"].Run())

	assert.NoDirExists(t, filepath.Join(root, "target", "classes"))
}
