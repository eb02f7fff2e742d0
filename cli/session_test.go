package cli

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgebuild/forge/internal/project"
	"github.com/forgebuild/forge/internal/taskgraph"
	"github.com/forgebuild/forge/pkg/log"
)

func discardLogger() log.Logger { return log.New(nil, log.ErrorLevel) }

func TestResolveProjectFindsRootByDefault(t *testing.T) {
	t.Parallel()

	root := project.New(project.Info{Name: "root"})
	sess := newSession(root, discardLogger(), 1)

	p, ok := sess.resolveProject("")
	require.True(t, ok)
	assert.Same(t, root, p)
}

func TestResolveProjectFindsNestedSubProject(t *testing.T) {
	t.Parallel()

	root := project.New(project.Info{Name: "root"})
	sub := project.New(project.Info{Name: "sub"})
	root.SubProjects["sub"] = sub

	sess := newSession(root, discardLogger(), 1)

	p, ok := sess.resolveProject("sub")
	require.True(t, ok)
	assert.Same(t, sub, p)
}

func TestResolveProjectReportsUnknownName(t *testing.T) {
	t.Parallel()

	root := project.New(project.Info{Name: "root"})
	sess := newSession(root, discardLogger(), 1)

	_, ok := sess.resolveProject("nope")
	assert.False(t, ok)
}

func TestInvokeSequentialRunsTaskChain(t *testing.T) {
	t.Parallel()

	var order []string

	a := taskgraph.New("a", func() error { order = append(order, "a"); return nil })
	compile := taskgraph.New("compile", func() error { order = append(order, "compile"); return nil }).DependsOn(a)

	root := project.New(project.Info{Name: "root"})
	root.Tasks["compile"] = compile

	sess := newSession(root, discardLogger(), 1)

	_, err := sess.invoke(context.Background(), root, "compile")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "compile"}, order)
}

func TestInvokeReportsMissingAction(t *testing.T) {
	t.Parallel()

	root := project.New(project.Info{Name: "root"})
	sess := newSession(root, discardLogger(), 1)

	_, err := sess.invoke(context.Background(), root, "compile")
	require.Error(t, err)
}

func TestInvokeParallelRunsDependencyProjectFirst(t *testing.T) {
	t.Parallel()

	var order []string

	dep := project.New(project.Info{Name: "dep"})
	dep.Tasks["compile"] = taskgraph.New("compile", func() error { order = append(order, "dep"); return nil })

	root := project.New(project.Info{Name: "root"})
	root.Dependencies = []*project.Project{dep}
	root.Tasks["compile"] = taskgraph.New("compile", func() error { order = append(order, "root"); return nil })

	sess := newSession(root, discardLogger(), 2)

	_, err := sess.invoke(context.Background(), root, "compile")
	require.NoError(t, err)
	assert.Equal(t, []string{"dep", "root"}, order)
}

func TestInvokeParallelSkipsInteractiveTaskBodyInDependency(t *testing.T) {
	t.Parallel()

	var ran []string

	depPre := taskgraph.New("pre", func() error { ran = append(ran, "dep-pre"); return nil })
	depConsole := taskgraph.New("console", func() error { ran = append(ran, "dep-console"); return nil }).
		DependsOn(depPre).MarkInteractive()

	dep := project.New(project.Info{Name: "dep"})
	dep.Tasks["console"] = depConsole

	root := project.New(project.Info{Name: "root"})
	root.Dependencies = []*project.Project{dep}
	root.Tasks["console"] = taskgraph.New("console", func() error { ran = append(ran, "root-console"); return nil })

	sess := newSession(root, discardLogger(), 2)

	_, err := sess.invoke(context.Background(), root, "console")
	require.NoError(t, err)
	assert.Contains(t, ran, "dep-pre")
	assert.NotContains(t, ran, "dep-console")
	assert.Contains(t, ran, "root-console")
}

func TestIsKnownVerb(t *testing.T) {
	t.Parallel()

	assert.True(t, isKnownVerb("compile"))
	assert.False(t, isKnownVerb("bogus"))
}

func TestHandleSetAndGet(t *testing.T) {
	t.Parallel()

	root := project.New(project.Info{Name: "root"})
	sess := newSession(root, discardLogger(), 1)

	handleSet(sess, []string{"greeting", "hi"}, os.Stderr)
	assert.Equal(t, "hi", sess.vars["greeting"])

	out, err := os.CreateTemp(t.TempDir(), "get")
	require.NoError(t, err)
	defer out.Close()

	handleGet(sess, []string{"greeting"}, out, os.Stderr)

	got, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(got))
}
