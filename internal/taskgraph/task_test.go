package taskgraph_test

import (
	"bytes"
	"testing"

	"github.com/forgebuild/forge/internal/taskgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesPredecessorsBeforeTask(t *testing.T) {
	t.Parallel()

	var order []string

	a := taskgraph.New("a", func() error { order = append(order, "a"); return nil })
	b := taskgraph.New("b", func() error { order = append(order, "b"); return nil }).DependsOn(a)
	c := taskgraph.New("c", func() error { order = append(order, "c"); return nil }).DependsOn(b)

	require.NoError(t, c.Run())
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRunShortCircuitsOnFirstFailure(t *testing.T) {
	t.Parallel()

	var order []string

	a := taskgraph.New("a", func() error {
		order = append(order, "a")
		return assert.AnError
	})
	b := taskgraph.New("b", func() error { order = append(order, "b"); return nil }).DependsOn(a)

	err := b.Run()
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, order)
}

func TestRunDetectsCycle(t *testing.T) {
	t.Parallel()

	a := taskgraph.New("a", func() error { return nil })
	b := taskgraph.New("b", func() error { return nil })

	a = a.DependsOn(b)
	b = b.DependsOn(a)

	err := b.Run()
	require.Error(t, err)
}

func TestThenShortCircuitsAndPreservesPredecessors(t *testing.T) {
	t.Parallel()

	var order []string

	pre := taskgraph.New("pre", func() error { order = append(order, "pre"); return nil })

	first := taskgraph.New("first", func() error {
		order = append(order, "first")
		return assert.AnError
	}).DependsOn(pre)

	second := taskgraph.New("second", func() error { order = append(order, "second"); return nil })

	combined := first.Then(second)

	err := combined.Run()
	require.Error(t, err)
	assert.Equal(t, []string{"pre", "first"}, order)
}

func TestRunDependenciesOnlySkipsOwnAction(t *testing.T) {
	t.Parallel()

	var order []string

	a := taskgraph.New("a", func() error { order = append(order, "a"); return nil })
	b := taskgraph.New("b", func() error { order = append(order, "b"); return nil }).DependsOn(a)
	c := taskgraph.New("c", func() error { order = append(order, "c"); return nil }).DependsOn(b)

	require.NoError(t, c.RunDependenciesOnly())
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestDependsOnDoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	a := taskgraph.New("a", func() error { return nil })
	base := taskgraph.New("b", func() error { return nil })

	derived := base.DependsOn(a)

	assert.Empty(t, base.Predecessors())
	assert.Len(t, derived.Predecessors(), 1)
}

func TestFieldNameConvertsCamelCaseToHyphenCase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "compile", taskgraph.FieldName("Compile"))
	assert.Equal(t, "compile-test", taskgraph.FieldName("CompileTest"))
	assert.Equal(t, "update-classpath-xml", taskgraph.FieldName("UpdateClasspathXML"))
}

func TestWriteDotRendersEdges(t *testing.T) {
	t.Parallel()

	a := taskgraph.New("a", func() error { return nil })
	b := taskgraph.New("b", func() error { return nil }).DependsOn(a)

	var buf bytes.Buffer
	require.NoError(t, taskgraph.WriteDot(&buf, b))

	out := buf.String()
	assert.Contains(t, out, `"b" -> "a"`)
}
