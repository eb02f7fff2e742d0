// Package taskgraph implements the task DAG and its sequential runner
// (SPEC_FULL.md §4.E): tasks compose with DependsOn/DescribedAs/Then, and
// Run walks the topological order of a task's transitive predecessors,
// short-circuiting at the first action that returns an error.
package taskgraph

import (
	"strings"
	"unicode"

	"github.com/forgebuild/forge/internal/errors"
)

// Action is the zero-argument, error-returning body of a task.
type Action func() error

// Task is a named, described unit of work with zero or more predecessors
// that must complete successfully before its own action runs.
type Task struct {
	action       Action
	name         string
	description  string
	predecessors []*Task
	interactive  bool
}

// New returns a task with the given name and action. Name is expected to
// already be in hyphen-case; FieldName derives that form from a Go field
// identifier for callers doing project reflection (component G).
func New(name string, action Action) *Task {
	return &Task{name: name, action: action}
}

// Name returns the task's hyphen-cased name.
func (t *Task) Name() string { return t.name }

// Description returns the task's human-readable description, if any.
func (t *Task) Description() string { return t.description }

// Interactive reports whether the task requires a connected terminal.
func (t *Task) Interactive() bool { return t.interactive }

// Predecessors returns the tasks this task directly depends on.
func (t *Task) Predecessors() []*Task { return t.predecessors }

// DependsOn returns a new task identical to t but with others appended to
// its predecessor list. Does not mutate t.
func (t *Task) DependsOn(others ...*Task) *Task {
	next := *t
	next.predecessors = append(append([]*Task{}, t.predecessors...), others...)

	return &next
}

// DescribedAs returns a new task identical to t but carrying text as its
// description.
func (t *Task) DescribedAs(text string) *Task {
	next := *t
	next.description = text

	return &next
}

// MarkInteractive returns a new task identical to t but flagged as
// requiring a connected terminal (used by the scheduler to refuse running
// it in parallel mode).
func (t *Task) MarkInteractive() *Task {
	next := *t
	next.interactive = true

	return &next
}

// Then composes t and next into a fresh task whose action runs t's action,
// then next's, short-circuiting on the first failure. The returned task's
// predecessor list is the union of both (deduplicated by name), so Run
// still executes every transitive predecessor exactly once before the
// combined action fires.
func (t *Task) Then(next *Task) *Task {
	combined := &Task{
		name:        t.name + "-then-" + next.name,
		description: t.description,
		predecessors: unionTasks(t.predecessors, next.predecessors),
		interactive:  t.interactive || next.interactive,
	}

	combined.action = func() error {
		if err := t.action(); err != nil {
			return err
		}

		return next.action()
	}

	return combined
}

func unionTasks(a, b []*Task) []*Task {
	seen := make(map[string]bool, len(a)+len(b))

	out := make([]*Task, 0, len(a)+len(b))
	for _, t := range append(append([]*Task{}, a...), b...) {
		if seen[t.name] {
			continue
		}

		seen[t.name] = true
		out = append(out, t)
	}

	return out
}

// RunDependenciesOnly runs every one of t's transitive predecessors, in
// topological order, but never t's own action - the behavior spec.md §3
// calls for when t is interactive and its project is a transitive
// dependency of the directly requested project rather than the requested
// project itself (component G / SPEC_FULL.md §4.G).
func (t *Task) RunDependenciesOnly() error {
	order, err := topoOrder(t)
	if err != nil {
		return err
	}

	for _, task := range order {
		if task == t || task.action == nil {
			continue
		}

		if err := task.action(); err != nil {
			return errors.NewTaskFailure("task "+task.name+" failed", err)
		}
	}

	return nil
}

// Run computes t's topological order (t's transitive predecessors, each
// appearing once, before t itself) and invokes every action in that order,
// stopping at the first error.
func (t *Task) Run() error {
	order, err := topoOrder(t)
	if err != nil {
		return err
	}

	for _, task := range order {
		if task.action == nil {
			continue
		}

		if err := task.action(); err != nil {
			return errors.NewTaskFailure("task "+task.name+" failed", err)
		}
	}

	return nil
}

func topoOrder(root *Task) ([]*Task, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := map[string]int{}
	order := make([]*Task, 0)

	var visit func(t *Task) error

	visit = func(t *Task) error {
		switch color[t.name] {
		case black:
			return nil
		case gray:
			return errors.New("cycle detected at task " + t.name)
		}

		color[t.name] = gray

		for _, p := range t.predecessors {
			if err := visit(p); err != nil {
				return err
			}
		}

		color[t.name] = black
		order = append(order, t)

		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}

	return order, nil
}

// FieldName converts a Go-style camelCase or PascalCase field identifier
// into the hyphen-case action name the project model (component G) uses to
// key its task map, e.g. "CompileTest" -> "compile-test".
func FieldName(field string) string {
	var b strings.Builder

	runes := []rune(field)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('-')
			}

			b.WriteRune(unicode.ToLower(r))
			continue
		}

		b.WriteRune(r)
	}

	return strings.TrimPrefix(b.String(), "-")
}
