package taskgraph

import (
	"fmt"
	"io"
)

// WriteDot renders t's transitive predecessor graph as Graphviz dot, one
// edge per dependency, for the CLI's "graph" verb (SPEC_FULL.md §6).
func WriteDot(w io.Writer, t *Task) error {
	if _, err := fmt.Fprintln(w, "digraph tasks {"); err != nil {
		return err
	}

	seen := map[string]bool{}

	var walk func(t *Task) error

	walk = func(t *Task) error {
		if seen[t.name] {
			return nil
		}

		seen[t.name] = true

		for _, p := range t.predecessors {
			if _, err := fmt.Fprintf(w, "  %q -> %q;\n", t.name, p.name); err != nil {
				return err
			}

			if err := walk(p); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(t); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, "}")

	return err
}
