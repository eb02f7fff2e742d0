package pathset

import (
	"os"
	"sort"

	"github.com/forgebuild/forge/internal/errors"
)

// Expr is a lazy path-set expression: union, single-name filter,
// immediate-children filter, or descendant filter. It is evaluated on
// demand against the live file system and yields a deterministic,
// duplicate-free slice of paths (spec.md §3, §4.A).
type Expr interface {
	Evaluate() ([]Path, error)
}

type singleExpr struct{ path Path }

// Single lifts one already-known Path into an Expr.
func Single(p Path) Expr { return singleExpr{path: p} }

func (e singleExpr) Evaluate() ([]Path, error) { return []Path{e.path}, nil }

type unionExpr struct{ exprs []Expr }

// UnionExpr combines several expressions, de-duplicating by resolved
// absolute file and preserving first-seen order.
func UnionExpr(exprs ...Expr) Expr { return unionExpr{exprs: exprs} }

func (e unionExpr) Evaluate() ([]Path, error) {
	var out []Path

	seen := map[string]struct{}{}

	for _, sub := range e.exprs {
		paths, err := sub.Evaluate()
		if err != nil {
			return nil, err
		}

		for _, p := range paths {
			if _, ok := seen[p.Abs()]; ok {
				continue
			}

			seen[p.Abs()] = struct{}{}

			out = append(out, p)
		}
	}

	return out, nil
}

type childrenExpr struct {
	base   Expr
	filter Filter
}

// Children yields the immediate directory entries of each path in base that
// satisfy filter.
func Children(base Expr, filter Filter) Expr {
	return childrenExpr{base: base, filter: filter}
}

func listDir(dir Path) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir.Abs())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.NewIOFailure("could not list directory "+dir.Abs(), err)
	}

	return entries, nil
}

func (e childrenExpr) Evaluate() ([]Path, error) {
	bases, err := e.base.Evaluate()
	if err != nil {
		return nil, err
	}

	var out []Path

	for _, base := range bases {
		entries, err := listDir(base)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if !e.filter.Accept(entry.Name()) {
				continue
			}

			child, err := base.Join(entry.Name())
			if err != nil {
				continue
			}

			out = append(out, child)
		}
	}

	return out, nil
}

type descendantsExpr struct {
	base        Expr
	filter      Filter
	includeRoot bool
}

// Descendants recursively walks each path in base, yielding every entry
// that satisfies filter. It only recurses into a directory when the
// directory itself satisfies filter.basePart() — every name the filter's
// exclusion part does not reject, so a Difference(f, exclude(".svn"))
// filter still descends into
// ordinary directories while never entering ".svn" (spec.md §4.A).
func Descendants(base Expr, filter Filter, includeRoot bool) Expr {
	return descendantsExpr{base: base, filter: filter, includeRoot: includeRoot}
}

func (e descendantsExpr) Evaluate() ([]Path, error) {
	bases, err := e.base.Evaluate()
	if err != nil {
		return nil, err
	}

	var out []Path

	for _, base := range bases {
		if e.includeRoot && e.filter.Accept(lastComponent(base)) {
			out = append(out, base)
		}

		if err := e.walk(base, &out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (e descendantsExpr) walk(dir Path, out *[]Path) error {
	entries, err := listDir(dir)
	if err != nil {
		return err
	}

	// Stable iteration order: the file-system listing order is preserved,
	// but sorted lexicographically for reproducible downstream output when
	// the result is later persisted (spec.md §4.A).
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		child, err := dir.Join(entry.Name())
		if err != nil {
			continue
		}

		if e.filter.Accept(entry.Name()) {
			*out = append(*out, child)
		}

		if entry.IsDir() && e.filter.basePart().Accept(entry.Name()) {
			if err := e.walk(child, out); err != nil {
				return err
			}
		}
	}

	return nil
}

func lastComponent(p Path) string {
	comps := p.Components()
	if len(comps) == 0 {
		return ""
	}

	return comps[len(comps)-1]
}
