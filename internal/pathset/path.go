// Package pathset implements the path and filter algebra of SPEC_FULL.md
// §4.A: project-relative paths with a rebase anchor, name filters built from
// exact/glob/regex primitives and boolean combinators, and lazy path-set
// expressions evaluated against the live file system.
package pathset

import (
	"path/filepath"
	"strings"

	"github.com/forgebuild/forge/internal/errors"
)

// Path identifies a file under a project root as an ordered list of name
// components plus an optional rebase anchor. Two paths are equal iff their
// resolved absolute files are equal (Equal), never by comparing component
// lists, so two different compositions that resolve to the same file
// collapse to the same identity.
type Path struct {
	root       string
	components []string
	// rebaseAt is the index into components from which relative-string
	// rendering begins; -1 means "render relative to root".
	rebaseAt int
}

// Root returns the Path identifying the project root itself.
func Root(root string) Path {
	abs, _ := filepath.Abs(root)
	return Path{root: abs, rebaseAt: -1}
}

// reservedComponent reports whether name is disallowed as a path component:
// ".", "..", empty, or containing a path separator.
func reservedComponent(name string) bool {
	if name == "" || name == "." || name == ".." {
		return true
	}

	return strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/')
}

// Join appends a single name component, returning an error if the component
// is "." ".." or contains a path separator.
func (p Path) Join(component string) (Path, error) {
	if reservedComponent(component) {
		return Path{}, errors.ParseFailuref("invalid path component %q", component)
	}

	next := make([]string, len(p.components)+1)
	copy(next, p.components)
	next[len(p.components)] = component

	return Path{root: p.root, components: next, rebaseAt: p.rebaseAt}, nil
}

// Rebase marks the current path as the anchor for subsequent relative
// renders: calling String() on a path derived from the result renders
// starting from this point instead of from the project root.
func (p Path) Rebase() Path {
	return Path{root: p.root, components: p.components, rebaseAt: len(p.components)}
}

// Abs returns the absolute, OS-native file path.
func (p Path) Abs() string {
	if len(p.components) == 0 {
		return p.root
	}

	return filepath.Join(append([]string{p.root}, p.components...)...)
}

// String renders the path relative to its rebase anchor (or the project
// root, if never rebased), using '/' as the separator regardless of OS so
// the rendering is portable for persistence (SPEC_FULL.md §4.B).
func (p Path) String() string {
	start := 0
	if p.rebaseAt >= 0 && p.rebaseAt <= len(p.components) {
		start = p.rebaseAt
	}

	if start >= len(p.components) {
		return "."
	}

	return strings.Join(p.components[start:], "/")
}

// Equal reports whether p and other resolve to the same absolute file,
// regardless of how each path's components were composed.
func (p Path) Equal(other Path) bool {
	return p.Abs() == other.Abs()
}

// Components returns a copy of the path's component list.
func (p Path) Components() []string {
	out := make([]string, len(p.components))
	copy(out, p.components)

	return out
}

// FromString splits a platform path-separator joined relative string back
// into a Path rooted at root, rejecting "." and ".." components.
func FromString(root, rel string) (Path, error) {
	p := Root(root)

	if rel == "" || rel == "." {
		return p, nil
	}

	parts := strings.FieldsFunc(rel, func(r rune) bool { return r == '/' || r == filepath.Separator })

	for _, part := range parts {
		var err error

		p, err = p.Join(part)
		if err != nil {
			return Path{}, err
		}
	}

	return p, nil
}
