// Package testshim implements the test-framework shim of spec.md §4.I:
// discovery of test definitions recorded in analysis, partitioning by
// framework, and worst-of-three outcome aggregation. Classloader
// isolation has no Go analogue, so "an isolated class loader whose parent
// is the project's runtime class loader" is realized the way
// internal/bootstrap realizes reflective instantiation: each framework
// runner is its own hashicorp/go-plugin subprocess, given the project's
// test classpath as its environment (SPEC_FULL.md §4.I).
package testshim

import (
	"strings"

	"github.com/forgebuild/forge/internal/errors"
)

const (
	moduleMarker = "[module]"
	superSep     = "<<<"
)

// Definition is spec.md §4.I's "test definition" triple.
type Definition struct {
	IsModule  bool
	Name      string
	SuperName string
}

// String renders d in spec.md's serialized form: [<module>]<name><<<super>.
func (d Definition) String() string {
	var b strings.Builder

	if d.IsModule {
		b.WriteString(moduleMarker)
	}

	b.WriteString(d.Name)
	b.WriteString(superSep)
	b.WriteString(d.SuperName)

	return b.String()
}

// ParseDefinition parses the serialized form written by String.
func ParseDefinition(s string) (Definition, error) {
	var d Definition

	rest := s
	if strings.HasPrefix(rest, moduleMarker) {
		d.IsModule = true
		rest = rest[len(moduleMarker):]
	}

	idx := strings.Index(rest, superSep)
	if idx < 0 {
		return Definition{}, errors.NewParseFailure("invalid test definition "+s, nil)
	}

	d.Name = rest[:idx]
	d.SuperName = rest[idx+len(superSep):]

	if d.Name == "" || d.SuperName == "" {
		return Definition{}, errors.NewParseFailure("invalid test definition "+s, nil)
	}

	return d, nil
}
