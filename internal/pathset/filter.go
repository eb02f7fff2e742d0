package pathset

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Filter is a predicate over a bare file name (not a full path).
type Filter interface {
	Accept(name string) bool

	// basePart returns the non-exclusion part of the filter used when
	// deciding whether a Descendants expression should recurse into a
	// directory: for a Difference(a, ¬b) filter it accepts every name that
	// b (and any exclusion nested in a) rejects, for every other filter it
	// accepts every name. This is how a descendant expression avoids
	// descending into directories like ".svn" while still descending into
	// ordinary directories the leaf-level filter itself would reject
	// (SPEC_FULL.md / spec.md §4.A).
	basePart() Filter
}

type exactFilter struct{ names map[string]struct{} }

// Exact matches file names equal to one of names.
func Exact(names ...string) Filter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	return exactFilter{names: set}
}

func (f exactFilter) Accept(name string) bool {
	_, ok := f.names[name]
	return ok
}
func (f exactFilter) basePart() Filter { return All() }

// globRegexFilter is the spec-mandated glob compiler: split the pattern on
// '*', quote each literal segment with regexp.QuoteMeta, join the segments
// with ".*", and anchor the whole expression so a match must consume the
// entire name (spec.md §4.A). This exact construction is not something a
// general-purpose glob engine reproduces (most don't expose the
// quote-and-join mechanics), so it stays a small regexp build rather than a
// library call — see DESIGN.md.
type globRegexFilter struct {
	patterns []*regexp.Regexp
	source   []string
}

func compileGlobRegex(pattern string) *regexp.Regexp {
	segments := strings.Split(pattern, "*")
	for i, seg := range segments {
		segments[i] = regexp.QuoteMeta(seg)
	}

	return regexp.MustCompile("^" + strings.Join(segments, ".*") + "$")
}

// Glob builds a name filter from shell-style patterns using the spec's exact
// split/quote/join/anchor algorithm.
func Glob(patterns ...string) Filter {
	f := globRegexFilter{source: patterns}
	for _, pat := range patterns {
		f.patterns = append(f.patterns, compileGlobRegex(pat))
	}

	return f
}

func (f globRegexFilter) Accept(name string) bool {
	for _, re := range f.patterns {
		if re.MatchString(name) {
			return true
		}
	}

	return false
}
func (f globRegexFilter) basePart() Filter { return All() }

// fastGlobFilter delegates to gobwas/glob for the common case of a plain
// shell glob with no regex/union/difference composition — the classifier
// behind project.Project's derived source/resource path sets
// (SPEC_FULL.md §4.A).
type fastGlobFilter struct {
	globs  []glob.Glob
	source []string
}

// FastGlob compiles patterns with gobwas/glob. Falls back silently to
// rejecting everything for an unparsable pattern; callers that need the
// exact spec algorithm should use Glob instead.
func FastGlob(patterns ...string) Filter {
	f := fastGlobFilter{source: patterns}

	for _, pat := range patterns {
		if g, err := glob.Compile(pat); err == nil {
			f.globs = append(f.globs, g)
		}
	}

	return f
}

func (f fastGlobFilter) Accept(name string) bool {
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}

	return false
}
func (f fastGlobFilter) basePart() Filter { return All() }

type regexFilter struct{ patterns []*regexp.Regexp }

// Regex matches a name against one or more fully-anchored regular expressions.
func Regex(patterns ...*regexp.Regexp) Filter {
	return regexFilter{patterns: patterns}
}

func (f regexFilter) Accept(name string) bool {
	for _, re := range f.patterns {
		if re.MatchString(name) {
			return true
		}
	}

	return false
}
func (f regexFilter) basePart() Filter { return All() }

type unionFilter struct{ filters []Filter }

// Union is a short-circuit boolean OR over filters.
func Union(filters ...Filter) Filter {
	return unionFilter{filters: filters}
}

func (f unionFilter) Accept(name string) bool {
	for _, sub := range f.filters {
		if sub.Accept(name) {
			return true
		}
	}

	return false
}
func (f unionFilter) basePart() Filter { return All() }

type differenceFilter struct {
	include Filter
	exclude Filter
}

// Difference builds "include ∧ ¬exclude".
func Difference(include, exclude Filter) Filter {
	return differenceFilter{include: include, exclude: exclude}
}

func (f differenceFilter) Accept(name string) bool {
	return f.include.Accept(name) && !f.exclude.Accept(name)
}

// basePart for a difference filter rejects the excluded names (and those
// of any exclusion nested in include) and accepts everything else, so a
// Descendants expression still recurses into e.g. "everything except
// .svn" directories.
func (f differenceFilter) basePart() Filter { return Difference(f.include.basePart(), f.exclude) }

type negateFilter struct{ inner Filter }

// Negate inverts a filter.
func Negate(f Filter) Filter { return negateFilter{inner: f} }

func (f negateFilter) Accept(name string) bool { return !f.inner.Accept(name) }
func (f negateFilter) basePart() Filter        { return All() }

// All matches every name.
func All() Filter { return allFilter{} }

type allFilter struct{}

func (allFilter) Accept(string) bool   { return true }
func (f allFilter) basePart() Filter   { return f }
