// Package version implements the version grammar of spec.md §6:
// major(.minor(.micro))?(-b<build>)?(-<status>)?, or a fully quoted opaque
// string. hashicorp/go-version models the numeric major.minor.micro prefix
// well (and gives ordering/comparison for free) but has no notion of the
// trailing -b<build>/-<status> suffixes, so this package wraps it rather
// than replacing it: numeric comparison is delegated, the surrounding
// grammar is hand-parsed (see DESIGN.md).
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forgebuild/forge/internal/errors"
	goversion "github.com/hashicorp/go-version"
)

// grammarRegexp matches major(.minor(.micro))?(-b<build>)?(-<status>)?.
var grammarRegexp = regexp.MustCompile(`^(\d+)(?:\.(\d+)(?:\.(\d+))?)?(?:-b(\d+))?(?:-([A-Za-z][A-Za-z0-9_]*))?$`)

// Version is a parsed project version: either numeric-grammar (Opaque ==
// "") or a fully quoted literal string the tool treats as opaque and never
// orders against another version.
type Version struct {
	Raw     string
	Opaque  string
	numeric *goversion.Version

	Build  int
	Status string

	hasBuild bool
}

// Parse parses raw per spec.md §6's version grammar. A value quoted with a
// leading and trailing `"` is accepted verbatim as an opaque version.
func Parse(raw string) (*Version, error) {
	trimmed := strings.TrimSpace(raw)

	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		return &Version{Raw: raw, Opaque: trimmed[1 : len(trimmed)-1]}, nil
	}

	matches := grammarRegexp.FindStringSubmatch(trimmed)
	if matches == nil {
		return nil, errors.NewParseFailure(fmt.Sprintf("invalid version %q: expected major(.minor(.micro))?(-bBUILD)?(-status)? or a quoted string", raw), nil)
	}

	numericPrefix := matches[1]
	if matches[2] != "" {
		numericPrefix += "." + matches[2]
	}

	if matches[3] != "" {
		numericPrefix += "." + matches[3]
	}

	numeric, err := goversion.NewVersion(numericPrefix)
	if err != nil {
		return nil, errors.NewParseFailure(fmt.Sprintf("invalid version %q: %v", raw, err), err)
	}

	v := &Version{Raw: raw, numeric: numeric, Status: matches[5]}

	if matches[4] != "" {
		build, err := strconv.Atoi(matches[4])
		if err != nil {
			return nil, errors.NewParseFailure(fmt.Sprintf("invalid version %q: bad build number", raw), err)
		}

		v.Build = build
		v.hasBuild = true
	}

	return v, nil
}

// IsOpaque reports whether v was parsed from a quoted literal rather than
// the numeric grammar.
func (v *Version) IsOpaque() bool { return v.numeric == nil }

// String renders v back in spec.md's grammar.
func (v *Version) String() string {
	if v.IsOpaque() {
		return fmt.Sprintf("%q", v.Opaque)
	}

	s := v.numeric.Original()

	if v.hasBuild {
		s += fmt.Sprintf("-b%d", v.Build)
	}

	if v.Status != "" {
		s += "-" + v.Status
	}

	return s
}

// Compare orders v against other by numeric major.minor.micro prefix only;
// build and status are not significant to ordering. Opaque versions are
// never comparable and Compare panics if either side is opaque - callers
// must check IsOpaque first.
func (v *Version) Compare(other *Version) int {
	if v.IsOpaque() || other.IsOpaque() {
		panic("version: Compare called on an opaque version")
	}

	return v.numeric.Compare(other.numeric)
}

// MeetsConstraint reports whether v satisfies a hashicorp/go-version
// constraint expression (e.g. ">= 1.2, < 2.0"), used to check builder
// project compatibility ranges (spec.md §4.H).
func (v *Version) MeetsConstraint(constraint string) (bool, error) {
	if v.IsOpaque() {
		return false, errors.NewParseFailure(fmt.Sprintf("version %q is opaque and cannot be checked against a constraint", v.Raw), nil)
	}

	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return false, errors.NewParseFailure(fmt.Sprintf("invalid constraint %q: %v", constraint, err), err)
	}

	return c.Check(v.numeric), nil
}
