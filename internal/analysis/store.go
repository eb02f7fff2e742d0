// Package analysis implements the persistent analysis store of
// SPEC_FULL.md §4.B: the four (plus one, for the builder-project variant)
// partial mappings keyed by source path that record everything the
// incremental staleness engine needs to know about a project's sources.
//
// Store is deliberately not safe for concurrent mutation from multiple
// goroutines — it is owned by exactly one project, and the scheduler
// guarantees that a single project's task chain runs serially
// (SPEC_FULL.md §5). Concurrent *processes* touching the same on-disk
// analysis are instead serialized with a file lock in persist.go.
package analysis

import (
	"os"
	"sort"

	"github.com/forgebuild/forge/pkg/log"
)

type stringSet map[string]struct{}

func newSet(items ...string) stringSet {
	s := make(stringSet, len(items))
	for _, i := range items {
		s[i] = struct{}{}
	}

	return s
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

// Store is the project analysis: five partial maps keyed by source path.
type Store struct {
	// SourceDeps maps a source to the set of sources it (transitively, via
	// recompile need) depends on.
	SourceDeps map[string]stringSet
	// ExternalDeps maps a source to the set of absolute external file
	// paths (jars/classes outside the project) it depends on.
	ExternalDeps map[string]stringSet
	// GeneratedClasses maps a source to the set of output-relative class
	// files produced from it.
	GeneratedClasses map[string]stringSet
	// Tests maps a source to the set of fully qualified test class names
	// it declares.
	Tests map[string]stringSet
	// ProjectDefinitions maps a source to the set of fully qualified
	// project-definition class names it declares (builder project only).
	ProjectDefinitions map[string]stringSet
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		SourceDeps:         map[string]stringSet{},
		ExternalDeps:       map[string]stringSet{},
		GeneratedClasses:   map[string]stringSet{},
		Tests:              map[string]stringSet{},
		ProjectDefinitions: map[string]stringSet{},
	}
}

// MarkSource ensures s exists as a key in SourceDeps and GeneratedClasses
// with empty sets if not already present. Never fails: an "alive" source
// with no recorded facts yet is still a valid, known entry (invariant:
// distinguishes a known source with no deps from an unknown one).
func (st *Store) MarkSource(s string) {
	if _, ok := st.SourceDeps[s]; !ok {
		st.SourceDeps[s] = stringSet{}
	}

	if _, ok := st.GeneratedClasses[s]; !ok {
		st.GeneratedClasses[s] = stringSet{}
	}
}

func addTo(m map[string]stringSet, key, value string) {
	if m[key] == nil {
		m[key] = stringSet{}
	}

	m[key][value] = struct{}{}
}

// AddSourceDep records that from depends on (the recompile of) on.
func (st *Store) AddSourceDep(from, on string) {
	st.MarkSource(from)
	addTo(st.SourceDeps, from, on)
}

// AddExternalDep records that from depends on the absolute external file.
func (st *Store) AddExternalDep(file, from string) {
	st.MarkSource(from)
	addTo(st.ExternalDeps, from, file)
}

// AddGenerated records that src produced the output-relative class file cls.
func (st *Store) AddGenerated(src, cls string) {
	st.MarkSource(src)
	addTo(st.GeneratedClasses, src, cls)
}

// AddTest records that src declares the fully qualified test class name.
func (st *Store) AddTest(src, name string) {
	st.MarkSource(src)
	addTo(st.Tests, src, name)
}

// AddProjectDefinition records that src declares a project-definition class.
func (st *Store) AddProjectDefinition(src, name string) {
	st.MarkSource(src)
	addTo(st.ProjectDefinitions, src, name)
}

// RemoveSource deletes every class file listed in GeneratedClasses[s] from
// disk (best effort; failures are logged, not returned) and then removes s
// as a key from every map.
func (st *Store) RemoveSource(s string, outputDir string, l log.Logger) {
	for cls := range st.GeneratedClasses[s] {
		path := cls
		if outputDir != "" {
			path = outputDir + string(os.PathSeparator) + cls
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			if l != nil {
				l.Warnf("could not remove generated class %s for source %s: %v", path, s, err)
			}
		}
	}

	delete(st.SourceDeps, s)
	delete(st.ExternalDeps, s)
	delete(st.GeneratedClasses, s)
	delete(st.Tests, s)
	delete(st.ProjectDefinitions, s)
}

// RemoveSelfDep erases s from its own SourceDeps set, so that an
// intermediate self-edge inserted during a compile pass never survives to
// the end of that pass.
func (st *Store) RemoveSelfDep(s string) {
	delete(st.SourceDeps[s], s)
}

// RemoveDependent erases s from every other source's SourceDeps value set,
// so that no one still lists a deleted or recompiling source as a
// dependency.
func (st *Store) RemoveDependent(s string) {
	for t := range st.SourceDeps {
		delete(st.SourceDeps[t], s)
	}
}

// TakeDeps removes and returns the SourceDeps set for s.
func (st *Store) TakeDeps(s string) stringSet {
	deps := st.SourceDeps[s]
	delete(st.SourceDeps, s)

	return deps
}

// ClassesOf returns the generated classes recorded for a single source.
func (st *Store) ClassesOf(s string) []string {
	return st.GeneratedClasses[s].sorted()
}

// ClassesOfSources returns the union of generated classes across sources.
func (st *Store) ClassesOfSources(sources []string) []string {
	union := stringSet{}
	for _, s := range sources {
		for c := range st.GeneratedClasses[s] {
			union[c] = struct{}{}
		}
	}

	return union.sorted()
}

// AllSources returns every source known to the store (every source "alive"
// as of the last compile pass).
func (st *Store) AllSources() []string {
	out := make([]string, 0, len(st.SourceDeps))
	for s := range st.SourceDeps {
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

// AllTests returns every test class name recorded across all sources.
func (st *Store) AllTests() []string {
	union := stringSet{}
	for _, set := range st.Tests {
		for name := range set {
			union[name] = struct{}{}
		}
	}

	return union.sorted()
}

// AllClasses returns every generated class recorded across all sources.
func (st *Store) AllClasses() []string {
	union := stringSet{}
	for _, set := range st.GeneratedClasses {
		for c := range set {
			union[c] = struct{}{}
		}
	}

	return union.sorted()
}

// AllProjects returns every project-definition class name recorded (builder
// project analysis only).
func (st *Store) AllProjects() []string {
	union := stringSet{}
	for _, set := range st.ProjectDefinitions {
		for name := range set {
			union[name] = struct{}{}
		}
	}

	return union.sorted()
}

// ExternalDepsByFile inverts ExternalDeps into file -> dependent sources,
// the view the staleness engine's external-artifact phase needs
// (SPEC_FULL.md §4.D step 3).
func (st *Store) ExternalDepsByFile() map[string][]string {
	byFile := map[string]stringSet{}

	for src, files := range st.ExternalDeps {
		for f := range files {
			if byFile[f] == nil {
				byFile[f] = stringSet{}
			}

			byFile[f][src] = struct{}{}
		}
	}

	out := make(map[string][]string, len(byFile))
	for f, set := range byFile {
		out[f] = set.sorted()
	}

	return out
}

// ForgetExternalDep removes file from every source's ExternalDeps set, used
// when the staleness engine determines an external artifact is no longer on
// the classpath at all.
func (st *Store) ForgetExternalDep(file string) {
	for src := range st.ExternalDeps {
		delete(st.ExternalDeps[src], file)
	}
}
