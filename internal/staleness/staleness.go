// Package staleness implements the incremental staleness engine of
// SPEC_FULL.md §4.D: given the current set of sources on disk, the
// classpath, and the prior analysis, it computes exactly which sources
// must be recompiled, deleting stale outputs along the way, and restores
// the prior analysis from disk if the subsequent compile fails.
package staleness

import (
	"os"
	"time"

	"github.com/forgebuild/forge/internal/analysis"
	"github.com/forgebuild/forge/pkg/log"
)

// Engine runs the seven-step algorithm against a single project's store.
type Engine struct {
	Store     *analysis.Store
	OutputDir string
	// AnalysisDir is where Finalize saves/loads the store (normally the
	// project's target/analysis directory).
	AnalysisDir string
	Logger      log.Logger
}

// stat abstracts os.Stat for tests that want to control mtimes without
// touching the real filesystem clock.
type stat func(path string) (os.FileInfo, error)

// ComputeDirty runs steps 1-6: it reconciles the store against the
// current snapshot of sources and the classpath, deletes stale outputs for
// every removed or modified source, and returns the set that must be
// passed to the compiler. The store is mutated in place; call Finalize
// once the compiler has run to persist or discard that mutation.
func (e *Engine) ComputeDirty(sources []string, classpath []string) ([]string, error) {
	return e.computeDirty(sources, classpath, os.Stat)
}

func (e *Engine) computeDirty(sources []string, classpath []string, statFn stat) ([]string, error) {
	current := newSet(sources...)

	// 1. Deletion phase.
	removed := make([]string, 0)

	for _, s := range e.Store.AllSources() {
		if !current[s] {
			e.Store.RemoveDependent(s)
			removed = append(removed, s)
		}
	}

	// 2. Direct-modification phase.
	modified := map[string]bool{}

	for _, s := range sources {
		if e.isDirectlyModified(s, statFn) {
			modified[s] = true
		}
	}

	// 3. External-artifact phase.
	onClasspath := newSet(classpath...)

	for file, dependents := range e.Store.ExternalDepsByFile() {
		if !onClasspath[file] {
			for _, d := range dependents {
				modified[d] = true
			}

			e.Store.ForgetExternalDep(file)

			continue
		}

		extInfo, err := statFn(file)
		if err != nil {
			continue
		}

		for _, d := range dependents {
			if modified[d] {
				continue
			}

			if olderThanAll(e.Store.ClassesOf(d), e.OutputDir, extInfo.ModTime(), statFn) {
				modified[d] = true
			}
		}
	}

	// 4. Transitive propagation: breadth-first closure over the reverse
	// dependency graph, starting from modified ∪ removed.
	changed := map[string]bool{}
	for s := range modified {
		changed[s] = true
	}

	for _, s := range removed {
		changed[s] = true
	}

	queue := make([]string, 0, len(changed))
	for s := range changed {
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		for _, t := range e.Store.AllSources() {
			if changed[t] {
				continue
			}

			if _, dependsOnNext := e.Store.SourceDeps[t][next]; !dependsOnNext {
				continue
			}

			e.Store.TakeDeps(t)
			changed[t] = true
			modified[t] = true
			queue = append(queue, t)
		}
	}

	// 5. Cleanup: delete stale outputs for everything in removed ∪ modified.
	for _, s := range removed {
		e.Store.RemoveSource(s, e.OutputDir, e.Logger)
	}

	dirty := make([]string, 0, len(modified))
	for s := range modified {
		dirty = append(dirty, s)
	}

	for _, s := range dirty {
		e.Store.RemoveSource(s, e.OutputDir, e.Logger)
	}

	return dirty, nil
}

// isDirectlyModified implements step 2: a source is modified iff it has
// no recorded generated classes, or any recorded class file is missing or
// strictly older than the source.
func (e *Engine) isDirectlyModified(src string, statFn stat) bool {
	classes := e.Store.ClassesOf(src)
	if len(classes) == 0 {
		return true
	}

	srcInfo, err := statFn(src)
	if err != nil {
		return true
	}

	return olderThanAll(classes, e.OutputDir, srcInfo.ModTime(), statFn)
}

// olderThanAll reports whether any of the given output-relative class
// paths is missing or strictly older than cutoff.
func olderThanAll(classes []string, outputDir string, cutoff time.Time, statFn stat) bool {
	for _, cls := range classes {
		path := cls
		if outputDir != "" {
			path = outputDir + string(os.PathSeparator) + cls
		}

		info, err := statFn(path)
		if err != nil {
			return true
		}

		if info.ModTime().Before(cutoff) {
			return true
		}
	}

	return false
}

// Finalize implements step 7: on a successful compile, persist the
// (now-refilled) analysis; on failure, reload the last-saved analysis from
// disk so no partial mutation from ComputeDirty survives.
func (e *Engine) Finalize(success bool) error {
	if success {
		return e.Store.Save(e.AnalysisDir)
	}

	return e.Store.Load(e.AnalysisDir)
}

func newSet(items ...string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, i := range items {
		s[i] = true
	}

	return s
}
