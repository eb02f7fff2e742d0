package project

import (
	"github.com/forgebuild/forge/internal/analysis"
	"github.com/forgebuild/forge/pkg/log"
)

// Configuration names a classpath scope a project's dependencies are
// queried for (spec.md §4.G: "named string constants").
const (
	Compile = "compile"
	Test    = "test"
	Runtime = "runtime"
)

// CompileConfig is the compile configuration record spec.md §3 defines:
// "source paths, output directory, classpath, analysis instance, project
// root, list of test super-class names to look for, logger, and compiler
// options." It is everything a compile task needs beyond the Project
// object itself, so the task body stays a thin call into the staleness
// engine and the compiler shim rather than reaching back into Project.
type CompileConfig struct {
	SourcePaths []string
	OutputDir   string
	Classpath   []string
	Analysis    *analysis.Store
	Root        string

	// TestSuperclasses is the caller-supplied set FoundSubclass
	// classification matches a discovered subclass's super-class name
	// against (spec.md §4.C: "extends a known super-class from a
	// caller-supplied set").
	TestSuperclasses []string

	Logger  log.Logger
	Options []CompileOption
}
