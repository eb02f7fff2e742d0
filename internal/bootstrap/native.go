package bootstrap

import (
	"os"
	"path/filepath"

	"github.com/forgebuild/forge/internal/callback"
	"github.com/forgebuild/forge/internal/compiler"
	"github.com/forgebuild/forge/internal/errors"
	"github.com/forgebuild/forge/internal/pathset"
	"github.com/forgebuild/forge/internal/project"
	"github.com/forgebuild/forge/internal/staleness"
	"github.com/forgebuild/forge/internal/taskgraph"
	"github.com/forgebuild/forge/internal/testshim"
)

// Directory layout constants from spec.md §6: everything a native (no
// builder sub-project) load needs to find sources and write output.
const (
	sourceDirName   = "src/main/scala"
	outputDirName   = "target/classes"
	analysisDirName = "target/analysis"
)

// defaultTestSuperclasses is the test super-class name set a native
// project's FoundSubclass classification checks against when nothing more
// specific is configured (SPEC_FULL.md §4.G's options overlay can narrow
// this; there is no overlay wiring here since a native project has no
// builder project to attach one to).
var defaultTestSuperclasses = []string{"TestCase", "TestSuite"}

// defaultFrameworks is the set of test frameworks a native project's "test"
// task partitions discovered definitions against (spec.md §4.I). None of
// the bundled examples ship a real framework-runner binary, so this is
// empty by default - a project wanting real framework support supplies its
// own Framework values with a RunnerPath pointing at a built runner plugin.
// Left as a var, not a const, so a future config-file overlay can append to
// it without touching this file's callers.
var defaultFrameworks []testshim.Framework

// buildNativeProject realizes the core data flow spec.md §2 describes for
// the common case where no builder sub-project exists to reflectively
// instantiate: G (the project) owns E (its compile/clean tasks) and a B
// instance (p.Analysis); running compile uses D (internal/staleness) to
// compute dirty inputs, drives the in-process compiler shim through a C
// registry entry, which forwards facts into B, then D.Finalize persists
// or discards the result.
func buildNativeProject(info *Info, root string) (*project.Project, error) {
	p := project.New(project.Info{Name: info.Name, Version: info.Version, Root: root})

	analysisDir := filepath.Join(root, analysisDirName)
	if err := p.Analysis.Load(analysisDir); err != nil {
		return nil, err
	}

	outputDir := filepath.Join(root, outputDirName)

	cfg := project.CompileConfig{
		SourcePaths:      discoverSources(root),
		OutputDir:        outputDir,
		Classpath:        p.Classpath(project.Compile),
		Analysis:         p.Analysis,
		Root:             root,
		TestSuperclasses: defaultTestSuperclasses,
		Logger:           p.Logger,
	}

	engine := &staleness.Engine{
		Store:       p.Analysis,
		OutputDir:   outputDir,
		AnalysisDir: analysisDir,
		Logger:      p.Logger,
	}

	registry := callback.NewRegistry()

	compileTask := taskgraph.New("compile", func() error {
		return runCompile(cfg, engine, registry)
	}).DescribedAs("incrementally recompile changed sources")

	cleanTask := taskgraph.New("clean", func() error {
		return runClean(cfg)
	}).DescribedAs("remove compiled output")

	testTask := taskgraph.New("test", func() error {
		return runTest(cfg, defaultFrameworks)
	}).DescribedAs("run discovered tests").DependsOn(compileTask)

	p.Tasks["compile"] = compileTask
	p.Tasks["clean"] = cleanTask
	p.Tasks["test"] = testTask

	return p, nil
}

// discoverSources walks src/main/scala for *.scala files using the path-
// set algebra of component A, returning each as the absolute path the
// staleness engine and analysis store key their facts by (matching the
// convention internal/staleness's own tests use).
func discoverSources(root string) []string {
	srcDir, err := pathset.FromString(root, sourceDirName)
	if err != nil {
		return nil
	}

	paths, err := pathset.Descendants(pathset.Single(srcDir), pathset.FastGlob("*.scala"), false).Evaluate()
	if err != nil {
		return nil
	}

	sources := make([]string, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, p.Abs())
	}

	return sources
}

// runCompile is component D driving component C driving component B: it
// computes the dirty set, registers a fresh analysis-backed callback for
// this pass, runs the in-process compiler shim over exactly the dirty
// sources, and finalizes the analysis according to whether the shim
// succeeded (spec.md §4.D step 7).
func runCompile(cfg project.CompileConfig, engine *staleness.Engine, registry *callback.Registry) error {
	dirty, err := engine.ComputeDirty(cfg.SourcePaths, cfg.Classpath)
	if err != nil {
		return err
	}

	cb := &callback.AnalysisCallback{
		Store:            cfg.Analysis,
		OutputDir:        cfg.OutputDir,
		TestSuperclasses: cfg.TestSuperclasses,
	}

	id := registry.Register(cb)
	defer registry.Unregister(id)

	compileErr := compiler.IdentityShim(dirty, cfg.Classpath, cfg.OutputDir, cb)

	return engine.Finalize(compileErr == nil)
}

// runClean removes the compiled-output directory.
func runClean(cfg project.CompileConfig) error {
	return os.RemoveAll(cfg.OutputDir)
}

// runTest is component I driven off component B: it recovers every test
// definition FoundSubclass recorded (spec.md §4.I's serialized triple, one
// per entry in cfg.Analysis.AllTests()), partitions them against frameworks,
// and runs whichever framework owns at least one, failing the task if the
// worst outcome across every result is not Passed.
func runTest(cfg project.CompileConfig, frameworks []testshim.Framework) error {
	defs := make([]testshim.Definition, 0, len(cfg.Analysis.AllTests()))

	for _, raw := range cfg.Analysis.AllTests() {
		def, err := testshim.ParseDefinition(raw)
		if err != nil {
			return errors.NewParseFailure("parsing recorded test definition "+raw, err)
		}

		defs = append(defs, def)
	}

	report, err := testshim.Run(frameworks, defs, cfg.Classpath)
	if err != nil {
		return err
	}

	if report.Overall != testshim.Passed {
		return errors.NewTestFailure("tests did not pass: "+report.Overall.String(), nil)
	}

	return nil
}
