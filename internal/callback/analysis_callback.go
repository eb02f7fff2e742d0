package callback

import (
	"strings"

	"github.com/forgebuild/forge/internal/analysis"
	"github.com/forgebuild/forge/internal/testshim"
)

// AnalysisCallback implements Callback by recording every fact straight
// into an analysis.Store, honoring the two protocol contracts spec.md
// §4.C calls out: EndSource erases the self-edge an intermediate
// sourceDep(s, s) call may have inserted, and any dependency whose target
// falls under OutputDir is ignored (it would just duplicate a source
// dependency already tracked directly).
type AnalysisCallback struct {
	Store     *analysis.Store
	OutputDir string

	// TestSuperclasses is the compile configuration's "list of test
	// super-class names to look for" (spec.md §3); FoundSubclass records
	// a discovered subclass as a test when its superName is in this set.
	TestSuperclasses []string

	// ProjectSuperclass is the known project super-class name a builder
	// project's own analysis is checked against (spec.md §4.H step 2).
	// Empty for an ordinary project's compile pass.
	ProjectSuperclass string
}

func (c *AnalysisCallback) BeginSource(source string) {
	c.Store.MarkSource(source)
}

func (c *AnalysisCallback) SourceDep(source, dependsOn string) {
	if c.underOutputDir(dependsOn) {
		return
	}

	c.Store.AddSourceDep(source, dependsOn)
}

func (c *AnalysisCallback) JarDep(source, jarFile string) {
	if c.underOutputDir(jarFile) {
		return
	}

	c.Store.AddExternalDep(jarFile, source)
}

func (c *AnalysisCallback) ClassDep(source, classFile string) {
	if c.underOutputDir(classFile) {
		return
	}

	c.Store.AddExternalDep(classFile, source)
}

// FoundSubclass classifies a discovered subclass against the two
// caller-supplied super-class sets (spec.md §4.C / §4.H step 2): a
// superName matching one of TestSuperclasses records the test definition's
// serialized form (spec.md §4.I: "a serialized textual form
// [<module>]<name><<<super>") as a test class, so the test-framework shim
// can later recover (is-module, name, super-class) from what the store
// persists without a third map; a superName matching ProjectSuperclass
// records name as a project-definition class (the builder-project
// variant).
func (c *AnalysisCallback) FoundSubclass(source, name, superName string, isModule bool) {
	for _, ts := range c.TestSuperclasses {
		if ts == superName {
			def := testshim.Definition{IsModule: isModule, Name: name, SuperName: superName}
			c.Store.AddTest(source, def.String())

			return
		}
	}

	if c.ProjectSuperclass != "" && c.ProjectSuperclass == superName {
		c.Store.AddProjectDefinition(source, name)
	}
}

func (c *AnalysisCallback) GeneratedClass(source, classFile string) {
	c.Store.AddGenerated(source, classFile)
}

func (c *AnalysisCallback) EndSource(source string) {
	c.Store.RemoveSelfDep(source)
}

func (c *AnalysisCallback) underOutputDir(path string) bool {
	if c.OutputDir == "" {
		return false
	}

	return strings.HasPrefix(path, c.OutputDir)
}
