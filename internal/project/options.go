package project

import "github.com/forgebuild/forge/pkg/log"

// The six option groups of spec.md §4.G are modeled as marker interfaces
// with an unexported method: Go has no sum types, so a closed set of
// variants is approximated by restricting who can implement the
// interface, which also means the "unknown option" branch of the
// original algorithm never triggers here - every value of, say,
// CompileOption is necessarily one of the cases ResolveCompileOptions
// switches on.

// CleanOption configures the clean task.
type CleanOption interface{ cleanOption() }

// ClearAnalysis additionally discards the persisted analysis on clean.
type ClearAnalysis struct{}

func (ClearAnalysis) cleanOption() {}

// CompileOption configures a compile task.
type CompileOption interface{ compileOption() }

type (
	Deprecation struct{}
	Unchecked   struct{}
	Optimize    struct{}
)

func (Deprecation) compileOption() {}
func (Unchecked) compileOption()   {}
func (Optimize) compileOption()    {}

// TargetPlatform is the set of recognized Target option values.
type TargetPlatform string

const (
	TargetJVM14 TargetPlatform = "jvm1.4"
	TargetJVM15 TargetPlatform = "jvm1.5"
	TargetMSIL  TargetPlatform = "msil"
)

// Target selects the compiler's output platform; a single-value kind.
type Target struct{ Platform TargetPlatform }

func (Target) compileOption() {}

// RawCompileOption passes an arbitrary flag straight through to the
// compiler, for options this model doesn't otherwise recognize.
type RawCompileOption struct{ Value string }

func (RawCompileOption) compileOption() {}

// TestOption configures a test task.
type TestOption interface{ testOption() }

// ExcludeTests removes the named test classes from the run.
type ExcludeTests struct{ Names []string }

func (ExcludeTests) testOption() {}

// PackageOption configures a package (jar) task.
type PackageOption interface{ packageOption() }

type (
	ManifestEntries struct{ Entries map[string]string }
	MainClass       struct{ Name string }
	JarName         struct{ Name string }
	OutputDir       struct{ Path string }
	Recursive       struct{}
)

func (ManifestEntries) packageOption() {}
func (MainClass) packageOption()       {}
func (JarName) packageOption()         {}
func (OutputDir) packageOption()       {}
func (Recursive) packageOption()       {}

// ManagedOption configures external dependency management.
type ManagedOption interface{ managedOption() }

type (
	Synchronize struct{}
	Validate    struct{}
	QuietUpdate struct{}
)

func (Synchronize) managedOption() {}
func (Validate) managedOption()    {}
func (QuietUpdate) managedOption() {}

// LibraryManager supplies the manager instance driving dependency
// resolution (internal/libmanager.Manager); typed as any here to avoid a
// project <-> libmanager import cycle, narrowed by callers.
type LibraryManager struct{ Manager any }

func (LibraryManager) managedOption() {}

// ScaladocOption configures the doc task.
type ScaladocOption interface{ scaladocOption() }

// DocFlag is a simple documentation flag with no value.
type DocFlag struct{ Name string }

func (DocFlag) scaladocOption() {}

// CompoundDocFlag is a documentation flag carrying a value.
type CompoundDocFlag struct {
	Name  string
	Value string
}

func (CompoundDocFlag) scaladocOption() {}

// CompileSettings is the resolved view of a CompileOption list.
type CompileSettings struct {
	Deprecation bool
	Unchecked   bool
	Optimize    bool
	Target      TargetPlatform
	Raw         []string
}

// ResolveCompileOptions folds opts into CompileSettings. Target is a
// single-value kind: a second Target option logs a warning via logger (if
// non-nil) and is otherwise ignored, keeping the first.
func ResolveCompileOptions(opts []CompileOption, logger log.Logger) CompileSettings {
	var settings CompileSettings

	haveTarget := false

	for _, opt := range opts {
		switch o := opt.(type) {
		case Deprecation:
			settings.Deprecation = true
		case Unchecked:
			settings.Unchecked = true
		case Optimize:
			settings.Optimize = true
		case Target:
			if haveTarget {
				warnDuplicate(logger, "Target", string(settings.Target), string(o.Platform))
				continue
			}

			settings.Target = o.Platform
			haveTarget = true
		case RawCompileOption:
			settings.Raw = append(settings.Raw, o.Value)
		}
	}

	return settings
}

// PackageSettings is the resolved view of a PackageOption list.
type PackageSettings struct {
	Manifest  map[string]string
	MainClass string
	JarName   string
	OutputDir string
	Recursive bool
}

// ResolvePackageOptions folds opts into PackageSettings, keeping the
// first occurrence of each single-value kind (MainClass, JarName,
// OutputDir) and warning on every later duplicate.
func ResolvePackageOptions(opts []PackageOption, logger log.Logger) PackageSettings {
	var (
		settings                             PackageSettings
		haveMain, haveJarName, haveOutputDir bool
	)

	for _, opt := range opts {
		switch o := opt.(type) {
		case ManifestEntries:
			if settings.Manifest == nil {
				settings.Manifest = map[string]string{}
			}

			for k, v := range o.Entries {
				settings.Manifest[k] = v
			}
		case MainClass:
			if haveMain {
				warnDuplicate(logger, "MainClass", settings.MainClass, o.Name)
				continue
			}

			settings.MainClass = o.Name
			haveMain = true
		case JarName:
			if haveJarName {
				warnDuplicate(logger, "JarName", settings.JarName, o.Name)
				continue
			}

			settings.JarName = o.Name
			haveJarName = true
		case OutputDir:
			if haveOutputDir {
				warnDuplicate(logger, "OutputDir", settings.OutputDir, o.Path)
				continue
			}

			settings.OutputDir = o.Path
			haveOutputDir = true
		case Recursive:
			settings.Recursive = true
		}
	}

	return settings
}

func warnDuplicate(logger log.Logger, kind, kept, ignored string) {
	if logger == nil {
		return
	}

	logger.Warnf("duplicate %s option %q ignored, keeping %q", kind, ignored, kept)
}
