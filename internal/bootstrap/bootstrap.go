package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgebuild/forge/internal/analysis"
	"github.com/forgebuild/forge/internal/errors"
	"github.com/forgebuild/forge/internal/project"
	"github.com/forgebuild/forge/internal/taskgraph"
)

var errInvalidBuilderPlugin = errors.New("builder plugin did not implement the expected interface")

// builderBinaryName is the fixed name the builder sub-project is expected
// to have been compiled to, under <root>/project/build/target/classes
// (spec.md §4.H step 2 / SPEC_FULL.md §4.H).
const builderBinaryName = "builder"

// Load implements spec.md §4.H's two-stage project loader: read
// project/info, and if <root>/project/build exists, launch the binary
// already built at <root>/project/build/target/classes/builder as a
// builder plugin subprocess (Load does not compile the builder
// sub-project itself), call Describe(), and wrap the resulting
// descriptor into a *project.Project whose tasks re-invoke the plugin's
// RunTask over the same connection. If no builder sub-project is present,
// the caller's own Go-native project construction is used instead (the
// in-process path SPEC_FULL.md §4.C describes for linked-in shims).
func Load(root string) (*project.Project, func(), error) {
	info, err := ReadInfo(root, os.Stdin, os.Stdout)
	if err != nil {
		return nil, nil, err
	}

	buildDir := filepath.Join(root, MetadataDir, "build")

	if _, err := os.Stat(buildDir); os.IsNotExist(err) {
		p, err := buildNativeProject(info, root)
		if err != nil {
			return nil, nil, err
		}

		return p, func() {}, nil
	}

	binaryPath := filepath.Join(buildDir, "target", "classes", builderBinaryName)

	client, builder, err := Launch(binaryPath)
	if err != nil {
		return nil, nil, errors.NewConfigFailure(fmt.Sprintf("launching builder project at %s", binaryPath), err)
	}

	cleanup := func() { client.Kill() }

	descriptor, err := builder.Describe()
	if err != nil {
		cleanup()
		return nil, nil, errors.NewConfigFailure("describing builder project", err)
	}

	builderClass := descriptor.BuilderClass
	if resolved, ok := resolveBuilderClassFromAnalysis(filepath.Join(buildDir, analysisDirName)); ok {
		builderClass = resolved
	}

	if builderClass == DefaultBuilderClass {
		cleanup()
		return nil, nil, errors.NewConfigFailure(
			fmt.Sprintf("project class %q must not equal the hard-wired builder class %q (recursive bootstrap)", builderClass, DefaultBuilderClass), nil)
	}

	p := toProject(descriptor, root, builder)

	return p, cleanup, nil
}

// resolveBuilderClassFromAnalysis implements spec.md §4.H step 2: "if the
// builder project's analysis shows exactly one class that extends the
// known project super-class, use its name as the user's project class;
// otherwise use the one named in the info file." analysisDir is the
// builder sub-project's own persisted analysis (populated by its compile
// task's FoundSubclass calls against DefaultBuilderClass); a missing or
// ambiguous (zero or multiple project-definition classes) analysis leaves
// the caller's existing choice in place.
func resolveBuilderClassFromAnalysis(analysisDir string) (string, bool) {
	store := analysis.New()
	if err := store.Load(analysisDir); err != nil {
		return "", false
	}

	projects := store.AllProjects()
	if len(projects) != 1 {
		return "", false
	}

	return projects[0], true
}

func toProject(descriptor *ProjectDescriptor, root string, builder Builder) *project.Project {
	p := project.New(project.Info{Name: descriptor.Name, Version: descriptor.Version, Root: root})

	tasksByName := map[string]*taskgraph.Task{}

	for _, td := range descriptor.Tasks {
		name := td.Name
		task := taskgraph.New(name, func() error { return builder.RunTask(name) }).DescribedAs(td.Description)

		if td.Interactive {
			task = task.MarkInteractive()
		}

		tasksByName[name] = task
	}

	for _, td := range descriptor.Tasks {
		task := tasksByName[td.Name]

		var preds []*taskgraph.Task

		for _, predName := range td.Predecessors {
			if pred, ok := tasksByName[predName]; ok {
				preds = append(preds, pred)
			}
		}

		if len(preds) > 0 {
			tasksByName[td.Name] = task.DependsOn(preds...)
		}
	}

	for name, task := range tasksByName {
		p.Tasks[name] = task
	}

	for _, subDescriptor := range descriptor.SubProjects {
		sub := subDescriptor
		p.SubProjects[sub.Name] = toProject(&sub, root, builder)
	}

	return p
}

