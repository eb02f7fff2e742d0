// Package project implements the project model of SPEC_FULL.md §4.G: a
// named, versioned unit owning a task map, a sub-project map, a logger,
// and a persistent analysis instance, with tasks and sub-projects
// discovered by reflecting over the declared fields of a user-defined
// project object rather than requiring the caller to register them by
// hand.
package project

import (
	"reflect"

	"github.com/forgebuild/forge/internal/analysis"
	"github.com/forgebuild/forge/internal/taskgraph"
	"github.com/forgebuild/forge/pkg/log"
)

// Info is a project's identity: name, version string, and root directory.
type Info struct {
	Name    string
	Version string
	Root    string
}

// Project is a named, versioned build unit. Projects form a DAG via
// Dependencies; the tool's root project is whichever one was requested on
// the command line (SPEC_FULL.md §4.H).
type Project struct {
	Info Info

	Tasks       map[string]*taskgraph.Task
	SubProjects map[string]*Project

	Analysis     *analysis.Store
	Logger       log.Logger
	Dependencies []*Project

	// classpath holds, per configuration name, the entries this project
	// itself contributes (its own output directory and any directly
	// attached library jars) - Classpath unions these with every
	// dependency's own Classpath for the same configuration.
	classpath map[string][]string
}

// New returns an empty project for info, ready to have tasks and
// sub-projects discovered into it via DiscoverInto.
func New(info Info) *Project {
	return &Project{
		Info:        info,
		Tasks:       map[string]*taskgraph.Task{},
		SubProjects: map[string]*Project{},
		Analysis:    analysis.New(),
		classpath:   map[string][]string{},
	}
}

// SetClasspath records this project's own entries for configuration,
// independent of anything its dependencies contribute.
func (p *Project) SetClasspath(configuration string, entries []string) {
	p.classpath[configuration] = entries
}

// Classpath returns the union, in dependency-then-self order, of every
// project in p's dependency chain's own entries for configuration -
// component G's "classpath query takes a configuration and returns the
// union over the project's dependencies" (spec.md §4.G).
func (p *Project) Classpath(configuration string) []string {
	seen := map[string]bool{}

	out := make([]string, 0)

	var collect func(proj *Project)

	collect = func(proj *Project) {
		for _, dep := range proj.Dependencies {
			collect(dep)
		}

		for _, entry := range proj.classpath[configuration] {
			if seen[entry] {
				continue
			}

			seen[entry] = true
			out = append(out, entry)
		}
	}

	collect(p)

	return out
}

// DiscoverInto scans obj (expected to be a pointer to a user-defined
// project struct) for declared fields whose type is *taskgraph.Task or
// *Project, and populates p.Tasks / p.SubProjects from them. A field
// counts only when its own declared type matches exactly - embedded
// fields inherited from a struct this one embeds do not themselves get
// rediscovered, only the embedding struct's own declared fields (spec.md
// §4.E: "a field counts only when it is declared (not inherited only by
// accident)").
func DiscoverInto(p *Project, obj any) {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()

	taskType := reflect.TypeOf((*taskgraph.Task)(nil))
	projectType := reflect.TypeOf((*Project)(nil))

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fv := v.Field(i)

		switch field.Type {
		case taskType:
			if task, ok := fv.Interface().(*taskgraph.Task); ok && task != nil {
				p.Tasks[taskgraph.FieldName(field.Name)] = task
			}
		case projectType:
			if sub, ok := fv.Interface().(*Project); ok && sub != nil {
				p.SubProjects[taskgraph.FieldName(field.Name)] = sub
			}
		}
	}
}

// ActionPresent reports whether action is defined by p or by at least one
// of p's dependencies (spec.md §4.E: "the action is considered present if
// at least one project defines it").
func (p *Project) ActionPresent(action string) bool {
	if _, ok := p.Tasks[action]; ok {
		return true
	}

	for _, dep := range p.Dependencies {
		if dep.ActionPresent(action) {
			return true
		}
	}

	return false
}
