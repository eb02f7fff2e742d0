package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/forgebuild/forge/internal/errors"
	"github.com/forgebuild/forge/internal/project"
	"github.com/forgebuild/forge/internal/scheduler"
	"github.com/forgebuild/forge/internal/telemetry"
	"github.com/forgebuild/forge/pkg/log"
)

// verbs is the CLI verb surface of spec.md §6, mapped 1:1 to the
// hyphen-cased task name forge looks up on the resolved project.
var verbs = []string{
	"clean", "compile", "test", "run", "console", "doc", "doc-test",
	"package", "package-test", "package-src", "package-docs", "package-all",
	"release", "update", "graph",
}

// session holds everything a single forge invocation (batch or one REPL
// line) needs to dispatch a verb: the loaded root project, the currently
// selected project (spec.md §6 meta-verb "project <name>"), and the
// parallelism bound for cross-project scheduling.
type session struct {
	root        *project.Project
	current     *project.Project
	logger      log.Logger
	parallelism int
	vars        map[string]string // spec.md §6 "set <name> <value>" / "get <name>"
}

func newSession(root *project.Project, logger log.Logger, parallelism int) *session {
	root.Logger = logger

	return &session{root: root, current: root, logger: logger, parallelism: parallelism, vars: map[string]string{}}
}

// resolveProject finds name among s.root and its transitive sub-projects
// (spec.md §6 meta-verb "project <name>"), breadth-first so the closest
// match by name wins when sub-projects nest.
func (s *session) resolveProject(name string) (*project.Project, bool) {
	if name == "" || name == s.root.Info.Name {
		return s.root, true
	}

	queue := []*project.Project{s.root}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if p.Info.Name == name {
			return p, true
		}

		for _, sub := range p.SubProjects {
			queue = append(queue, sub)
		}
	}

	return nil, false
}

// invoke runs verb against the requested project, either sequentially
// (parallelism <= 1) or across the requested project's dependency closure
// via the parallel scheduler (SPEC_FULL.md §4.F), and returns the run's
// uuid-tagged telemetry id alongside whatever error (if any) occurred.
func (s *session) invoke(ctx context.Context, requested *project.Project, verb string) (string, error) {
	runID := uuid.New().String()

	logger := requested.Logger
	if logger == nil {
		logger = s.logger
	}

	requested.Logger = logger.WithField("run-id", runID)

	if !requested.ActionPresent(verb) {
		return runID, errors.NewConfigFailure(fmt.Sprintf("no such action %q on project %q", verb, requested.Info.Name), nil)
	}

	err := telemetry.TraceTask(ctx, verb, "run-id="+runID, func(ctx context.Context) error {
		if s.parallelism > 1 {
			return s.runParallel(requested, verb)
		}

		return s.runSequential(requested, verb)
	})

	return runID, err
}

// runSequential runs verb in the requested project only, exactly via
// component E's Task.Run chain, matching the default single-threaded,
// deterministic runner (SPEC_FULL.md §5).
func (s *session) runSequential(requested *project.Project, verb string) error {
	task, ok := requested.Tasks[verb]
	if !ok {
		return nil
	}

	return task.Run()
}

// runParallel dispatches verb across the requested project's dependency
// closure with the parallel scheduler (component F): one job per project
// that defines verb, ordered by the project dependency DAG, with
// interactive tasks in non-requested projects running only their
// predecessors (spec.md §3 "Interactive task" / §8 scenario 7).
func (s *session) runParallel(requested *project.Project, verb string) error {
	jobs := map[string]*scheduler.Job{}

	var build func(p *project.Project) *scheduler.Job

	build = func(p *project.Project) *scheduler.Job {
		if j, ok := jobs[p.Info.Name]; ok {
			return j
		}

		task, defines := p.Tasks[verb]

		action := func() error { return nil }
		if defines {
			if p == requested || !task.Interactive() {
				action = task.Run
			} else {
				action = task.RunDependenciesOnly
			}
		}

		j := scheduler.NewJob(p.Info.Name, 1, action)
		jobs[p.Info.Name] = j

		for _, dep := range p.Dependencies {
			if dep.ActionPresent(verb) {
				j.DependsOn(build(dep))
			}
		}

		return j
	}

	build(requested)

	all := make([]*scheduler.Job, 0, len(jobs))
	for _, j := range jobs {
		all = append(all, j)
	}

	result, err := scheduler.Run(all, s.parallelism)
	if err != nil {
		failed := 0
		if result != nil {
			failed = len(result.Failed)
		}

		return errors.NewTaskFailure(fmt.Sprintf("%d job(s) failed", failed), err)
	}

	return nil
}
