// Package cli implements the CLI surface of spec.md §6 over
// urfave/cli/v2: the verb/meta-verb commands, --root/--project/
// --parallelism/--log-level flags, posener/complete tab completion, and
// fatih/color + pkg/log success/failure rendering (SPEC_FULL.md §6).
// Anything domain-specific (staleness, the task graph, the scheduler)
// lives in internal/*; this package only loads a project and dispatches.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	urcli "github.com/urfave/cli/v2"

	"github.com/forgebuild/forge/internal/bootstrap"
	"github.com/forgebuild/forge/internal/errors"
	"github.com/forgebuild/forge/internal/project"
	"github.com/forgebuild/forge/internal/taskgraph"
	"github.com/forgebuild/forge/internal/telemetry"
	"github.com/forgebuild/forge/pkg/log"
)

// Run builds and executes the forge CLI app against args (normally
// os.Args) and returns the process exit code spec.md §6 specifies: 0 on
// overall success, non-zero otherwise.
func Run(args []string) int {
	app := newApp()

	if err := app.Run(args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	return exitCode
}

// exitCode is set by command actions that need a non-zero exit without
// urfave/cli treating the run itself as an app-construction error (a
// failed build task is a normal outcome, not a usage error).
var exitCode int

func newApp() *urcli.App {
	app := &urcli.App{
		Name:  "forge",
		Usage: "incremental build tool for a JVM-family source language",
		Flags: []urcli.Flag{
			&urcli.StringFlag{Name: "root", Value: ".", Usage: "project root directory"},
			&urcli.StringFlag{Name: "project", Usage: "sub-project to run the verb against (default: root project)"},
			&urcli.IntFlag{Name: "parallelism", Aliases: []string{"p"}, Value: 1, Usage: "max concurrent cross-project jobs; 1 runs sequentially"},
			&urcli.StringFlag{Name: "log-level", Value: "info", Usage: "trace|debug|info|warn|error"},
			&urcli.BoolFlag{Name: "no-color", Usage: "disable colorized output"},
			&urcli.BoolFlag{Name: "install-completion", Usage: "print the shell snippet that enables tab completion"},
		},
		Before:   beforeRunCompletion,
		Commands: append(verbCommands(), metaCommands()...),
		Action:   runInteractive,
	}

	return app
}

// beforeRunCompletion wires posener/complete in ahead of any subcommand
// dispatch: when invoked as a completion shim (the shell sets COMP_LINE/
// COMP_POINT before calling `forge` via `complete -C forge forge`), Complete
// writes candidates to stdout and reports true, so forge exits right there
// without ever loading a project. --install-completion just prints the
// one-line shell snippet the user adds to their profile; forge does not
// touch shell rc files itself.
func beforeRunCompletion(c *urcli.Context) error {
	if c.Bool("install-completion") {
		fmt.Fprintln(os.Stdout, `complete -C forge forge`)
		return urcli.Exit("", 0)
	}

	cmp := newCompletion(func() []string { return loadedSubProjectNames(c) })
	if cmp.Complete() {
		return urcli.Exit("", 0)
	}

	return nil
}

// loadedSubProjectNames best-effort loads the project at --root purely to
// offer sub-project names to the completer; failures are swallowed since a
// broken project shouldn't break tab completion.
func loadedSubProjectNames(c *urcli.Context) []string {
	p, cleanup, err := bootstrap.Load(c.String("root"))
	if err != nil {
		return nil
	}

	defer cleanup()

	names := make([]string, 0, len(p.SubProjects))
	for name := range p.SubProjects {
		names = append(names, name)
	}

	return names
}

func verbCommands() []*urcli.Command {
	cmds := make([]*urcli.Command, 0, len(verbs))

	for _, v := range verbs {
		verb := v
		cmds = append(cmds, &urcli.Command{
			Name:   verb,
			Usage:  "run the " + verb + " action",
			Action: func(c *urcli.Context) error { return runVerbCommand(c, verb) },
		})
	}

	return cmds
}

func runVerbCommand(c *urcli.Context, verb string) error {
	color.NoColor = color.NoColor || c.Bool("no-color")

	root, cleanup, err := bootstrap.Load(c.String("root"))
	if err != nil {
		exitCode = 1
		return err
	}

	defer cleanup()

	level, _ := log.ParseLevel(c.String("log-level"))
	logger := log.New(os.Stdout, level)

	initTelemetry(level == log.TraceLevel || level == log.DebugLevel)
	defer func() { _ = telemetry.Shutdown(context.Background()) }()

	sess := newSession(root, logger, c.Int("parallelism"))

	requested, ok := sess.resolveProject(c.String("project"))
	if !ok {
		exitCode = 1
		return errors.NewConfigFailure(fmt.Sprintf("no such project %q", c.String("project")), nil)
	}

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, runErr := sess.invoke(ctx, requested, verb)

	out := newPrinter(os.Stdout, os.Stderr)
	out.reportResult(verb, time.Since(start), runErr)

	if runErr != nil {
		exitCode = 1
		return nil // the error line was already printed; don't double-print via urfave/cli
	}

	return nil
}

func metaCommands() []*urcli.Command {
	return []*urcli.Command{
		{
			Name:   "projects",
			Usage:  "list the root project and every sub-project",
			Action: actionProjects,
		},
		{
			Name:   "actions",
			Usage:  "list the actions available on the selected project",
			Action: actionActions,
		},
		{
			Name:      "graph",
			Usage:     "write the dependency graph for an action in Graphviz dot format",
			ArgsUsage: "<action>",
			Action:    actionGraph,
		},
	}
}

func actionProjects(c *urcli.Context) error {
	root, cleanup, err := bootstrap.Load(c.String("root"))
	if err != nil {
		return err
	}

	defer cleanup()

	printProjectTree(os.Stdout, root, 0)

	return nil
}

func printProjectTree(w *os.File, p *project.Project, depth int) {
	fmt.Fprintf(w, "%*s%s (%s)\n", depth*2, "", p.Info.Name, p.Info.Version)

	for _, sub := range p.SubProjects {
		printProjectTree(w, sub, depth+1)
	}
}

func actionActions(c *urcli.Context) error {
	root, cleanup, err := bootstrap.Load(c.String("root"))
	if err != nil {
		return err
	}

	defer cleanup()

	sess := newSession(root, log.New(os.Stdout, log.InfoLevel), 1)

	requested, ok := sess.resolveProject(c.String("project"))
	if !ok {
		return errors.NewConfigFailure(fmt.Sprintf("no such project %q", c.String("project")), nil)
	}

	for name, task := range requested.Tasks {
		fmt.Fprintf(os.Stdout, "%-20s %s\n", name, task.Description())
	}

	return nil
}

func actionGraph(c *urcli.Context) error {
	if c.NArg() < 1 {
		return errors.NewConfigFailure("graph requires an action name argument", nil)
	}

	root, cleanup, err := bootstrap.Load(c.String("root"))
	if err != nil {
		return err
	}

	defer cleanup()

	sess := newSession(root, log.New(os.Stdout, log.InfoLevel), 1)

	requested, ok := sess.resolveProject(c.String("project"))
	if !ok {
		return errors.NewConfigFailure(fmt.Sprintf("no such project %q", c.String("project")), nil)
	}

	task, ok := requested.Tasks[c.Args().First()]
	if !ok {
		return errors.NewConfigFailure(fmt.Sprintf("no such action %q", c.Args().First()), nil)
	}

	return taskgraph.WriteDot(os.Stdout, task)
}

// initTelemetry installs the stdout tracer when --log-level is trace or
// debug, matching the teacher's "verbose implies tracing" convention.
func initTelemetry(enabled bool) {
	_ = telemetry.Init(telemetry.Options{Enabled: enabled, Writer: os.Stderr})
}
