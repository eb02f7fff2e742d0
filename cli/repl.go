package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	urcli "github.com/urfave/cli/v2"

	"github.com/forgebuild/forge/internal/bootstrap"
	"github.com/forgebuild/forge/internal/errors"
	"github.com/forgebuild/forge/pkg/log"
)

// runInteractive is the App's default Action (no verb given on the
// command line): it loads the project once and drops into the prompt
// loop spec.md §6 describes, re-using the same session dispatch every
// batch command goes through so meta-verbs and build verbs share one
// code path.
func runInteractive(c *urcli.Context) error {
	root, cleanup, err := bootstrap.Load(c.String("root"))
	if err != nil {
		return err
	}

	defer cleanup()

	level, _ := log.ParseLevel(c.String("log-level"))
	logger := log.New(os.Stdout, level)

	sess := newSession(root, logger, c.Int("parallelism"))

	if name := c.String("project"); name != "" {
		if p, ok := sess.resolveProject(name); ok {
			sess.current = p
		}
	}

	return repl(sess, os.Stdin, os.Stdout, os.Stderr)
}

// repl reads one line at a time from in, dispatching it as either a
// meta-verb (projects, actions, project <name>, current, set/get,
// exit/quit) or a build verb against sess.current, until EOF or
// exit/quit (spec.md §6: "Exit code 0 on overall success ... Interactive
// mode returns control to the prompt; batch mode exits non-zero").
func repl(sess *session, in *os.File, out, errOut *os.File) error {
	scanner := bufio.NewScanner(in)
	printer := newPrinter(out, errOut)

	fmt.Fprintf(out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			fmt.Fprintf(out, "> ")
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "projects":
			printProjectTree(out, sess.root, 0)
		case "actions":
			for name, task := range sess.current.Tasks {
				fmt.Fprintf(out, "%-20s %s\n", name, task.Description())
			}
		case "current":
			fmt.Fprintln(out, sess.current.Info.Name)
		case "project":
			handleProjectCommand(sess, args, out, errOut)
		case "set":
			handleSet(sess, args, errOut)
		case "get":
			handleGet(sess, args, out, errOut)
		default:
			if !isKnownVerb(cmd) {
				fmt.Fprintf(errOut, "error: unknown command %q\n", cmd)
				break
			}

			start := time.Now()
			_, runErr := sess.invoke(context.Background(), sess.current, cmd)
			printer.reportResult(cmd, time.Since(start), runErr)
		}

		fmt.Fprintf(out, "> ")
	}

	return scanner.Err()
}

func isKnownVerb(cmd string) bool {
	for _, v := range verbs {
		if v == cmd {
			return true
		}
	}

	return false
}

func handleProjectCommand(sess *session, args []string, out, errOut *os.File) {
	if len(args) == 0 {
		fmt.Fprintln(out, sess.current.Info.Name)
		return
	}

	p, ok := sess.resolveProject(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: %s\n", errors.NewConfigFailure(fmt.Sprintf("no such project %q", args[0]), nil))
		return
	}

	sess.current = p
}

func handleSet(sess *session, args []string, errOut *os.File) {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: set requires <name> <value>")
		return
	}

	sess.vars[args[0]] = args[1]
}

func handleGet(sess *session, args []string, out, errOut *os.File) {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: get requires <name>")
		return
	}

	v, ok := sess.vars[args[0]]
	if !ok {
		fmt.Fprintf(errOut, "error: no such variable %q\n", args[0])
		return
	}

	fmt.Fprintln(out, v)
}
