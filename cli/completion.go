package cli

import (
	"github.com/posener/complete"
)

// metaVerbs are the non-task commands spec.md §6 lists alongside the verb
// surface: project/action introspection and the set/get variable store.
var metaVerbs = []string{"projects", "actions", "project", "current", "set", "get"}

// newCompletion builds the posener/complete predictor tree for forge's
// verb/meta-verb surface plus the --root/--project/--log-level flags, so
// the bash/zsh completion script `complete -C forge forge` installs drives
// real tab-completion rather than falling back to file names.
func newCompletion(subProjectNames func() []string) *complete.Complete {
	commands := complete.Commands{}

	for _, v := range verbs {
		commands[v] = complete.Command{}
	}

	for _, v := range metaVerbs {
		commands[v] = complete.Command{}
	}

	commands["project"] = complete.Command{
		Args: complete.PredictFunc(func(complete.Args) []string { return subProjectNames() }),
	}

	for _, v := range []string{"exit", "quit"} {
		commands[v] = complete.Command{}
	}

	root := complete.Command{
		Sub: commands,
		Flags: complete.Flags{
			"--root":       complete.PredictDirs("*"),
			"--project":    complete.PredictFunc(func(complete.Args) []string { return subProjectNames() }),
			"--log-level":  complete.PredictSet("trace", "debug", "info", "warn", "error"),
			"--parallelism": complete.PredictAnything,
			"--no-color":   complete.PredictNothing,
		},
	}

	return complete.New("forge", root)
}
