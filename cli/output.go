package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/forgebuild/forge/internal/errors"
)

// printer renders the success/failure lines spec.md §7 describes: a
// success line carrying elapsed time, or an error message plus the task
// label, colorized with fatih/color the way pkg/log colorizes level names
// (both gated on the destination being a terminal via mattn/go-isatty,
// which color.NoColor already derives from for os.Stdout/os.Stderr).
type printer struct {
	out io.Writer
	err io.Writer
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{out: out, err: errOut}
}

// reportResult prints either a green "success" line or a red "error" line
// for verb, including elapsed and (on failure) the error's taxonomy kind.
func (p *printer) reportResult(verb string, elapsed time.Duration, runErr error) {
	if runErr == nil {
		success := color.New(color.FgGreen, color.Bold)
		fmt.Fprintf(p.out, "%s (%s)\n", success.Sprintf("success: %s", verb), elapsed.Round(time.Millisecond))

		return
	}

	fail := color.New(color.FgRed, color.Bold)

	kind := "task"
	if tagged, ok := asTagged(runErr); ok {
		kind = string(tagged.Kind)
	}

	fmt.Fprintf(p.err, "%s [%s] %s (%s)\n", fail.Sprintf("error:"), kind, runErr.Error(), elapsed.Round(time.Millisecond))
}

func asTagged(err error) (*errors.Error, bool) {
	tagged, ok := err.(*errors.Error)

	return tagged, ok
}
