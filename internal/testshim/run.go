package testshim

import (
	"github.com/forgebuild/forge/internal/errors"
)

var errInvalidRunnerPlugin = errors.New("test runner plugin did not implement the expected interface")

// Report is the outcome of running every discovered test definition across
// every framework that claimed at least one of them.
type Report struct {
	Results []Result
	Overall Outcome
}

// Run partitions defs across frameworks, launches each framework that owns
// at least one definition as its own subprocess, runs its tests against
// classpath, and aggregates the worst-of-all outcome (spec.md §4.I).
// Frameworks whose partition is empty are never launched.
func Run(frameworks []Framework, defs []Definition, classpath []string) (*Report, error) {
	partitioned := Partition(frameworks, defs)

	report := &Report{Overall: Passed}

	for _, fw := range frameworks {
		owned := partitioned[fw.DisplayName]
		if len(owned) == 0 {
			continue
		}

		client, runner, err := Launch(fw)
		if err != nil {
			return nil, errors.NewTestFailure("launching runner for "+fw.DisplayName, err)
		}

		results, err := runner.RunTests(classpath, owned)

		client.Kill()

		if err != nil {
			return nil, errors.NewTestFailure("running tests for "+fw.DisplayName, err)
		}

		report.Results = append(report.Results, results...)
	}

	outcomes := make([]Outcome, 0, len(report.Results))
	for _, r := range report.Results {
		outcomes = append(outcomes, r.Outcome)
	}

	report.Overall = Worst(outcomes)

	return report, nil
}
