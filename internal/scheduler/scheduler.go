// Package scheduler implements the parallel task scheduler of
// SPEC_FULL.md §4.F: at most maxTasks jobs run concurrently (the bound
// grounded on the teacher's internal/worker.WorkerPool, collapsed here into
// a running-count the single coordinator goroutine tracks directly so that
// dispatch decisions stay ordered by the ready queue's priority), draining
// a ready queue ordered by path-cost then name (grounded on the teacher's
// internal/queue dependency-level ordering), with failure propagating as
// JobSkipped to every transitive dependent instead of a preemptive
// cancellation.
package scheduler

import (
	"container/heap"
	"runtime"

	"github.com/forgebuild/forge/internal/errors"
)

// Result is the outcome of a single Run: which jobs succeeded, failed, or
// were skipped, and the concatenation of every failure record encountered.
type Result struct {
	Failures  []error
	Skipped   []*Job
	Failed    []*Job
	Succeeded []*Job
}

// Ok reports whether every job in the run succeeded.
func (r *Result) Ok() bool { return len(r.Failures) == 0 }

// Run schedules jobs for execution, running at most maxTasks actions
// concurrently (0 or negative defaults to runtime.NumCPU()). A job is
// submitted only once every one of its dependencies has succeeded; if a
// dependency fails, the job is marked StatusSkipped without its action
// ever running, carrying forward the accumulated failure list. Run
// terminates exactly when every job has reached a terminal status.
func Run(jobs []*Job, maxTasks int) (*Result, error) {
	if maxTasks <= 0 {
		maxTasks = runtime.NumCPU()
	}

	if err := assignPathCosts(jobs); err != nil {
		return nil, err
	}

	total := len(jobs)
	res := &Result{}

	if total == 0 {
		return res, nil
	}

	completions := make(chan completion, total)

	ready := &readyQueue{}
	heap.Init(ready)

	for _, j := range jobs {
		j.pending = len(j.deps)
		if j.pending == 0 {
			j.Status = StatusReady
			heap.Push(ready, j)
		}
	}

	runCount, running := 0, 0

	dispatch := func(j *Job) {
		j.Status = StatusRunning
		running++
		job := j

		go func() {
			err := job.Action()
			completions <- completion{job, err}
		}()
	}

	drain := func() {
		for ready.Len() > 0 && running < maxTasks {
			dispatch(heap.Pop(ready).(*Job))
		}
	}

	drain()

	for runCount < total {
		c := <-completions
		runCount++
		running--

		if c.err != nil {
			c.job.Status = StatusFailed
			res.Failures = append(res.Failures, c.err)
			res.Failed = append(res.Failed, c.job)
			runCount += skipDependents(c.job, res)

			drain()

			continue
		}

		c.job.Status = StatusSucceeded
		res.Succeeded = append(res.Succeeded, c.job)

		for _, d := range c.job.rdeps {
			if d.Status == StatusSkipped {
				continue
			}

			d.pending--
			if d.pending == 0 {
				d.Status = StatusReady
				heap.Push(ready, d)
			}
		}

		drain()
	}

	var err error
	if len(res.Failures) > 0 {
		err = errors.Append(nil, res.Failures...)
	}

	return res, err
}

type completion struct {
	job *Job
	err error
}

// skipDependents marks every not-yet-terminal transitive dependent of
// failed as StatusSkipped and returns how many jobs it marked, so the
// caller can fold that count into the scheduler's termination check
// without those jobs ever passing through the completions channel.
func skipDependents(failed *Job, res *Result) int {
	skipped := 0

	var visit func(j *Job)

	visit = func(j *Job) {
		for _, d := range j.rdeps {
			switch d.Status {
			case StatusSucceeded, StatusFailed, StatusSkipped:
				continue
			}

			d.Status = StatusSkipped
			res.Skipped = append(res.Skipped, d)
			skipped++

			visit(d)
		}
	}

	visit(failed)

	return skipped
}

func assignPathCosts(jobs []*Job) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := map[*Job]int{}

	var visit func(j *Job) (int, error)

	visit = func(j *Job) (int, error) {
		if color[j] == black {
			return j.PathCost, nil
		}

		if color[j] == gray {
			return 0, errors.New("cycle detected at job " + j.Name)
		}

		color[j] = gray

		best := 0

		for _, d := range j.rdeps {
			cost, err := visit(d)
			if err != nil {
				return 0, err
			}

			if cost > best {
				best = cost
			}
		}

		j.PathCost = j.Cost + best
		color[j] = black

		return j.PathCost, nil
	}

	for _, j := range jobs {
		if _, err := visit(j); err != nil {
			return err
		}
	}

	return nil
}

// readyQueue is a max-heap over *Job keyed by PathCost, breaking ties by
// Name ascending for deterministic test output (SPEC_FULL.md §4.F).
type readyQueue []*Job

func (q readyQueue) Len() int { return len(q) }

func (q readyQueue) Less(i, j int) bool {
	if q[i].PathCost != q[j].PathCost {
		return q[i].PathCost > q[j].PathCost
	}

	return q[i].Name < q[j].Name
}

func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) { *q = append(*q, x.(*Job)) }

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]

	return item
}
