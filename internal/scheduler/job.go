package scheduler

// Status is a job's lifecycle state within a Scheduler run.
type Status int

const (
	// StatusPending is the zero value: a job whose dependencies have not
	// all reported success yet, so it has never been placed on the
	// ready queue.
	StatusPending Status = iota
	StatusReady
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusSkipped
)

// Job is a schedulable unit: a name, an action, and the jobs it depends on.
// Cost is the job's own estimated weight; PathCost (own cost plus the max
// path-cost among dependents) is computed by Run and used to order the
// ready queue so critical-path jobs start first (SPEC_FULL.md §4.F).
type Job struct {
	Action func() error
	Name   string
	deps   []*Job
	rdeps  []*Job

	Cost     int
	PathCost int
	Status   Status

	pending int
}

// NewJob returns a job with the given name, cost, and action. Dependencies
// are wired with DependsOn before the job is handed to Run.
func NewJob(name string, cost int, action func() error) *Job {
	return &Job{Name: name, Cost: cost, Action: action}
}

// DependsOn records that j cannot run until each of others has succeeded.
func (j *Job) DependsOn(others ...*Job) *Job {
	j.deps = append(j.deps, others...)
	for _, o := range others {
		o.rdeps = append(o.rdeps, j)
	}

	return j
}

// Dependencies returns j's direct dependencies.
func (j *Job) Dependencies() []*Job { return j.deps }
