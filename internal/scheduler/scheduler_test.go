package scheduler_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/forgebuild/forge/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearChainRunsInDependencyOrder(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)

	record := func(name string) func() error {
		return func() error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()

			return nil
		}
	}

	a := scheduler.NewJob("a", 1, record("a"))
	b := scheduler.NewJob("b", 1, record("b")).DependsOn(a)
	c := scheduler.NewJob("c", 1, record("c")).DependsOn(b)

	res, err := scheduler.Run([]*scheduler.Job{c, b, a}, 4)
	require.NoError(t, err)
	assert.True(t, res.Ok())
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestDiamondDependencyRunsBothBranches(t *testing.T) {
	t.Parallel()

	var ran int32

	work := func() error {
		atomic.AddInt32(&ran, 1)
		return nil
	}

	a := scheduler.NewJob("a", 1, work)
	b := scheduler.NewJob("b", 1, work).DependsOn(a)
	c := scheduler.NewJob("c", 1, work).DependsOn(a)
	d := scheduler.NewJob("d", 1, work).DependsOn(b, c)

	res, err := scheduler.Run([]*scheduler.Job{a, b, c, d}, 4)
	require.NoError(t, err)
	assert.True(t, res.Ok())
	assert.Equal(t, int32(4), atomic.LoadInt32(&ran))
	assert.Len(t, res.Succeeded, 4)
}

func TestFailurePropagatesSkipToDependents(t *testing.T) {
	t.Parallel()

	a := scheduler.NewJob("a", 1, func() error { return assert.AnError })
	b := scheduler.NewJob("b", 1, func() error { return nil }).DependsOn(a)
	c := scheduler.NewJob("c", 1, func() error { return nil }).DependsOn(b)
	d := scheduler.NewJob("d", 1, func() error { return nil })

	res, err := scheduler.Run([]*scheduler.Job{a, b, c, d}, 4)
	require.Error(t, err)
	assert.False(t, res.Ok())

	assert.Equal(t, scheduler.StatusFailed, a.Status)
	assert.Equal(t, scheduler.StatusSkipped, b.Status)
	assert.Equal(t, scheduler.StatusSkipped, c.Status)
	assert.Equal(t, scheduler.StatusSucceeded, d.Status)
}

func TestPathCostOrdersCriticalChainFirst(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)

	record := func(name string) func() error {
		return func() error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()

			return nil
		}
	}

	// root has two independent children: "short" (cost 1, no further
	// deps) and "long" (cost 1, feeding a further chain of 2 more
	// cost-1 jobs) - the long branch has the higher path-cost and
	// should be picked first whenever both are ready.
	root := scheduler.NewJob("root", 1, record("root"))
	short := scheduler.NewJob("short", 1, record("short")).DependsOn(root)
	long1 := scheduler.NewJob("long1", 1, record("long1")).DependsOn(root)
	long2 := scheduler.NewJob("long2", 1, record("long2")).DependsOn(long1)
	long3 := scheduler.NewJob("long3", 1, record("long3")).DependsOn(long2)

	res, err := scheduler.Run([]*scheduler.Job{root, short, long1, long2, long3}, 1)
	require.NoError(t, err)
	assert.True(t, res.Ok())

	require.Equal(t, []string{"root", "long1", "long2", "long3", "short"}, order)
}

func TestMaxTasksBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var (
		cur, peak int32
	)

	work := func() error {
		n := atomic.AddInt32(&cur, 1)

		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}

		atomic.AddInt32(&cur, -1)

		return nil
	}

	jobs := make([]*scheduler.Job, 0, 20)
	for i := range 20 {
		jobs = append(jobs, scheduler.NewJob(string(rune('a'+i)), 1, work))
	}

	_, err := scheduler.Run(jobs, 3)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestEmptyJobListFinishesImmediately(t *testing.T) {
	t.Parallel()

	res, err := scheduler.Run(nil, 4)
	require.NoError(t, err)
	assert.True(t, res.Ok())
}
