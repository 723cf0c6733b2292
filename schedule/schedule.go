// Package schedule runs periodic jobs, most importantly checking every
// tracked manga for new chapters on a cron schedule. It is a smaller,
// purpose-built rewrite of the teacher's scheduler package: the
// teacher's CronScheduler mixed this reusable part with library
// indexing logic that doesn't apply here.
package schedule

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work. Run receives a context that's
// cancelled if the scheduler is stopped while the job is executing.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler runs a fixed set of cron Jobs and reports the outcome of
// each run through OnResult, if set.
type Scheduler struct {
	mu        sync.Mutex
	cron      *cron.Cron
	OnResult  func(job Job, err error)
	rootCtx   context.Context
	cancelAll context.CancelFunc
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(),
		rootCtx:   ctx,
		cancelAll: cancel,
	}
}

// AddJob registers job on the scheduler. It returns an error if job's
// cron spec can't be parsed.
func (s *Scheduler) AddJob(job Job) error {
	_, err := s.cron.AddFunc(job.Spec, func() {
		err := job.Run(s.rootCtx)
		if s.OnResult != nil {
			s.OnResult(job, err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron scheduler and cancels the context passed to any
// in-flight job, then waits for the cron scheduler's internal loop to
// finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	s.cancelAll()
	<-ctx.Done()
}
