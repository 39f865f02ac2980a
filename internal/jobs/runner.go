package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shutdowns-bot/internal/logger"
)

// Job is a task fired on a wall-clock schedule.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
	// Next returns the first firing time after now.
	Next func(now time.Time) time.Time
}

// Runner fires jobs on their schedule. A job never overlaps with itself:
// a firing that finds the previous run still going is skipped.
type Runner struct {
	jobs   []Job
	guards map[string]*sync.Mutex
	now    func() time.Time
	rec    Recorder
	log    logger.Logger
	wg     sync.WaitGroup
}

func NewRunner(rec Recorder, jobs ...Job) *Runner {
	if rec == nil {
		rec = nopRecorder{}
	}
	r := &Runner{
		jobs:   jobs,
		guards: make(map[string]*sync.Mutex, len(jobs)),
		now:    time.Now,
		rec:    rec,
		log:    logger.New("jobs"),
	}
	for _, j := range jobs {
		r.guards[j.Name] = &sync.Mutex{}
	}
	return r
}

// Start launches one timer loop per job. They stop when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	for _, j := range r.jobs {
		r.wg.Add(1)
		go func(j Job) {
			defer r.wg.Done()
			r.loop(ctx, j)
		}(j)
	}
}

// Wait blocks until every loop and in-flight run has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, j Job) {
	for {
		next := j.Next(r.now())
		r.log.Debugf("%s: next run at %s", j.Name, next.Format(time.RFC3339))
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if _, err := r.fire(ctx, j); err != nil {
				r.log.Errorf("%s failed: %v", j.Name, err)
			}
		}()
	}
}

// RunNow runs the named job immediately. It reports false if the job was
// already running.
func (r *Runner) RunNow(ctx context.Context, name string) (bool, error) {
	for _, j := range r.jobs {
		if j.Name == name {
			return r.fire(ctx, j)
		}
	}
	return false, fmt.Errorf("unknown job %q", name)
}

// Trigger runs the named job in the background. Wait covers the run.
func (r *Runner) Trigger(ctx context.Context, name string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if _, err := r.RunNow(ctx, name); err != nil {
			r.log.Errorf("%s failed: %v", name, err)
		}
	}()
}

func (r *Runner) fire(ctx context.Context, j Job) (bool, error) {
	guard := r.guards[j.Name]
	if !guard.TryLock() {
		r.log.Warnf("%s is still running, skipping this run", j.Name)
		return false, nil
	}
	defer guard.Unlock()

	start := time.Now()
	err := j.Run(ctx)
	r.rec.JobRun(j.Name, err)
	r.log.Debugf("%s finished in %s", j.Name, time.Since(start).Round(time.Millisecond))
	return true, err
}
