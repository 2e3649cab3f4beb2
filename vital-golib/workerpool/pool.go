package workerpool

import (
	"context"
	"fmt"
	"sync"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
)

// Job is a unit of work run by the pool.
type Job func() error

// Pool runs jobs on a fixed number of goroutines. Jobs may be added at any time until Stop is called.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc

	jobs    chan Job
	pending sync.WaitGroup
	workers sync.WaitGroup

	m    sync.Mutex
	errs errors.Errors
}

// New returns a pool with n workers.
func New(n int) *Pool {
	return NewWithCtx(context.Background(), n)
}

// NewWithCtx returns a pool with n workers that stops picking up jobs once ctx is done.
func NewWithCtx(ctx context.Context, n int) *Pool {
	if n < 1 {
		n = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan Job),
	}
	p.workers.Add(n)
	for i := 0; i < n; i++ {
		go p.work()
	}
	return p
}

// Add queues jobs without blocking the caller.
func (p *Pool) Add(jobs []Job) {
	p.pending.Add(len(jobs))
	go p.feed(jobs)
}

// Wait blocks until every added job has finished or been dropped, and returns the errors of failed jobs.
func (p *Pool) Wait() error {
	p.pending.Wait()

	p.m.Lock()
	defer p.m.Unlock()
	return errors.AsError(p.errs)
}

// Stop drops jobs that have not started and lets workers exit after their current job.
func (p *Pool) Stop() {
	p.cancel()
}

func (p *Pool) feed(jobs []Job) {
	for i, job := range jobs {
		select {
		case p.jobs <- job:
		case <-p.ctx.Done():
			for range jobs[i:] {
				p.pending.Done()
			}
			return
		}
	}
}

func (p *Pool) work() {
	defer p.workers.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.jobs:
			if p.ctx.Err() != nil {
				// stopped while the job was in flight to us; drop it
				p.pending.Done()
				continue
			}
			p.run(job)
		}
	}
}

func (p *Pool) run(job Job) {
	defer p.pending.Done()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return job()
	}()

	if err != nil {
		p.m.Lock()
		p.errs = errors.Append(p.errs, err)
		p.m.Unlock()
	}
}
