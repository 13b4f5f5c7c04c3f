// Package worker provides the bounded goroutine pool used for page-level
// parallelism.
package worker

import (
	"runtime"
	"sync"
)

// Pool runs submitted jobs on a fixed set of workers. The pool itself keeps
// no completion state: callers that need to wait for a batch wrap their own
// sync.WaitGroup around the jobs they submit, so concurrent callers never
// couple through a shared counter.
type Pool struct {
	workers  int
	jobQueue chan func()
	once     sync.Once
}

// NewPool creates a pool with the given worker count; zero or negative
// means one worker per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers. Safe to call more than once.
func (p *Pool) Start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			go p.worker()
		}
	})
}

func (p *Pool) worker() {
	for job := range p.jobQueue {
		job()
	}
}

// Submit queues a job. Blocks when the queue is full.
func (p *Pool) Submit(job func()) {
	p.jobQueue <- job
}

// Close stops the workers after the queue drains.
func (p *Pool) Close() {
	close(p.jobQueue)
}
