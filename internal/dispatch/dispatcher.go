package dispatch

import (
	"errors"
	"runtime"
	"sync"
)

// ErrStopped is returned by Submit after Stop
var ErrStopped = errors.New("dispatch: dispatcher is stopped")

// Job is a unit of work run by a worker
type Job interface {
	Run()
}

// JobFunc adapts a function to Job
type JobFunc func()

// Run calls f
func (f JobFunc) Run() { f() }

// Dispatcher manages a fixed pool of worker goroutines
type Dispatcher struct {
	jobs    chan Job
	workers int

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// New creates a Dispatcher with the given number of workers. A value <= 0
// uses runtime.NumCPU(). The job channel is buffered at 2 * workers.
func New(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Dispatcher{
		jobs:    make(chan Job, 2*workers),
		workers: workers,
	}
}

// Workers returns the size of the pool
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Start launches the worker goroutines
func (d *Dispatcher) Start() {
	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go d.worker()
	}
}

// Stop closes the job channel and waits for all workers to drain
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Submit enqueues a job, blocking while the buffer is full
func (d *Dispatcher) Submit(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	d.jobs <- job
	return nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		job.Run()
	}
}
