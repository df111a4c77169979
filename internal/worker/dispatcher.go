// Package worker runs adapter calls on a fixed set of goroutines fed by a
// bounded queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"docflow/internal/apperr"
)

var (
	// ErrDispatcherBusy is returned when the job queue is full.
	ErrDispatcherBusy = fmt.Errorf("worker queue full: %w", apperr.ErrBusy)
	// ErrDispatcherStopped is returned for jobs submitted or still queued
	// after Stop.
	ErrDispatcherStopped = errors.New("worker dispatcher stopped")
)

type DispatcherConfig struct {
	MaxWorkers int
	QueueSize  int
}

// Job is one unit of work. done is buffered so a worker never blocks on a
// caller that stopped waiting.
type Job struct {
	ctx  context.Context
	name string
	fn   func(context.Context) error
	done chan error
}

type Dispatcher struct {
	JobQueue chan Job

	logger  zerolog.Logger
	mu      sync.RWMutex
	stopped bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	d := &Dispatcher{
		JobQueue: make(chan Job, cfg.QueueSize),
		logger:   logger.With().Str("component", "worker").Logger(),
		quit:     make(chan struct{}),
	}
	for i := 0; i < cfg.MaxWorkers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	return d
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.JobQueue:
			d.logger.Debug().Int("worker", id).Str("job", job.name).Msg("run job")
			job.done <- d.run(job)
		case <-d.quit:
			return
		}
	}
}

func (d *Dispatcher) run(job Job) (err error) {
	if err := job.ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("job", job.name).Interface("panic", r).Msg("job panicked")
			err = fmt.Errorf("job %s panicked: %v", job.name, r)
		}
	}()
	return job.fn(job.ctx)
}

// Submit queues fn and waits for its result. A full queue fails at once with
// ErrDispatcherBusy; a cancelled ctx stops the wait and skips the job if it
// has not started.
func (d *Dispatcher) Submit(ctx context.Context, name string, fn func(context.Context) error) error {
	job := Job{ctx: ctx, name: name, fn: fn, done: make(chan error, 1)}

	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		return ErrDispatcherStopped
	}
	select {
	case d.JobQueue <- job:
	default:
		d.mu.RUnlock()
		return ErrDispatcherBusy
	}
	d.mu.RUnlock()

	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop waits for running jobs and fails the ones still queued.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.mu.Unlock()

	close(d.quit)
	d.wg.Wait()
	for {
		select {
		case job := <-d.JobQueue:
			job.done <- ErrDispatcherStopped
		default:
			return
		}
	}
}
