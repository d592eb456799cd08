// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tasks runs best-effort side effects (notifications, emails, audit
// records) outside the request that triggered them. A failed or dropped task
// is logged and never reported back to the caller.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saramoussaya/barryland/internal/model"
)

// Func is a unit of background work.
type Func func(ctx context.Context) error

// Runner accepts background work.
type Runner interface {
	// Submit schedules fn and reports whether it was accepted. It never blocks.
	Submit(name string, fn Func) bool
}

// Config holds dispatcher configuration.
type Config struct {
	Workers   int           // Number of concurrent workers
	QueueSize int           // Buffered tasks before new ones are dropped
	Timeout   time.Duration // Per-task deadline
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		QueueSize: 256,
		Timeout:   30 * time.Second,
	}
}

type job struct {
	name string
	fn   Func
}

// Dispatcher is a fixed pool of workers reading from a bounded queue.
type Dispatcher struct {
	logger  *slog.Logger
	queue   chan job
	workers int
	timeout time.Duration

	wg      sync.WaitGroup // workers
	pending sync.WaitGroup // accepted, not yet finished tasks
	done    chan struct{}
	mu      sync.RWMutex
	running bool
	halted  bool // Start context cancelled
}

// NewDispatcher creates a new dispatcher. Call Start before submitting work.
func NewDispatcher(logger *slog.Logger, cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		logger:  logger.With("category", model.EventCategoryTasks),
		queue:   make(chan job, cfg.QueueSize),
		workers: cfg.Workers,
		timeout: cfg.Timeout,
		done:    make(chan struct{}),
	}
}

// Start starts the worker goroutines. ctx bounds every task run by them;
// once it is cancelled queued tasks are dropped and Submit rejects new ones.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting task dispatcher", "workers", d.workers, "queue_size", cap(d.queue))

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops accepting work, runs what is already queued and waits for the
// workers to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping task dispatcher", "queued", len(d.queue))
	close(d.done)
	d.wg.Wait()
	d.logger.Info("task dispatcher stopped")
}

// Submit implements Runner. Work submitted while the dispatcher is stopped or
// while the queue is full is dropped with a warning.
func (d *Dispatcher) Submit(name string, fn Func) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.running || d.halted {
		d.logger.Warn("task dispatcher not running, task dropped", "task", name)
		return false
	}

	d.pending.Add(1)
	select {
	case d.queue <- job{name: name, fn: fn}:
		return true
	default:
		d.pending.Done()
		d.logger.Warn("task queue full, task dropped", "task", name, "queue_size", cap(d.queue))
		return false
	}
}

// Wait blocks until every accepted task has finished or been discarded.
// It is meant for tests and shutdown: callers must not Submit concurrently
// with Wait.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("task worker started", "worker_id", id)

	for {
		select {
		case j := <-d.queue:
			if ctx.Err() != nil {
				d.discard(&j)
				d.logger.Debug("task worker context cancelled", "worker_id", id)
				return
			}
			d.run(ctx, j)
		case <-d.done:
			d.drain(ctx)
			d.logger.Debug("task worker stopping", "worker_id", id)
			return
		case <-ctx.Done():
			d.discard(nil)
			d.logger.Debug("task worker context cancelled", "worker_id", id)
			return
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case j := <-d.queue:
			d.run(ctx, j)
		default:
			return
		}
	}
}

// discard stops intake and drops held, if any, and whatever is still
// queued. Tasks already running on other workers are left to finish.
func (d *Dispatcher) discard(held *job) {
	d.mu.Lock()
	d.halted = true
	d.mu.Unlock()

	if held != nil {
		d.drop(*held)
	}
	for {
		select {
		case j := <-d.queue:
			d.drop(j)
		default:
			return
		}
	}
}

func (d *Dispatcher) drop(j job) {
	d.logger.Warn("task dispatcher cancelled, task dropped", "task", j.name)
	d.pending.Done()
}

func (d *Dispatcher) run(parent context.Context, j job) {
	defer d.pending.Done()

	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()

	start := time.Now()
	if err := safeCall(ctx, j.fn); err != nil {
		d.logger.Warn("task failed", "task", j.name, "error", err, "duration", time.Since(start))
		return
	}
	d.logger.Debug("task completed", "task", j.name, "duration", time.Since(start))
}

func safeCall(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Inline runs every task synchronously on the caller's goroutine with a
// background context. Errors are logged like the Dispatcher does.
type Inline struct {
	Logger *slog.Logger
}

// Submit implements Runner.
func (r Inline) Submit(name string, fn Func) bool {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := safeCall(context.Background(), fn); err != nil {
		logger.With("category", model.EventCategoryTasks).Warn("task failed", "task", name, "error", err)
	}
	return true
}
