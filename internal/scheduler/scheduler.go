// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/saramoussaya/barryland/internal/model"
)

// DefaultJobTimeout bounds a single job run when Job.Timeout is zero.
const DefaultJobTimeout = 5 * time.Minute

// ErrJobNotFound is returned for an unknown job name.
var ErrJobNotFound = errors.New("job not found")

var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is one periodic task.
type Job struct {
	Name        string
	Description string
	Schedule    string
	Timeout     time.Duration
	Run         func(ctx context.Context) error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Schedule        string    `json:"schedule"`
	DefaultSchedule string    `json:"default_schedule"`
	LastRun         time.Time `json:"last_run"`
	NextRun         time.Time `json:"next_run"`
	LastError       string    `json:"last_error,omitempty"`
}

type registeredJob struct {
	job             Job
	defaultSchedule string
	entryID         cron.EntryID
	mu              sync.Mutex
	lastErr         error
}

// Scheduler wraps a cron instance. Runs of the same job never overlap and
// a panicking job is logged, not fatal.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	base   context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	jobs map[string]*registeredJob
}

// New creates a scheduler evaluating schedules in UTC.
func New(logger *slog.Logger) *Scheduler {
	logger = logger.With("category", model.EventCategoryTasks)
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithParser(specParser),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		base:   ctx,
		cancel: cancel,
		jobs:   make(map[string]*registeredJob),
	}
}

// Add registers a job. Names must be unique.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job needs a name and a run function")
	}
	if _, err := specParser.Parse(job.Schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q for %s: %w", job.Schedule, job.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already registered", job.Name)
	}
	rj := &registeredJob{job: job, defaultSchedule: job.Schedule}
	id, err := s.cron.AddFunc(job.Schedule, func() { s.execute(rj) })
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", job.Name, err)
	}
	rj.entryID = id
	s.jobs[job.Name] = rj

	s.logger.Debug("registered scheduled job", "name", job.Name, "schedule", job.Schedule)
	return nil
}

// Start begins running jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops scheduling, cancels running jobs and waits for them or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with jobs still running")
	}
	s.logger.Info("scheduler stopped")
}

// List returns all registered jobs sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for _, rj := range s.jobs {
		entry := s.cron.Entry(rj.entryID)
		info := JobInfo{
			Name:            rj.job.Name,
			Description:     rj.job.Description,
			Schedule:        rj.job.Schedule,
			DefaultSchedule: rj.defaultSchedule,
			LastRun:         entry.Prev,
			NextRun:         entry.Next,
		}
		rj.mu.Lock()
		if rj.lastErr != nil {
			info.LastError = rj.lastErr.Error()
		}
		rj.mu.Unlock()
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// TriggerNow runs a job immediately on the caller's goroutine.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.RLock()
	rj, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.logger.Info("manually triggering job", "name", name)
	return s.run(ctx, rj)
}

// UpdateSchedule moves a job to a new cron expression.
func (s *Scheduler) UpdateSchedule(name, schedule string) error {
	if _, err := specParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rj, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.execute(rj) })
	if err != nil {
		return fmt.Errorf("failed to apply new schedule: %w", err)
	}
	s.cron.Remove(rj.entryID)
	rj.entryID = id
	rj.job.Schedule = schedule

	s.logger.Info("updated job schedule", "name", name, "schedule", schedule)
	return nil
}

func (s *Scheduler) execute(rj *registeredJob) {
	_ = s.run(s.base, rj)
}

func (s *Scheduler) run(parent context.Context, rj *registeredJob) error {
	timeout := rj.job.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	err := rj.job.Run(ctx)
	elapsed := time.Since(start)

	rj.mu.Lock()
	rj.lastErr = err
	rj.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "job", rj.job.Name, "duration", elapsed, "error", err)
		return err
	}
	s.logger.Debug("scheduled job finished", "job", rj.job.Name, "duration", elapsed)
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
