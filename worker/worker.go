package worker

import (
	"fmt"
	"sync"
	"time"

	"orgconsole/models"
	"orgconsole/utils/logger"

	"github.com/robfig/cron"
)

// Sweeper evicts idle sessions
type Sweeper interface {
	Sweep(idle time.Duration) int
	Len() int
}

// SweepResult describes one sweep run
type SweepResult struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Evicted   int           `json:"evicted"`
	Remaining int           `json:"remaining"`
}

// Worker runs the session sweep on a cron schedule
type Worker struct {
	mu        sync.Mutex
	cron      *cron.Cron
	sweeper   Sweeper
	schedule  string
	idle      time.Duration
	logger    logger.Logger
	isRunning bool
	last      *SweepResult
}

// NewWorker validates the schedule and creates a stopped worker
func NewWorker(cfg *models.Config, sweeper Sweeper, log logger.Logger) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("session idle timeout must be positive")
	}
	if _, err := cron.Parse(cfg.SessionSweepSchedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SessionSweepSchedule, err)
	}

	return &Worker{
		cron:     cron.New(),
		sweeper:  sweeper,
		schedule: cfg.SessionSweepSchedule,
		idle:     cfg.SessionIdleTimeout,
		logger:   log,
	}, nil
}

// Start schedules the sweep job and starts the cron scheduler
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("worker is already running")
	}

	if err := w.cron.AddFunc(w.schedule, w.runSweep); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	w.cron.Start()
	w.isRunning = true

	w.logger.Infof("Session sweeper started with schedule %q, idle timeout %s", w.schedule, w.idle)
	return nil
}

// Stop stops the scheduler; a sweep already running finishes on its own
func (w *Worker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return fmt.Errorf("worker is not running")
	}
	w.cron.Stop()
	w.isRunning = false
	w.cron = cron.New()

	w.logger.Info("Session sweeper stopped")
	return nil
}

// IsRunning reports whether the scheduler is active
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

// SweepNow runs one sweep synchronously
func (w *Worker) SweepNow() SweepResult {
	start := time.Now()
	evicted := w.sweeper.Sweep(w.idle)
	result := SweepResult{
		StartedAt: start,
		Duration:  time.Since(start),
		Evicted:   evicted,
		Remaining: w.sweeper.Len(),
	}

	w.mu.Lock()
	w.last = &result
	w.mu.Unlock()
	return result
}

// LastResult returns the most recent sweep, nil before the first run
func (w *Worker) LastResult() *SweepResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return nil
	}
	r := *w.last
	return &r
}

func (w *Worker) runSweep() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Errorf("Session sweep panicked: %v", r)
		}
	}()

	result := w.SweepNow()
	if result.Evicted > 0 {
		w.logger.Infof("Evicted %d idle consoles, %d remaining", result.Evicted, result.Remaining)
		return
	}
	w.logger.Debugf("No idle consoles, %d active", result.Remaining)
}
