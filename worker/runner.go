package worker

import (
	"fmt"

	"orgconsole/models"
	"orgconsole/utils/logger"
)

// Service wraps the session sweeper for easy integration
type Service struct {
	worker *Worker
	logger logger.Logger
}

// NewService creates a new worker service
func NewService(cfg *models.Config, sweeper Sweeper, log logger.Logger) (*Service, error) {
	w, err := NewWorker(cfg, sweeper, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create session sweeper: %w", err)
	}

	return &Service{
		worker: w,
		logger: log,
	}, nil
}

// StartInBackground starts the sweeper; cron runs jobs on its own goroutine
func (s *Service) StartInBackground() error {
	s.logger.Info("Starting session sweeper service in background")
	return s.worker.Start()
}

// Stop stops the sweeper service
func (s *Service) Stop() error {
	s.logger.Info("Stopping session sweeper service")
	return s.worker.Stop()
}

// GetHealthStatus returns a health status for monitoring
func (s *Service) GetHealthStatus() map[string]interface{} {
	status := map[string]interface{}{
		"running": s.worker.IsRunning(),
	}
	if last := s.worker.LastResult(); last != nil {
		status["last_sweep"] = last.StartedAt
		status["last_evicted"] = last.Evicted
		status["active_consoles"] = last.Remaining
	}
	return status
}
