package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/logger"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/repository"
)

// pruneTimeout bounds a single retention pass.
const pruneTimeout = 5 * time.Minute

// LogPruner deletes mutation logs past their retention window.
type LogPruner interface {
	DeleteLogsOlderThan(ctx context.Context, threshold time.Duration) (int64, error)
}

var _ LogPruner = (repository.MutationLogRepository)(nil)

// CleanupConfig controls mutation log retention.
type CleanupConfig struct {
	Retention       time.Duration // default 30 days
	CleanupInterval time.Duration // default 24 hours
	InitialDelay    time.Duration // wait before the first pass
}

// DefaultCleanupConfig returns default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Retention:       30 * 24 * time.Hour,
		CleanupInterval: 24 * time.Hour,
		InitialDelay:    time.Minute,
	}
}

// CleanupScheduler prunes old mutation logs on a fixed interval until stopped.
type CleanupScheduler struct {
	repo   LogPruner
	config CleanupConfig
	log    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCleanupScheduler fills unset durations from DefaultCleanupConfig.
func NewCleanupScheduler(repo LogPruner, config CleanupConfig) *CleanupScheduler {
	defaults := DefaultCleanupConfig()
	if config.Retention <= 0 {
		config.Retention = defaults.Retention
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	config.InitialDelay = max(config.InitialDelay, 0)

	return &CleanupScheduler{repo: repo, config: config, log: logger.Component("cleanup")}
}

// Start launches the background loop. Calling it again while running is a no-op.
func (s *CleanupScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	s.log.Info("Started", "interval", s.config.CleanupInterval, "retention", s.config.Retention)
	go s.loop(ctx, s.done)
}

func (s *CleanupScheduler) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	wait := time.NewTimer(s.config.InitialDelay)
	defer wait.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopped")
			return
		case <-wait.C:
			s.prune(ctx)
			wait.Reset(s.config.CleanupInterval)
		}
	}
}

func (s *CleanupScheduler) prune(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pruneTimeout)
	defer cancel()

	deleted, err := s.repo.DeleteLogsOlderThan(ctx, s.config.Retention)
	switch {
	case err != nil:
		s.log.Error("Cleanup failed", "error", err)
	case deleted > 0:
		s.log.Info("Pruned mutation logs", "deleted", deleted)
	default:
		s.log.Debug("No mutation logs to prune")
	}
}

// Stop cancels the loop and waits for an in-flight pass to return.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunNow prunes once, outside the schedule.
func (s *CleanupScheduler) RunNow() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	return s.repo.DeleteLogsOlderThan(ctx, s.config.Retention)
}
