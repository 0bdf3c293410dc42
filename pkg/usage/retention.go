package usage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls automatic pruning of the usage history.
type RetentionConfig struct {
	// RetentionDays is how many archived days to keep. Zero or negative
	// disables pruning.
	RetentionDays int

	// Schedule is a cron expression for when pruning runs.
	Schedule string
}

// DefaultRetentionConfig keeps 90 days and prunes nightly at 03:00.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		RetentionDays: 90,
		Schedule:      "0 3 * * *",
	}
}

// RetentionScheduler prunes old usage history rows on a cron schedule.
type RetentionScheduler struct {
	history *History
	config  RetentionConfig
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewRetentionScheduler creates a scheduler for the given history store.
func NewRetentionScheduler(history *History, config RetentionConfig) (*RetentionScheduler, error) {
	if history == nil {
		return nil, fmt.Errorf("history cannot be nil")
	}
	if config.Schedule == "" {
		config.Schedule = DefaultRetentionConfig().Schedule
	}

	return &RetentionScheduler{
		history: history,
		config:  config,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "usage.retention"),
	}, nil
}

// Start registers the cron job and begins the schedule. Start is a
// no-op when retention is disabled or the scheduler already runs.
func (s *RetentionScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.config.RetentionDays <= 0 {
		s.logger.Info("usage history retention disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("scheduled usage history pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.config.Schedule, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("usage history retention started",
		"schedule", s.config.Schedule,
		"retention_days", s.config.RetentionDays,
	)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("usage history retention stopped")
}

// RunOnce prunes immediately, independent of the schedule.
func (s *RetentionScheduler) RunOnce(ctx context.Context) error {
	if s.config.RetentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	deleted, err := s.history.PruneBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("pruned usage history",
			"deleted_rows", deleted,
			"cutoff", cutoff.Format(dayFormat),
		)
	}
	return nil
}
