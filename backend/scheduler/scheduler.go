package scheduler

import (
	"log"
	"time"

	"ecoaware/backend/models"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	db        *gorm.DB
	logger    *log.Logger
	interval  time.Duration
}

func New(db *gorm.DB, logger *log.Logger, cleanupInterval time.Duration) *Scheduler {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		db:        db,
		logger:    logger,
		interval:  cleanupInterval,
	}
}

// Start schedules the jobs and returns immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.cleanupBlacklist); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) cleanupBlacklist() {
	removed, err := CleanupExpiredTokens(s.db, time.Now().UTC())
	if err != nil {
		s.logger.Printf("[scheduler] token blacklist cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		s.logger.Printf("[scheduler] removed %d expired blacklisted tokens", removed)
	}
}

// CleanupExpiredTokens deletes revoked tokens that would no longer validate anyway.
func CleanupExpiredTokens(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at < ?", now).Delete(&models.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
