package jobs

import (
	"time"

	"garage-booking/internal/config"
	"garage-booking/internal/logger"
	"garage-booking/internal/repository"
	"garage-booking/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings  repository.BookingRepository
	inventory repository.InventoryRepository
	email     service.EmailService
	config    *config.Config
	now       func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	bookings repository.BookingRepository,
	inventory repository.InventoryRepository,
	email service.EmailService,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		bookings:  bookings,
		inventory: inventory,
		email:     email,
		config:    cfg,
		now:       time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := jr.now()
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration", jr.now().Sub(start))
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendBookingReminders()
	jr.ReportLowStock()
}
