package jobs

import (
	"context"
	"time"

	"tenantadmin-backend/internal/config"
	"tenantadmin-backend/internal/logger"
	"tenantadmin-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Session      service.SessionService
	Subscription service.SubscriptionService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
	}
}

// Config exposes the configuration for schedule registration
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
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// CloseStaleSessions force-closes sessions whose interval has been open
// longer than the configured idle cutoff
func (jr *JobRunner) CloseStaleSessions() {
	jr.runWithRecovery("CloseStaleSessions", func() {
		cutoff := time.Duration(jr.config.Scheduler.SessionIdleCutoffHours) * time.Hour
		closed, err := jr.services.Session.CloseStale(context.Background(), cutoff)
		if err != nil {
			logger.Error("Failed to close stale sessions", "error", err)
			return
		}
		logger.Info("Closed stale sessions", "count", closed)
	})
}

// ReconcileSubscriptions expires active subscriptions whose billing
// period has lapsed
func (jr *JobRunner) ReconcileSubscriptions() {
	jr.runWithRecovery("ReconcileSubscriptions", func() {
		expired, err := jr.services.Subscription.ReconcileExpired(context.Background())
		if err != nil {
			logger.Error("Failed to reconcile subscriptions", "error", err)
			return
		}
		logger.Info("Reconciled subscriptions", "expired", expired)
	})
}
