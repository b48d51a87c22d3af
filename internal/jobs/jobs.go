// Package jobs runs the periodic background work of the server.
package jobs

import (
	"context" // Job deadlines
	"time"    // Timeouts

	"yield_wallet/internal/ledger"     // Reconciliation
	"yield_wallet/internal/middleware" // Rate limiter cleanup

	"github.com/robfig/cron/v3"  // Scheduler
	"github.com/sirupsen/logrus" // Logging library
)

const (
	reconcileTimeout   = 5 * time.Minute
	limiterCleanupCron = "@every 10m"
	limiterMaxIdle     = 30 * time.Minute
)

// Scheduler wraps a cron instance with the server's jobs
type Scheduler struct {
	cron *cron.Cron
}

// New registers the reconciliation job on reconcileSpec and the limiter cleanup.
// Runs of the same job never overlap.
func New(svc *ledger.Service, limiter *middleware.RateLimiter, reconcileSpec string) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(reconcileSpec, func() { RunReconcile(svc) }); err != nil {
		return nil, err
	}
	if limiter != nil {
		if _, err := c.AddFunc(limiterCleanupCron, func() {
			remaining := limiter.Cleanup(limiterMaxIdle)
			logrus.WithField("limiters", remaining).Debug("Rate limiters cleaned up")
		}); err != nil {
			return nil, err
		}
	}
	return &Scheduler{cron: c}, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logrus.Warn("Background jobs did not finish before shutdown")
	}
}

// RunReconcile performs one reconciliation run and logs its outcome
func RunReconcile(svc *ledger.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	report, err := svc.Reconcile(ctx)
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Reconciliation failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"checked":    report.CheckedUsers,    // Users compared
		"mismatches": len(report.Mismatches), // Users out of balance
	}).Debug("Scheduled reconciliation done")
}
