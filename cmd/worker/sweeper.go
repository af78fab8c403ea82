package main

import (
	"context"
	"time"

	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/metrics"
)

const (
	expiryJobName   = "subscription_expiry"
	reminderJobName = "subscription_reminder"
)

type subscriptionSweep interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
	RemindUpcoming(ctx context.Context, now time.Time) (int, error)
}

// expirySweeper downgrades lapsed subscriptions and queues renewal
// reminders on a fixed interval. A sweep failure is logged and retried on
// the next tick instead of stopping the worker.
type expirySweeper struct {
	subscriptions subscriptionSweep
	interval      time.Duration
	jobs          *metrics.JobMetrics
	logg          *logger.Logger
}

func newExpirySweeper(subscriptions subscriptionSweep, interval time.Duration, jobs *metrics.JobMetrics, logg *logger.Logger) *expirySweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &expirySweeper{
		subscriptions: subscriptions,
		interval:      interval,
		jobs:          jobs,
		logg:          logg,
	}
}

// Run sweeps once at startup so restarts do not delay overdue
// downgrades, then keeps sweeping until the context is canceled.
func (s *expirySweeper) Run(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *expirySweeper) sweep(ctx context.Context) {
	s.expire(ctx)
	s.remind(ctx)
}

func (s *expirySweeper) expire(ctx context.Context) {
	start := time.Now()
	expired, err := s.subscriptions.ExpireDue(ctx, start)
	s.jobs.ObserveDuration(expiryJobName, time.Since(start))
	if err != nil {
		s.jobs.IncFailure(expiryJobName)
		if s.logg != nil {
			s.logg.Error(ctx, "subscription expiry sweep failed", err)
		}
		return
	}

	s.jobs.IncSuccess(expiryJobName)
	if expired > 0 && s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "expired", expired), "subscriptions downgraded to basic")
	}
}

func (s *expirySweeper) remind(ctx context.Context) {
	start := time.Now()
	reminded, err := s.subscriptions.RemindUpcoming(ctx, start)
	s.jobs.ObserveDuration(reminderJobName, time.Since(start))
	if err != nil {
		s.jobs.IncFailure(reminderJobName)
		if s.logg != nil {
			s.logg.Error(ctx, "subscription reminder sweep failed", err)
		}
		return
	}

	s.jobs.IncSuccess(reminderJobName)
	if reminded > 0 && s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "reminded", reminded), "renewal reminders queued")
	}
}
