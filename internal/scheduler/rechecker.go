package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netprobe/internal/domain"
	"github.com/hamed0406/netprobe/internal/repo"
)

// StatusChecker is satisfied by *health.Monitor.
type StatusChecker interface {
	Check(ctx context.Context) domain.HealthStatus
}

// Rechecker runs the monitor on a fixed interval and records every
// service row it produces.
type Rechecker struct {
	Logger   *zap.Logger
	Monitor  StatusChecker
	Results  repo.HealthStore
	Interval time.Duration
}

func NewRechecker(
	logger *zap.Logger,
	monitor StatusChecker,
	rs repo.HealthStore,
	interval time.Duration,
) *Rechecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < 0 {
		interval = 0
	}
	return &Rechecker{
		Logger:   logger,
		Monitor:  monitor,
		Results:  rs,
		Interval: interval,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	st := r.Monitor.Check(ctx)
	for i := range st.Services {
		s := st.Services[i]
		if err := r.Results.Append(ctx, &s); err != nil {
			r.Logger.Warn("rechecker_append_error",
				zap.String("service", s.Name),
				zap.String("host", s.Host),
				zap.Error(err),
			)
			continue
		}
		fields := []zap.Field{
			zap.String("service", s.Name),
			zap.String("host", s.Host),
			zap.String("status", string(s.Status)),
			zap.String("message", s.Message),
		}
		if s.LatencyMS != nil {
			fields = append(fields, zap.Int64("latency_ms", *s.LatencyMS))
		}
		r.Logger.Debug("rechecker_checked", fields...)
	}
}
