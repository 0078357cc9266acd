package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netprobe/internal/domain"
	"github.com/hamed0406/netprobe/internal/notify"
	"github.com/hamed0406/netprobe/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

type Alerter struct {
	results  repo.HealthStore
	alertDB  repo.AlertStore
	notifier notify.Notifier
	cfg      AlerterConfig
	logger   *zap.Logger
}

func NewAlerter(
	results repo.HealthStore,
	alertDB repo.AlertStore,
	notifier notify.Notifier,
	cfg AlerterConfig,
	logger *zap.Logger,
) *Alerter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Alerter{
		results:  results,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	a.scanLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			a.scanLogged(ctx)
		}
	}
}

func (a *Alerter) scanLogged(ctx context.Context) {
	if err := a.scanOnce(ctx); err != nil {
		a.logger.Warn("alerter_scan_error", zap.Error(err))
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	rows, err := a.results.Latest(ctx)
	if err != nil {
		return fmt.Errorf("latest: %w", err)
	}

	now := time.Now()

	for _, r := range rows {
		up := r.Status.Up()
		rec, err := a.alertDB.Get(ctx, r.Name)
		if err != nil {
			// Unknown prior state: skip rather than alert past the cooldown.
			a.logger.Warn("alerter_get_error", zap.String("service", r.Name), zap.Error(err))
			continue
		}

		// Has the up/down state changed compared to what we last recorded?
		stateChanged := rec == nil || rec.LastState != up

		// Cooldown only matters for DOWN alerts (suppresses noisy repeats).
		cooled := true
		if rec != nil && rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		downAlert := stateChanged && !up && cooled
		recoveryAlert := stateChanged && up && rec != nil && a.cfg.AlertOnRecovery // bypass cooldown

		if downAlert || recoveryAlert {
			if err := a.notifier.Send(ctx, alertFor(r)); err != nil {
				a.logger.Warn("alert_send_error", zap.String("service", r.Name), zap.Error(err))
			} else {
				a.logger.Info("alert_sent", zap.String("service", r.Name), zap.Bool("up", up))
			}
			a.setState(ctx, r.Name, up, now)
			continue
		}

		// If state changed but we did not send (e.g., DOWN within cooldown or
		// recovery alerts disabled), still record the new state without a send time.
		if stateChanged {
			var keep time.Time
			if rec != nil && rec.LastSentAt != nil {
				keep = *rec.LastSentAt
			}
			a.setState(ctx, r.Name, up, keep)
		}
	}

	return nil
}

func (a *Alerter) setState(ctx context.Context, service string, up bool, sentAt time.Time) {
	if err := a.alertDB.Set(ctx, service, up, sentAt); err != nil {
		a.logger.Warn("alerter_set_error", zap.String("service", service), zap.Error(err))
	}
}

func alertFor(r domain.ServiceHealth) notify.Alert {
	title := "🔴 Service DOWN"
	if r.Status.Up() {
		title = "🟢 Service RECOVERED"
	}

	latencyTxt := "n/a"
	if r.LatencyMS != nil {
		latencyTxt = fmt.Sprintf("%d ms", *r.LatencyMS)
	}

	text := fmt.Sprintf(
		"Service: %s\nHost: %s\nStatus: %s\nLatency: %s\nReason: %s\nChecked: %s",
		r.Name, r.Host, r.Status, latencyTxt, r.Message, r.LastChecked.Format(time.RFC3339),
	)

	return notify.Alert{
		Title:     title,
		Text:      text,
		Service:   r.Name,
		Host:      r.Host,
		Status:    string(r.Status),
		Message:   r.Message,
		CheckedAt: r.LastChecked,
	}
}
