package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"game-vip-service/internal/domain"
	"game-vip-service/internal/infra/metrics"
	"game-vip-service/internal/usecase"
)

// SweepWorker drives the expiry/reminder sweep on a fixed cadence. The
// cadence is a deployment parameter; the sweep algorithm itself is
// idempotent, so overlapping restarts or extra ticks are harmless.
type SweepWorker struct {
	interval time.Duration
	sweepUC  *usecase.SweepUseCase
	commands *usecase.CommandService
	log      *zerolog.Logger
}

func NewSweepWorker(interval time.Duration, sweepUC *usecase.SweepUseCase, commands *usecase.CommandService, logger *zerolog.Logger) *SweepWorker {
	l := logger.With().Str("component", "SweepWorker").Logger()
	return &SweepWorker{
		interval: interval,
		sweepUC:  sweepUC,
		commands: commands,
		log:      &l,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting sweep worker")
	// Run once on startup, then on every tick
	w.runSweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping sweep worker")
			return ctx.Err()
		case <-ticker.C:
			w.runSweep(ctx)
		}
	}
}

func (w *SweepWorker) runSweep(ctx context.Context) {
	start := time.Now()
	reminders, expired, err := w.sweepUC.Run()
	if err != nil {
		w.log.Error().Err(err).Msg("sweep failed")
		return
	}
	metrics.ObserveSweepDuration(time.Since(start))

	for _, r := range reminders {
		metrics.IncRemindersSent(windowLabel(r.WindowSeconds))
		w.log.Info().
			Str("player", r.PlayerID).
			Str("vip", r.VipID).
			Str("remaining", domain.FormatDuration(r.RemainingSeconds)).
			Str("window", windowLabel(r.WindowSeconds)).
			Msg("expiry reminder due")
	}

	for _, e := range expired {
		if e.Vip == nil {
			// already logged by the sweep; nothing to dispatch
			continue
		}
		if err := w.commands.RunExpireCommands(ctx, e.Vip, e.LastKnownName); err != nil {
			w.log.Error().Err(err).
				Str("player", e.PlayerID).
				Str("vip", e.VipID).
				Msg("expiry command chain failed")
		}
	}
	if len(expired) > 0 {
		metrics.IncVipsExpired(len(expired))
		w.log.Info().Int("count", len(expired)).Msg("entitlements expired")
	}

	if active, err := w.sweepUC.CountActive(); err == nil {
		metrics.SetVipsActive(active)
	}
}

func windowLabel(windowSeconds int64) string {
	switch {
	case windowSeconds <= 3600:
		return "1h"
	case windowSeconds <= 86400:
		return "1d"
	default:
		return "7d"
	}
}
