package worker

// vencimiento_cron.go
// Background goroutine that periodically moves overdue credit sales from
// pendiente to vencida. Failures are logged and the next tick retries.

import (
	"context"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

const jobVencimientos = "vencimientos"

// MarcadorVencidos is implemented by the credit service.
type MarcadorVencidos interface {
	MarcarVencidos(ctx context.Context, now time.Time) (int, error)
}

// VencimientoCronConfig holds all dependencies for the overdue goroutine.
type VencimientoCronConfig struct {
	Fiados   MarcadorVencidos
	Metrics  *infra.Metrics
	Interval time.Duration
}

// StartVencimientoCron runs one pass immediately, then one per Interval,
// until ctx is cancelled.
func StartVencimientoCron(ctx context.Context, cfg VencimientoCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("vencimiento_cron: started")
		RunVencimientos(ctx, cfg, time.Now())
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("vencimiento_cron: shutting down")
				return
			case t := <-ticker.C:
				RunVencimientos(ctx, cfg, t)
			}
		}
	}()
}

// RunVencimientos executes a single pass and records its metrics.
func RunVencimientos(ctx context.Context, cfg VencimientoCronConfig, now time.Time) {
	start := time.Now()
	n, err := cfg.Fiados.MarcarVencidos(ctx, now)
	cfg.Metrics.ObserveJob(jobVencimientos, time.Since(start), err)
	if err != nil {
		log.Error().Err(err).Msg("vencimiento_cron: pass failed")
		return
	}
	if n > 0 {
		log.Info().Int("vencidas", n).Msg("vencimiento_cron: credit sales marked overdue")
	}
}
