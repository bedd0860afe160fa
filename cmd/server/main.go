package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/carrito"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/config"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/middleware"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/router"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev: pretty, prod: JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MigrationsAutorun {
		if err := infra.RunMigrations(ctx, db, "up"); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Redis is optional: without it carts live in memory, change events stay
	// in-process and receipt emails are not queued.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without it")
			rdb = nil
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infra.NewMetrics(reg)

	hub := realtime.NewHub()
	var publisher realtime.Publisher = hub
	var carritos carrito.Store = carrito.NewMemoryStore()
	if rdb != nil {
		bridge := realtime.NewRedisBridge(rdb, hub)
		publisher = bridge
		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Error().Err(err).Msg("realtime: redis bridge stopped")
			}
		}()
		carritos = carrito.NewRedisStore(rdb, cfg.CarritoTTL())
	}

	mailer := infra.NewMailer(cfg, nil)
	dispatcher := worker.NewDispatcher(rdb)

	rateLimit := middleware.NewRateLimiter(1000, time.Minute, "Demasiadas solicitudes. Intente más tarde.")
	loginLimit := middleware.NewLoginRateLimiter()
	go rateLimit.RunPurge(ctx, 5*time.Minute)
	go loginLimit.RunPurge(ctx, 5*time.Minute)

	deps := router.Deps{
		DB:         db,
		Redis:      rdb,
		Hub:        hub,
		Publisher:  publisher,
		Carritos:   carritos,
		Recibos:    dispatcher,
		Mailer:     mailer,
		Metrics:    metrics,
		Gatherer:   reg,
		Location:   loc,
		RateLimit:  rateLimit,
		LoginLimit: loginLimit,
	}
	svcs := router.NewServices(cfg, deps)

	// Background work is wired here (composition root) so the pool and the
	// cron see the same services as the HTTP layer.
	var pool *worker.Pool
	if rdb != nil {
		pool = worker.NewPool(rdb)
		pool.Handle(worker.JobReciboPago, worker.NewEmailWorker(mailer, cfg.NombreNegocio, cfg.PDFStoragePath).Process)
		pool.Start(ctx, cfg.WorkerPoolSize)
	}
	worker.StartVencimientoCron(ctx, worker.VencimientoCronConfig{
		Fiados:   svcs.Fiados,
		Metrics:  metrics,
		Interval: cfg.VencimientoInterval(),
	})

	r := router.New(cfg, deps, svcs)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /v1/cambios keeps WebSocket connections open.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("ventas backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
