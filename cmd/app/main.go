package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"game-vip-service/internal/config"
	"game-vip-service/internal/domain/ports/adapter"
	"game-vip-service/internal/infra/dispatch"
	"game-vip-service/internal/infra/logging"
	"game-vip-service/internal/infra/metrics"
	red "game-vip-service/internal/infra/redis"
	"game-vip-service/internal/infra/sched"
	"game-vip-service/internal/infra/security"
	"game-vip-service/internal/infra/storage"
	"game-vip-service/internal/infra/web"
	"game-vip-service/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop dispatch)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	catalog, err := config.LoadCatalog(cfg.Catalog)
	if err != nil {
		logger.Fatal().Err(err).Msg("catalog")
	}
	logger.Info().Int("vips", len(catalog.All())).Msg("catalog loaded")

	// ---- Stores ----
	players := storage.NewPlayerStateStore(cfg.Storage.DataDir, logger)
	vouchers := storage.NewVoucherStore(cfg.Storage.DataDir, logger)
	history := storage.NewHistoryStore(cfg.Storage.DataDir, logger)

	// ---- Redis (optional) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer client.Close()
		limiter = red.NewRateLimiter(client)
		logger.Info().Str("addr", cfg.Redis.URL).Msg("redeem rate limiting enabled")
	}

	// ---- Dispatch ----
	var dispatcher adapter.CommandDispatcher
	if cfg.Runtime.Dev || cfg.Dispatch.Mode == "noop" {
		dispatcher = dispatch.NewNoopDispatcher(logger)
	} else {
		dispatcher = dispatch.NewExecDispatcher(cfg.Dispatch.Shell, cfg.Dispatch.Prefix, logger)
	}

	// ---- Use cases ----
	signer := security.NewVoucherSigner(cfg.Security.HMACSecret)
	entitlementUC := usecase.NewEntitlementUseCase(catalog, players, history, logger)
	voucherUC := usecase.NewVoucherUseCase(catalog, vouchers, signer, entitlementUC, logger)
	sweepUC := usecase.NewSweepUseCase(catalog, players, history, logger)
	commandSvc := usecase.NewCommandService(dispatcher, logger)

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Sweep worker ----
	worker := sched.NewSweepWorker(cfg.Sweep.Interval, sweepUC, commandSvc, logger)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("sweep worker stopped")
		}
	}()

	// ---- Admin HTTP API ----
	auth := web.NewAuthManager(cfg.Security.HMACSecret, cfg.Admin.Password, !cfg.Runtime.Dev, cfg.Admin.JWTTTL)
	srv := web.NewServer(voucherUC, entitlementUC, commandSvc, catalog, auth, limiter, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("bye")
}
