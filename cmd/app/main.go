// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"

	"invoice-qa-review/internal/bootstrap"
	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/infra/logging"
	"invoice-qa-review/internal/infra/metrics"
	"invoice-qa-review/internal/infra/telegram"
	"invoice-qa-review/internal/infra/web"
)

var version = "dev"

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted secrets)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closer, err := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo("app", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap")
	}

	g, gctx := errgroup.WithContext(ctx)

	// ---- Web UI + JSON API ----
	srv := web.NewServer(svc.Facade, svc.DefaultMode, cfg.HTTP.RequestTimeout, logger)
	g.Go(func() error {
		return srv.Run(gctx, fmt.Sprintf(":%d", cfg.HTTP.Port))
	})

	// ---- Telegram ----
	if cfg.Bot.Enabled {
		bot, err := telegram.NewReviewBot(&cfg.Bot, svc.Facade, svc.DefaultMode, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		g.Go(func() error { return bot.StartPolling(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("service stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}
