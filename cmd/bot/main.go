package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"telegram-dialog-state/internal/config"
	"telegram-dialog-state/internal/domain/ports/repository"
	"telegram-dialog-state/internal/infra/api"
	pg "telegram-dialog-state/internal/infra/db/postgres"
	"telegram-dialog-state/internal/infra/logging"
	red "telegram-dialog-state/internal/infra/redis"
	"telegram-dialog-state/internal/infra/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Dialog storage ----
	var storage repository.DialogStorage
	switch cfg.Storage.Backend {
	case "redis":
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer client.Close()
		storage = red.NewDialogStorage(client, cfg.Storage.KeyPrefix, cfg.Storage.TTL)
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		pgStorage := pg.NewDialogStorage(pool)
		if err := pgStorage.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("postgres schema")
		}
		storage = pgStorage
	}

	// ---- Bot ----
	bot, err := telegram.NewSurveyBot(cfg.Bot.Token, storage, logger, cfg.Bot.Workers)
	if err != nil {
		logger.Fatal().Err(err).Msg("bot")
	}

	// ---- Ops server ----
	if cfg.Admin.Port > 0 {
		ops := api.NewServer(cfg.Admin.Port, logger)
		go func() {
			if err := ops.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("ops server")
			}
		}()
	}

	if err := bot.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
	logger.Info().Msg("shutdown complete")
}
