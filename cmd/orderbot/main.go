package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"orderbot/bot"
	"orderbot/core/bootstrap"
	coreconfig "orderbot/core/config"
	"orderbot/core/logger"
	tg "orderbot/core/telegram"
	"orderbot/order"
	"orderbot/order/dialog"
	"orderbot/storage"

	"log/slog"
)

func main() {
	if err := run(); err != nil {
		if logger.L != nil {
			logger.L.Error("fatal", slog.String("err", err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, "fatal:", err)
		}
		_ = logger.Shutdown()
		os.Exit(1)
	}
	_ = logger.Shutdown()
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := coreconfig.Load(configPath)
	if err != nil {
		return err
	}

	db, err := bootstrap.Run(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orderRepo := storage.NewOrderRepo(db)
	auditRepo := storage.NewAuditRepo(db)

	store := order.NewStore(orderRepo)
	if err := store.Hydrate(ctx); err != nil {
		return err
	}

	router := dialog.NewRouter(store, auditRepo)
	opts := bot.Build(bot.Options{
		Config: cfg,
		Dialog: router,
		Audit:  auditRepo,
	})
	opts.OnStart = func(ctx context.Context, rt tg.Runtime) error {
		logger.Info(ctx, "app", "app.ready",
			slog.String("mode", cfg.Telegram.RunMode),
		)
		return nil
	}

	return tg.Run(ctx, opts)
}
