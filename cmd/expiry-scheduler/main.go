// Сервис периодических задач: напоминает о скором окончании подписки
// и деактивирует просроченные аккаунты.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kunalverma25/wifi-portal/internal/config"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	"github.com/kunalverma25/wifi-portal/internal/rabbitmq"
	"github.com/kunalverma25/wifi-portal/internal/services/scheduler"
	"github.com/kunalverma25/wifi-portal/internal/storage/repository"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting expiry-scheduler", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Queues)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = ch.Close()
	}()
	publisher := rabbitmq.NewPublisher(ch)

	service := scheduler.New(db, db, db, publisher, logger)
	service.Run(ctx, cfg.ExpiryCheckInterval)

	logger.Info("expiry-scheduler stopped gracefully")
}
