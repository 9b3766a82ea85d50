// Сервис отправки писем: потребляет события портала из RabbitMQ
// и рассылает их пользователям через SMTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kunalverma25/wifi-portal/internal/config"
	"github.com/kunalverma25/wifi-portal/internal/lib/sl"
	smtptransport "github.com/kunalverma25/wifi-portal/internal/lib/smtp"
	"github.com/kunalverma25/wifi-portal/internal/rabbitmq"
	"github.com/kunalverma25/wifi-portal/internal/services/sender"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to connect to RabbitMQ", slog.String("URL", cfg.RabbitMQURL))
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Queues)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("success to setup RabbitMQ channel")
	defer func() {
		_ = ch.Close()
	}()

	transport := smtptransport.NewTransport(cfg, logger)
	senderService := sender.New(transport, logger)

	consumers := map[string]func([]byte) error{
		"notification.payment": senderService.SendPaymentDecision,
		"notification.account": senderService.SendAccountStatus,
		"notification.otp":     senderService.SendOTP,
		"notification.expiry":  senderService.SendExpiryReminder,
	}
	for queue, handler := range consumers {
		if err := rabbitmq.ConsumerMessage(ctx, ch, queue, handler); err != nil {
			logger.Error("failed to start consumer", slog.String("queue", queue), sl.Err(err))
			os.Exit(1)
		}
		logger.Info("consumer started", slog.String("queue", queue))
	}

	<-ctx.Done()
	logger.Info("notification-sender shutting down gracefully")
}
