package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/notification"
)

const consumerGroup = "email-notifier"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "notifier").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Info().
		Strs("kafka_brokers", cfg.Brokers()).
		Str("kafka_topic", cfg.KafkaTopic).
		Str("group", consumerGroup).
		Str("smtp", cfg.SMTPHost+":"+cfg.SMTPPort).
		Msg("starting notifier")

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, cfg.OperatorEmail, logger)

	consumer := kafka.NewConsumer(cfg.Brokers(), cfg.KafkaTopic, consumerGroup, logger)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info().Msg("consuming events")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil {
			if ctx.Err() == nil {
				logger.Error().Err(err).Msg("consumer error")
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	cancel()
}
