package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/parkspot/parkspot-api/internal/config"
	"github.com/parkspot/parkspot-api/internal/domain/notification"
	"github.com/parkspot/parkspot-api/internal/domain/user"
	"github.com/parkspot/parkspot-api/internal/pkg/database"
	"github.com/parkspot/parkspot-api/internal/pkg/events"
	"github.com/parkspot/parkspot-api/internal/pkg/firebase"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/push"
)

func main() {
	cfg := config.Load()
	logger.Setup(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, Service: "parkspot-notifier"})

	log.Info().Str("queue", cfg.EventsQueue).Msg("Starting notifier")

	if cfg.RabbitMQURL == "" {
		log.Fatal().Msg("RABBITMQ_URL is required for the notifier")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := newSender(ctx, cfg)
	users := user.NewService(user.NewRepository(db))
	consumer := events.NewConsumer(cfg.RabbitMQURL, cfg.EventsQueue, notification.NewService(users, sender))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Consumer stopped with error")
	}
	log.Info().Msg("notifier stopped")
}

// newSender uses FCM when credentials are configured and logs pushes otherwise.
func newSender(ctx context.Context, cfg *config.Config) push.Sender {
	app, err := firebase.New(ctx, cfg.FirebaseCredentialsFile)
	if err != nil {
		if errors.Is(err, firebase.ErrNotConfigured) {
			log.Warn().Msg("FIREBASE_CREDENTIALS_FILE not set, pushes are only logged")
			return push.LogSender{}
		}
		log.Fatal().Err(err).Msg("Failed to initialise Firebase")
	}
	return push.NewFCMSender(app.Messaging)
}
