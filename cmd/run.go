package cmd

import (
	"context"
	"fmt"
	"time"

	"billybot/api"
	"billybot/application"
	"billybot/config"
	"billybot/database"
	"billybot/domain/events"
	"billybot/domain/games"
	"billybot/notifier"
	"billybot/repository"
	"billybot/scheduler"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting billybot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	discordNotifier, err := notifier.New(cfg.AnnouncementWebhookID, cfg.AnnouncementWebhookToken)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	eventBus := events.NewBus()
	discordNotifier.RegisterHandlers(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	app := application.New(uowFactory, games.NewRand())

	sched, err := scheduler.New(app, cfg.LotteryDrawCron, cfg.GuildIDs)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	sched.Start()

	server := api.NewServer(app)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(cfg.ListenAddr)
	}()

	log.WithField("environment", cfg.Environment).Info("billybot is running")

	select {
	case err := <-serverErr:
		sched.Stop()
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}

	log.Info("Shutdown completed")
	return nil
}
