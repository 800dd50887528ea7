package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/notify"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/router"
	"github.com/yukikurage/project-management-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.LogLevel)

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	sender, closeSender := newSender(cfg, logger)
	defer closeSender()

	dispatcher := notify.NewDispatcher(sender, logger, cfg.NotifyTimeout, cfg.ServerURL)
	defer dispatcher.Close()

	svc := services.New(services.Deps{
		Store:         repository.NewStore(db),
		Notifier:      dispatcher,
		Log:           logger,
		SecretKey:     cfg.SecretKey,
		TokenLifetime: cfg.AuthTokenLifetime,
	})

	r := router.SetupRouter(cfg, logger, db, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shut down")
	}
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown LOG_LEVEL, using info")
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}

// newSender picks the notification transport from NOTIFIER.
func newSender(cfg *config.Config, logger *logrus.Logger) (notify.Sender, func()) {
	switch cfg.Notifier {
	case "smtp":
		logger.WithField("server", cfg.SMTPServer).Info("Notifications via SMTP")
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPServer,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
		}), func() {}
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis is not reachable; notifications will fail until it is")
		}
		logger.WithField("channel", cfg.RedisChannel).Info("Notifications via Redis pub/sub")
		return notify.NewRedisSender(client, cfg.RedisChannel), func() {
			if err := client.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close Redis client")
			}
		}
	default:
		logger.Info("Email sending disabled; notifications are logged")
		return notify.NewLogSender(logger), func() {}
	}
}
