package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velorie/teamhub-backend/internal/cron"
	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/internal/orders"
	"github.com/velorie/teamhub-backend/internal/projects"
	"github.com/velorie/teamhub-backend/internal/push"
	"github.com/velorie/teamhub-backend/internal/subscriptions"
	"github.com/velorie/teamhub-backend/internal/users"
	"github.com/velorie/teamhub-backend/pkg/config"
	"github.com/velorie/teamhub-backend/pkg/db"
	"github.com/velorie/teamhub-backend/pkg/logger"
	"github.com/velorie/teamhub-backend/pkg/metrics"
	"github.com/velorie/teamhub-backend/pkg/migrate"
	"github.com/velorie/teamhub-backend/pkg/redis"
)

const lockKeyFormat = "teamhub:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	ordersRepo := orders.NewRepository(gormDB)
	usersRepo := users.NewRepository(gormDB)

	dispatcher, err := push.NewDispatcher(push.DispatcherParams{
		Logger:     logg,
		Repository: subscriptions.NewRepository(gormDB),
		Config:     cfg.Push,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create push dispatcher", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewNotifier(notifications.NotifierParams{
		Logger:     logg,
		Repository: notifications.NewRepository(gormDB),
		Dispatcher: dispatcher,
		Members:    projects.NewRepository(gormDB),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	deadlineJob, err := cron.NewDeadlineJob(cron.DeadlineJobParams{
		Logger:   logg,
		DB:       dbClient,
		Orders:   ordersRepo,
		Users:    usersRepo,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create deadline job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(deadlineJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
