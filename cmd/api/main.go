package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/velorie/teamhub-backend/api/routes"
	"github.com/velorie/teamhub-backend/internal/auth"
	"github.com/velorie/teamhub-backend/internal/ideas"
	"github.com/velorie/teamhub-backend/internal/notifications"
	"github.com/velorie/teamhub-backend/internal/orders"
	"github.com/velorie/teamhub-backend/internal/projects"
	"github.com/velorie/teamhub-backend/internal/push"
	"github.com/velorie/teamhub-backend/internal/subscriptions"
	"github.com/velorie/teamhub-backend/internal/tasks"
	"github.com/velorie/teamhub-backend/internal/users"
	"github.com/velorie/teamhub-backend/pkg/config"
	"github.com/velorie/teamhub-backend/pkg/db"
	"github.com/velorie/teamhub-backend/pkg/logger"
	"github.com/velorie/teamhub-backend/pkg/migrate"
	"github.com/velorie/teamhub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	usersRepo := users.NewRepository(gormDB)
	projectsRepo := projects.NewRepository(gormDB)
	tasksRepo := tasks.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	ideasRepo := ideas.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)
	subscriptionsRepo := subscriptions.NewRepository(gormDB)

	dispatcher, err := push.NewDispatcher(push.DispatcherParams{
		Logger:     logg,
		Repository: subscriptionsRepo,
		Config:     cfg.Push,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create push dispatcher", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewNotifier(notifications.NotifierParams{
		Logger:     logg,
		Repository: notificationsRepo,
		Dispatcher: dispatcher,
		Members:    projectsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Logger:   logg,
		DB:       dbClient,
		Repo:     usersRepo,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Logger: logg,
		Repo:   usersRepo,
		JWT:    cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	projectsService, err := projects.NewService(projects.ServiceParams{
		Logger:   logg,
		Repo:     projectsRepo,
		Users:    usersRepo,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create projects service", err)
		os.Exit(1)
	}

	tasksService, err := tasks.NewService(tasks.ServiceParams{
		Logger:   logg,
		Repo:     tasksRepo,
		Projects: projectsRepo,
		Users:    usersRepo,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tasks service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Logger:   logg,
		DB:       dbClient,
		Repo:     ordersRepo,
		Users:    usersRepo,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	ideasService, err := ideas.NewService(ideasRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ideas service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(subscriptionsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	if err := usersService.EnsureAdmin(context.Background(), cfg.Admin.Login, cfg.Admin.Password); err != nil {
		logg.Error(context.Background(), "failed to bootstrap admin account", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Auth:          authService,
			Users:         usersService,
			Projects:      projectsService,
			Tasks:         tasksService,
			Orders:        ordersService,
			Ideas:         ideasService,
			Notifications: notificationsService,
			Subscriptions: subscriptionsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
