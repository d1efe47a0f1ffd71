package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/velorie/teamhub-backend/pkg/config"
	"github.com/velorie/teamhub-backend/pkg/db"
	"github.com/velorie/teamhub-backend/pkg/logger"
	"github.com/velorie/teamhub-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	ctx := context.Background()

	dir := flag.String("dir", migrate.DefaultDir, "directory with migration files")
	flag.Parse()

	command := "up"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		logg.Error(ctx, "failed to extract sql.DB", err)
		os.Exit(1)
	}

	var extra []string
	if args := flag.Args(); len(args) > 1 {
		extra = args[1:]
	}

	if err := migrate.Run(ctx, sqlDB, cfg.DB.Driver, *dir, command, extra...); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "command", command), "migration complete")
}
