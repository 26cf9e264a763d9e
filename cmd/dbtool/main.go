package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"trip-planner-service/internal/adapters/repositories"
	"trip-planner-service/internal/platform/config"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/platform/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// dbtool initializes the schema and seeds the geocode cache with known places.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (using environment variables)")
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	if err := run(ctx, pool, cfg.SeedPath, logger); err != nil {
		logger.WithError(err).Error("dbtool failed")
		pool.Close()
		os.Exit(1)
	}
}

// run insists on a readable seed file; the server treats a missing one as optional.
func run(ctx context.Context, q db.Querier, seedPath string, logger logrus.FieldLogger) error {
	if strings.TrimSpace(seedPath) == "" {
		return errors.New("dbtool: SEED_PATH is empty")
	}
	if _, err := os.Stat(seedPath); err != nil {
		return fmt.Errorf("dbtool: seed file: %w", err)
	}

	return repositories.InitAndSeed(ctx, q, seedPath, logger)
}
