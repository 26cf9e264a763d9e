package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trip-planner-service/internal/platform/config"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/platform/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

// main is the application composition root.
func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(context.Context, config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: connectPostgres,
		connectRedis:    connectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (using environment variables)")
	}

	cfg := deps.loadConfig()

	pg, err := deps.connectPostgres(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Error("postgres connection failed")
		return
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, signals, nil); err != nil {
		logrus.WithError(err).Error("server exited with error")
	}
}

// connectPostgres returns a nil pool when no database is configured.
func connectPostgres(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	return db.Open(ctx, cfg.DatabaseURL)
}

func connectRedis(cfg config.Config) *redis.Client {
	return db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
}

type ListenFunc func(srv *http.Server) error

var defaultListen ListenFunc = func(srv *http.Server) error {
	return srv.ListenAndServe()
}

var shutdownFn = func(srv *http.Server, ctx context.Context) error {
	return srv.Shutdown(ctx)
}

// Run wires the application, serves HTTP, and waits for a termination signal.
// pg and rdb are optional and are closed on return.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, signals <-chan os.Signal, listen ListenFunc) error {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logrus.SetFormatter(logger.Formatter)
	logrus.SetLevel(logger.GetLevel())

	defer func() {
		if pg != nil {
			pg.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	var q db.Querier
	if pg != nil {
		q = pg
	}
	var cmd redis.Cmdable
	if rdb != nil {
		cmd = rdb
	}

	a, err := newApp(ctx, cfg, q, cmd, logger)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer a.close()

	// Timeouts are tuned for cold-cache planning (geocoder pacing plus routing).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv)
	}()
	logger.WithField("addr", srv.Addr).Info("server listening")

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run: listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("run: shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
