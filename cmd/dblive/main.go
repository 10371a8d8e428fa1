package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dblive/internal/config"
	"dblive/internal/geocode"
	"dblive/internal/iris"
	"dblive/internal/poller"
	"dblive/internal/route"
	"dblive/internal/server"
	"dblive/internal/storage"
)

func main() {
	// .env is optional; deployments usually set the environment directly.
	godotenv.Load()

	cfg := config.Load()

	// CLI flags override the environment
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// Context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tz := iris.Timezone()

	db, err := storage.Open(cfg.DBPath, tz, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.APIClientID == "" || cfg.APIKey == "" {
		logger.Warn("DB_CLIENT_ID / DB_API_KEY not set, timetable requests will be rejected upstream")
	}

	client := iris.NewClient(iris.DefaultBaseURL, cfg.APIClientID, cfg.APIKey, logger)
	resolver := iris.NewResolver(client, db, logger)

	routes, parseErrs := route.ParseList(cfg.PollingRoutes)
	for _, err := range parseErrs {
		logger.Warn("skipping configured route", "error", err)
	}

	interval := time.Duration(cfg.PollingInterval) * time.Second
	if cfg.PollingInterval <= 0 {
		logger.Warn("invalid polling interval, using default",
			"configured", cfg.PollingInterval, "default_seconds", 3600)
		interval = time.Hour
	}
	window := time.Duration(cfg.WindowHours * float64(time.Hour))
	if cfg.WindowHours <= 0 {
		window = time.Hour
	}

	runner := poller.NewRunner(resolver, client, db, window, logger)
	sched := poller.NewScheduler(runner, routes, interval, cfg.PollingEnabled, logger)

	switch {
	case !cfg.PollingEnabled:
		logger.Info("background polling disabled")
	case len(routes) == 0:
		logger.Warn("background polling enabled but no usable routes configured")
	default:
		go sched.Start(ctx)
	}

	geo := geocode.New("dblive/1.0 (train delay tracker)")
	srv := server.New(cfg, db, sched, geo, tz, logger)

	// Graceful shutdown on SIGINT/SIGTERM: stop scheduling new poll
	// cycles, let an in-flight cycle finish, then drain the server.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		sched.Stop()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		cancel()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
