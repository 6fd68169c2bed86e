package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/roundoff/gymstats/internal/adapters/http/api"
	"github.com/roundoff/gymstats/internal/adapters/repository"
	"github.com/roundoff/gymstats/internal/adapters/usagym"
	app "github.com/roundoff/gymstats/internal/app"
	"github.com/roundoff/gymstats/internal/config"
	"github.com/roundoff/gymstats/internal/domain/normalize"
	"github.com/roundoff/gymstats/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to keep the scrape surface to
	// our own registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Postgres store, with schema applied at startup.
	store, err := repository.NewPostgres(ctx, cfg.DatabaseURL,
		repository.WithMaxConns(int32(cfg.DatabaseMaxConns)),
	)
	if err != nil {
		loggerInstance.Error(ctx, "failed to connect to database", logger.Error(err))
		return
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to apply schema", logger.Error(err))
		return
	}

	// Federation API client.
	fetcher := usagym.NewClient(cfg.UpstreamBaseURL,
		usagym.WithTimeout(time.Duration(cfg.UpstreamTimeoutMS)*time.Millisecond),
	)

	// Season start was validated during config load.
	seasonStart, _ := normalize.ParseDate(cfg.SeasonStart)

	svc := app.New(store, fetcher,
		app.WithLogger(loggerInstance),
		app.WithHomeClub(cfg.HomeClubID),
		app.WithSeasonStart(seasonStart),
		app.WithSearchLimit(cfg.SearchLimit),
	)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}
