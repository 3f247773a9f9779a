package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/PhucDaizz/parkledger/internal/config"
	"github.com/PhucDaizz/parkledger/internal/domain/ledger"
	"github.com/PhucDaizz/parkledger/internal/domain/query"
	"github.com/PhucDaizz/parkledger/internal/domain/workflow"
	"github.com/PhucDaizz/parkledger/internal/event"
	"github.com/PhucDaizz/parkledger/internal/imagestore"
	"github.com/PhucDaizz/parkledger/internal/metrics"
	"github.com/PhucDaizz/parkledger/internal/recognizer"
	"github.com/PhucDaizz/parkledger/internal/sqlite"
	"github.com/PhucDaizz/parkledger/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		logger.Error("failed to prepare schema", "error", err)
		os.Exit(1)
	}

	images, err := imagestore.New(cfg.Images.Dir)
	if err != nil {
		logger.Error("failed to prepare image directory", "error", err)
		os.Exit(1)
	}

	sessionRepo := sqlite.NewSessionRepository(db)

	ledgerSvc := ledger.NewService(sessionRepo, images, logger, cfg.DB.OpTimeout)
	querySvc := query.NewService(sessionRepo, logger, cfg.DB.OpTimeout)
	confirmSvc := workflow.NewService(ledgerSvc, images, event.NewLogSink(logger), logger)

	rec := recognizer.New(cfg.Recognizer.URL, cfg.Recognizer.Timeout)

	m := metrics.New()
	m.RegisterVehiclesInside(func() float64 {
		count, err := querySvc.Occupancy(context.Background())
		if err != nil {
			logger.Warn("occupancy scrape failed", "error", err)
			return 0
		}
		return float64(count)
	})

	router := transport.NewServer(confirmSvc, querySvc, ledgerSvc, rec, m, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
