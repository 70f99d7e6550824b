package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/crickarena/fantasy-cricket/internal/app"
	"github.com/crickarena/fantasy-cricket/internal/config"
	"github.com/crickarena/fantasy-cricket/internal/observability"
	"github.com/crickarena/fantasy-cricket/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logger, shutdownBetterStack, err := observability.InitBetterStackLogger(cfg, logger)
	if err != nil {
		logger.Error("init betterstack logger", "error", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	slogLogger := logger.Slog()

	stopPyroscope, err := observability.InitPyroscope(cfg, slogLogger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, slogLogger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := app.NewHTTPServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := cleanup(shutdownCtx); err != nil {
		logger.Error("close app resources", "error", err)
	}
	if err := observability.StopPprofServer(pprofSrv, slogLogger, 5*time.Second); err != nil {
		logger.Error("stop pprof server", "error", err)
	}
	if stopPyroscope != nil {
		if err := stopPyroscope(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}
	if shutdownUptrace != nil {
		if err := shutdownUptrace(shutdownCtx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}
	if shutdownBetterStack != nil {
		if err := shutdownBetterStack(shutdownCtx); err != nil {
			logger.Error("shutdown betterstack logger", "error", err)
		}
	}

	logger.Info("http server stopped")
}
