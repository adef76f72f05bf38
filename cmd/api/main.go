package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	apivaluation "fcf_valuation/pkg/api/valuation"
	"fcf_valuation/pkg/app"
	"fcf_valuation/pkg/core/config"
	"fcf_valuation/pkg/core/logging"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build market data stack")
	}
	defer stack.Close()

	handler, err := apivaluation.New(apivaluation.Config{
		Service:  stack.Service,
		Defaults: cfg.Defaults,
		Source:   stack.Source,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build API")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("source", stack.Source).
		Msg("API server starting")
	logger.Info().Msg("  - GET    /api/health")
	logger.Info().Msg("  - GET    /api/config")
	logger.Info().Msg("  - POST   /api/valuation")
	logger.Info().Msg("  - POST   /api/valuation/batch")
	logger.Info().Msg("  - DELETE /api/cache/{ticker}")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
