package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-karriere-scraper/internal/api"
	"go-karriere-scraper/internal/app"
	"go-karriere-scraper/internal/config"
	"go-karriere-scraper/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Failed to init crawler", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("⚠️ Failed to shut down browser", zap.Error(err))
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(a.Crawler, cfg.PageLimitDefault, logger)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           api.NewRouter(handler, cfg.APIToken, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("🚀 Server listening", zap.Int("port", cfg.Port), zap.String("engine", cfg.RenderEngine))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("⚠️ Graceful shutdown failed", zap.Error(err))
	}
}
