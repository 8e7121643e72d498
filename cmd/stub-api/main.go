package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"eventhub/internal/stubapi"
	"eventhub/pkg/config"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config.LoadEnv()
	cfg := config.Load()

	server := stubapi.NewServer(stubapi.NewStore(), cfg.JWTSecret, logger)
	router := server.NewRouter()

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.StubPort,
		Handler: router,
	}

	go func() {
		logger.Info("stub-api listening", zap.String("port", cfg.StubPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
