/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 18:40:19
 * @FilePath: \health-companion-app\cmd\agent\main.go
 * @LastEditTime: 2025-10-19 18:40:24
 */
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"health-companion-app/internal/app"
	"health-companion-app/internal/bootstrap"
	appLogger "health-companion-app/internal/infra/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resources, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := resources.Close(); err != nil {
			log.Printf("resource cleanup error: %v", err)
		}
	}()
	defer appLogger.Sync()

	logger := appLogger.S()

	application, err := bootstrap.BuildApplication(ctx, logger, resources)
	if err != nil {
		logger.Fatalw("build application failed", "error", err)
	}

	go application.Scheduler.Run(ctx)
	go application.Monitor.Run(ctx)

	srv := &http.Server{
		Addr:              "127.0.0.1:" + resources.Flags.AgentPort,
		Handler:           application.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infow("agent listening", "addr", srv.Addr, "mode", resources.Flags.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("http server shutdown error", "error", err)
	}
}
