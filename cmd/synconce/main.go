/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 19:05:41
 * @FilePath: \health-companion-app\cmd\synconce\main.go
 * @LastEditTime: 2025-10-19 19:05:46
 */

// synconce 执行一次性同步后退出，用于 cron 或手工排查。
// 退出码 0 表示本次同步成功提交到远端。
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"health-companion-app/internal/app"
	"health-companion-app/internal/bootstrap"
	"health-companion-app/internal/domain/health"
	appLogger "health-companion-app/internal/infra/logger"
)

func main() {
	dateFlag := flag.String("date", "today", "target day: today, yesterday or 2006-01-02")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	day, ok := resolveDate(*dateFlag)
	if !ok {
		log.Fatalf("invalid -date %q, expected today, yesterday or 2006-01-02", *dateFlag)
	}

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

	if !application.Scheduler.SyncDate(ctx, day) {
		logger.Warnw("one-shot sync failed", "date", health.FormatDate(day))
		os.Exit(1)
	}
	logger.Infow("one-shot sync completed", "date", health.FormatDate(day))
}

func resolveDate(raw string) (time.Time, bool) {
	switch raw {
	case "", "today":
		return time.Now(), true
	case "yesterday":
		return time.Now().AddDate(0, 0, -1), true
	default:
		day, err := time.ParseInLocation(health.DateLayout, raw, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return day, true
	}
}
