/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 17:10:23
 * @FilePath: \health-companion-app\internal\app\app.go
 * @LastEditTime: 2025-10-19 17:10:28
 */
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"health-companion-app/internal/config"
	syncdomain "health-companion-app/internal/domain/sync"
	appLogger "health-companion-app/internal/infra/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Resources 汇总代理进程的共享资源：运行时配置与本地 SQLite 连接。
type Resources struct {
	Flags config.RuntimeFlags
	DB    *gorm.DB
}

// Bootstrap 加载环境、初始化日志与本地数据库，并完成表结构迁移。
func Bootstrap(ctx context.Context) (*Resources, error) {
	config.LoadEnvFiles()

	if _, err := appLogger.Init(); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	flags := config.LoadRuntimeFlags()

	if dir := filepath.Dir(flags.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(flags.DBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", flags.DBPath, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&syncdomain.State{}, &syncdomain.Run{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Resources{
		Flags: flags,
		DB:    db,
	}, nil
}

// Close 释放底层数据库连接。
func (r *Resources) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DBConn 返回共享的 Gorm 连接。
func (r *Resources) DBConn() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.DB
}

// WithShutdown 执行 fn 并在退出时调用 cancel，错误直接终止进程。
func WithShutdown(ctx context.Context, cancel func(), fn func(context.Context) error) {
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
