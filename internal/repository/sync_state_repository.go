/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-16 15:27:40
 * @FilePath: \health-companion-app\internal\repository\sync_state_repository.go
 * @LastEditTime: 2025-10-16 15:27:45
 */
package repository

import (
	"context"
	"errors"
	"time"

	syncdomain "health-companion-app/internal/domain/sync"

	"gorm.io/gorm"
)

// SyncStateRepository 封装同步状态与同步历史的数据访问方法，基于 GORM 实现。
type SyncStateRepository struct {
	db *gorm.DB
}

// NewSyncStateRepository 创建仓储实例，接收共享的 *gorm.DB。
func NewSyncStateRepository(db *gorm.DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

// LoadOrSeed 读取单例同步状态行，不存在时以 seed 初始化并落库。
func (r *SyncStateRepository) LoadOrSeed(ctx context.Context, seed syncdomain.State) (*syncdomain.State, error) {
	var state syncdomain.State
	err := r.db.WithContext(ctx).Order("id asc").First(&state).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(&seed).Error; err != nil {
		return nil, err
	}
	return &seed, nil
}

// Save 整体保存同步状态（设置流程修改连接字段后调用）。
func (r *SyncStateRepository) Save(ctx context.Context, state *syncdomain.State) error {
	return r.db.WithContext(ctx).Save(state).Error
}

// TouchLastSync 仅更新最近一次成功同步的时间戳。
func (r *SyncStateRepository) TouchLastSync(ctx context.Context, id uint, ts time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&syncdomain.State{}).
		Where("id = ?", id).
		Update("last_sync_at", ts)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordRun 追加一条同步历史。
func (r *SyncStateRepository) RecordRun(ctx context.Context, run *syncdomain.Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// RecentRuns 返回最近 limit 条同步历史，按时间倒序。
func (r *SyncStateRepository) RecentRuns(ctx context.Context, limit int) ([]syncdomain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []syncdomain.Run
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
