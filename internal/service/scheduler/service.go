/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-18 10:32:28
 * @FilePath: \health-companion-app\internal\service\scheduler\service.go
 * @LastEditTime: 2025-10-18 10:32:33
 */
package scheduler

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"health-companion-app/internal/domain/health"
	syncdomain "health-companion-app/internal/domain/sync"
	"health-companion-app/internal/infra/healthapi"
	"health-companion-app/internal/infra/metrics"
	"health-companion-app/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultInterval = 15 * time.Minute

	// noteAutomatic / noteManual 是写入远端 notizen 字段的来源标注。
	noteAutomatic = "Automatisch von iOS App"
	noteManual    = "Manuell von iOS App"
)

// State 描述调度器的运行状态。
type State int32

const (
	// StateIdle 表示自动同步未启用或采集管线不可用。
	StateIdle State = iota
	// StateArmed 表示自动同步已启用且数据源初始化成功，等待下一次唤醒。
	StateArmed
	// StateRunning 表示一次同步正在执行。
	StateRunning
)

// String 返回状态的可读名称。
func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateRunning:
		return "running"
	default:
		return "idle"
	}
}

// RecordBuilder 为某个日历日构建完整的日级记录。
type RecordBuilder interface {
	BuildRecord(ctx context.Context, day time.Time) health.DailyRecord
}

// RecordSubmitter 将记录提交到远端存储并以布尔值报告结果。
type RecordSubmitter interface {
	Submit(ctx context.Context, rec health.DailyRecord) bool
}

// Service 周期性地对"昨天"执行采集与传输。宿主平台的唤醒节奏只是近似值，
// 设计上容忍任意延迟或被跳过的唤醒；失败不重试，下一次周期唤醒就是恢复路径。
type Service struct {
	builder   RecordBuilder
	submitter RecordSubmitter
	repo      *repository.SyncStateRepository
	stateID   uint
	interval  time.Duration
	state     atomic.Int32
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// NewService 创建调度器。interval <= 0 时使用默认 15 分钟。
func NewService(builder RecordBuilder, submitter RecordSubmitter, repo *repository.SyncStateRepository, stateID uint, interval time.Duration, logger *zap.SugaredLogger) *Service {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		builder:   builder,
		submitter: submitter,
		repo:      repo,
		stateID:   stateID,
		interval:  interval,
		now:       time.Now,
		logger:    logger,
	}
}

// Arm 将调度器置为待命状态。仅当自动同步开启且数据源初始化成功时调用。
func (s *Service) Arm() {
	s.state.Store(int32(StateArmed))
	s.logger.Infow("scheduler armed", "interval", s.interval)
}

// Disarm 停用自动同步，手动同步不受影响。
func (s *Service) Disarm() {
	s.state.Store(int32(StateIdle))
	s.logger.Infow("scheduler disarmed")
}

// State 返回当前调度状态。
func (s *Service) State() State {
	return State(s.state.Load())
}

// Run 以固定周期驱动自动同步，直到上下文取消。
// 每次唤醒的目标日期是"昨天"——当天的数据默认不完整，只允许手动显式同步。
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("scheduler stopped", "reason", "context cancelled")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick 执行一次自动同步。通过 Armed→Running 的状态交换保证同一时刻
// 至多一次自动同步在途；交换失败（Idle 或已在 Running）则直接跳过本次唤醒。
func (s *Service) tick(ctx context.Context) {
	if !s.state.CompareAndSwap(int32(StateArmed), int32(StateRunning)) {
		return
	}
	defer s.state.CompareAndSwap(int32(StateRunning), int32(StateArmed))

	yesterday := s.now().AddDate(0, 0, -1)
	s.syncDay(ctx, yesterday, syncdomain.TriggerAutomatic)
}

// SyncDate 由用户显式触发，同步执行并返回布尔结果，允许目标为今天。
func (s *Service) SyncDate(ctx context.Context, day time.Time) bool {
	return s.syncDay(ctx, day, syncdomain.TriggerManual)
}

// syncDay 执行一次完整的采集→聚合→传输，并记录历史与指标。
// 仅当传输成功时推进 lastSyncTimestamp；失败不安排重试。
func (s *Service) syncDay(ctx context.Context, day time.Time, trigger syncdomain.Trigger) bool {
	runID := uuid.NewString()
	started := s.now()

	rec := s.builder.BuildRecord(ctx, day)
	rec.Note = noteAutomatic
	if trigger == syncdomain.TriggerManual {
		rec.Note = noteManual
	}

	success := s.submitter.Submit(ctx, rec)
	elapsed := s.now().Sub(started)
	metrics.ObserveSyncRun(string(trigger), success, elapsed)

	if success {
		if err := s.repo.TouchLastSync(ctx, s.stateID, s.now()); err != nil {
			s.logger.Warnw("persist last sync timestamp failed", "run_id", runID, "error", err)
		}
	}

	s.recordRun(ctx, runID, rec, trigger, success)

	if success {
		s.logger.Infow("sync completed", "run_id", runID, "date", rec.Date, "trigger", trigger, "elapsed", elapsed)
	} else {
		s.logger.Warnw("sync failed, awaiting next trigger", "run_id", runID, "date", rec.Date, "trigger", trigger)
	}
	return success
}

// recordRun 把本次尝试连同提交的线上快照写入历史表。
func (s *Service) recordRun(ctx context.Context, runID string, rec health.DailyRecord, trigger syncdomain.Trigger, success bool) {
	payload, err := json.Marshal(healthapi.EntryFromRecord(rec))
	if err != nil {
		s.logger.Warnw("encode run payload failed", "run_id", runID, "error", err)
		payload = nil
	}

	run := &syncdomain.Run{
		RunID:   runID,
		Datum:   rec.Date,
		Trigger: trigger,
		Success: success,
		Payload: payload,
	}
	if err := s.repo.RecordRun(ctx, run); err != nil {
		s.logger.Warnw("record sync run failed", "run_id", runID, "error", err)
	}
}
