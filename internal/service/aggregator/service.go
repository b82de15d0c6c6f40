/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-17 11:20:36
 * @FilePath: \health-companion-app\internal\service\aggregator\service.go
 * @LastEditTime: 2025-10-17 11:20:41
 */
package aggregator

import (
	"context"
	"sync"
	"time"

	"health-companion-app/internal/domain/health"
	"health-companion-app/internal/service/reader"

	"go.uber.org/zap"
)

// Service 为某个日历日构建规范化的日级健康记录。
// 五路指标读取并发发起、统一汇合，绝不产出缺字段的半成品记录。
type Service struct {
	readers *reader.Service
	logger  *zap.SugaredLogger
}

// NewService 创建聚合服务。
func NewService(readers *reader.Service, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{readers: readers, logger: logger}
}

// BuildRecord 为给定日历日构建完整记录，时间窗为本地 [当日 00:00, 次日 00:00)。
// 各指标读数失败时各自降级为 0，因此本方法不会因数据原因失败；
// 唯一的前置条件是数据源已完成初始化，由调用方在装配阶段保证。
func (s *Service) BuildRecord(ctx context.Context, day time.Time) health.DailyRecord {
	from, to := health.DayWindow(day)

	var (
		steps      int
		energy     int
		restingHR  int
		weight     float64
		sleepHours float64
		sleepIndex int
	)

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		steps = s.readers.Steps(ctx, from, to)
	}()
	go func() {
		defer wg.Done()
		energy = s.readers.ActiveEnergy(ctx, from, to)
	}()
	go func() {
		defer wg.Done()
		restingHR = s.readers.RestingHeartRate(ctx, from, to)
	}()
	go func() {
		defer wg.Done()
		weight = s.readers.Weight(ctx, to)
	}()
	go func() {
		defer wg.Done()
		sleepHours, sleepIndex = s.readers.Sleep(ctx, from, to)
	}()
	wg.Wait()

	// 数据源没有独立的平均心率序列，平均值沿用静息读数。
	// 这是上游已知的简化，下游若需要真实均值需另接数据。
	return health.DailyRecord{
		Date:              health.FormatDate(day),
		StepCount:         steps,
		SleepHours:        sleepHours,
		SleepQualityIndex: sleepIndex,
		WeightKg:          weight,
		RestingHeartRate:  restingHR,
		AverageHeartRate:  restingHR,
		ActiveEnergyKcal:  energy,
		// 训练时长的读取尚未接入，0 表示"未采集"而非"没有训练"。
		TrainingMinutes: 0,
	}
}
