/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-17 09:48:12
 * @FilePath: \health-companion-app\internal\service\reader\service.go
 * @LastEditTime: 2025-10-17 09:48:17
 */
package reader

import (
	"context"
	"math"
	"time"

	"health-companion-app/internal/domain/health"
	"health-companion-app/internal/infra/provider"

	"go.uber.org/zap"
)

// restingLookback 限定静息心率序列的回看样本数。
const restingLookback = 10

// Service 逐指标读取平台健康数据并归一化为标量。
// 数据源出错一律降级为文档化的默认值，绝不让调用方失败：
// 残缺的健康数据仍然比一次失败的同步有用。
type Service struct {
	provider provider.Provider
	logger   *zap.SugaredLogger
}

// NewService 创建读数服务。
func NewService(p provider.Provider, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{provider: p, logger: logger}
}

// Steps 返回时间窗内的步数合计，出错或无数据时为 0。
func (s *Service) Steps(ctx context.Context, from, to time.Time) int {
	samples, err := s.provider.Query(ctx, provider.MetricSteps, from, to)
	if err != nil {
		s.logger.Warnw("steps query failed, defaulting to 0", "error", err)
		return 0
	}
	if len(samples) == 0 {
		return 0
	}
	return int(math.Round(samples[0].Value))
}

// ActiveEnergy 返回时间窗内的活动能量（kcal），四舍五入为整数。
func (s *Service) ActiveEnergy(ctx context.Context, from, to time.Time) int {
	samples, err := s.provider.Query(ctx, provider.MetricActiveEnergy, from, to)
	if err != nil {
		s.logger.Warnw("active energy query failed, defaulting to 0", "error", err)
		return 0
	}
	if len(samples) == 0 {
		return 0
	}
	return int(math.Round(samples[0].Value))
}

// RestingHeartRate 返回静息心率（bpm）。两级回退：
// 优先取专用静息序列的最近样本（回看至多 10 条）；序列为空或查询失败时，
// 退回原始心率序列并以窗口内最低值近似静息心率；仍无数据则为 0。
func (s *Service) RestingHeartRate(ctx context.Context, from, to time.Time) int {
	samples, err := s.provider.Query(ctx, provider.MetricRestingHeartRate, from, to)
	if err == nil && len(samples) > 0 {
		if len(samples) > restingLookback {
			samples = samples[:restingLookback]
		}
		return int(math.Round(samples[0].Value))
	}
	if err != nil {
		s.logger.Warnw("resting heart rate query failed, falling back to raw samples", "error", err)
	}

	raw, err := s.provider.Query(ctx, provider.MetricHeartRate, from, to)
	if err != nil {
		s.logger.Warnw("heart rate fallback query failed, defaulting to 0", "error", err)
		return 0
	}
	if len(raw) == 0 {
		return 0
	}

	min := raw[0].Value
	for _, sample := range raw[1:] {
		if sample.Value < min {
			min = sample.Value
		}
	}
	return int(math.Round(min))
}

// Weight 返回最近一次体重（kg），保留一位小数；无样本时为 0。
// 体重变化缓慢，查询不限定下界，空白的日历日不应把体重清零。
func (s *Service) Weight(ctx context.Context, to time.Time) float64 {
	samples, err := s.provider.Query(ctx, provider.MetricWeight, time.Time{}, to)
	if err != nil {
		s.logger.Warnw("weight query failed, defaulting to 0", "error", err)
		return 0
	}
	if len(samples) == 0 {
		return 0
	}
	return round1(samples[0].Value)
}

// Sleep 汇总时间窗内处于 INBED 或 ASLEEP 状态的睡眠样本时长，
// 返回小时数（一位小数）与按固定档位估算的质量指数。
// 出错或无数据时返回 (0, 50)，与时长档位表的兜底行保持一致。
func (s *Service) Sleep(ctx context.Context, from, to time.Time) (float64, int) {
	samples, err := s.provider.Query(ctx, provider.MetricSleep, from, to)
	if err != nil {
		s.logger.Warnw("sleep query failed, defaulting to 0h", "error", err)
		return 0, health.SleepQuality(0)
	}

	var totalMinutes float64
	for _, sample := range samples {
		if sample.State == provider.SleepInBed || sample.State == provider.SleepAsleep {
			totalMinutes += sample.Duration().Minutes()
		}
	}

	hours := round1(totalMinutes / 60)
	return hours, health.SleepQuality(hours)
}

// round1 保留一位小数。
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
