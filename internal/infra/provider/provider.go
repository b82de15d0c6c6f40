/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 11:12:08
 * @FilePath: \health-companion-app\internal\infra\provider\provider.go
 * @LastEditTime: 2025-10-14 11:12:13
 */
package provider

import (
	"context"
	"time"
)

// Metric 标识平台健康数据源支持的指标类别。
type Metric string

const (
	MetricSteps            Metric = "steps"
	MetricDistance         Metric = "distance"
	MetricActiveEnergy     Metric = "active_energy"
	MetricHeartRate        Metric = "heart_rate"
	MetricRestingHeartRate Metric = "resting_heart_rate"
	MetricSleep            Metric = "sleep"
	MetricWeight           Metric = "weight"
	MetricWorkout          Metric = "workout"
)

// ReadCapabilities 是初始化时申请的只读授权集合。
// workout 虽在授权范围内，但训练时长的读取尚未接入，记录中恒为 0。
var ReadCapabilities = []Metric{
	MetricSteps,
	MetricDistance,
	MetricActiveEnergy,
	MetricHeartRate,
	MetricRestingHeartRate,
	MetricSleep,
	MetricWeight,
	MetricWorkout,
}

// SleepState 描述睡眠样本所处的阶段。
type SleepState string

const (
	SleepInBed  SleepState = "INBED"
	SleepAsleep SleepState = "ASLEEP"
	SleepAwake  SleepState = "AWAKE"
)

// Sample 是数据源返回的单条样本。数值类指标使用 Value/Unit，
// 睡眠类指标使用 Start/End/State 表达一段区间。
type Sample struct {
	Value float64
	Unit  string
	Start time.Time
	End   time.Time
	State SleepState
}

// Provider 抽象平台健康数据源：先申请授权，再按指标与时间窗查询样本。
// 查询返回错误时由上层读数器降级为默认值，不向外传播。
type Provider interface {
	// Initialize 申请 ReadCapabilities 中列出的只读授权。
	// 返回错误意味着本次会话的采集管线不可用，调度器不得进入 Armed 状态。
	Initialize(ctx context.Context) error

	// Query 查询指标在半开时间窗 [from, to) 内的样本。
	// from 为零值时表示不限定下界（用于"最近一次体重"这类查询）。
	Query(ctx context.Context, metric Metric, from, to time.Time) ([]Sample, error)
}

// Duration 返回样本覆盖的时长，睡眠样本用它累计在床/入睡分钟数。
func (s Sample) Duration() time.Duration {
	if s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}
