package provider

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"
)

// Simulated 在没有真实设备数据源时生成可信的样本序列，
// 用于 APP_MODE=simulated 的离线开发与演示。同一天的查询结果是确定的。
type Simulated struct{}

// NewSimulated 构造模拟数据源。
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Initialize 模拟授权流程，总是成功。
func (s *Simulated) Initialize(ctx context.Context) error {
	return nil
}

// Query 按指标生成当日的确定性样本。每第四天的静息心率序列为空，
// 用于走到原始心率回退路径，保持与真实设备上观察到的数据缺口一致。
func (s *Simulated) Query(ctx context.Context, metric Metric, from, to time.Time) ([]Sample, error) {
	day := from
	if day.IsZero() {
		day = to.AddDate(0, 0, -1)
	}
	rng := rand.New(rand.NewSource(seed(day, metric)))

	switch metric {
	case MetricSteps:
		return []Sample{numericSample(float64(4000+rng.Intn(9000)), "count", from, to)}, nil
	case MetricActiveEnergy:
		return []Sample{numericSample(250+rng.Float64()*450, "kcal", from, to)}, nil
	case MetricRestingHeartRate:
		if day.YearDay()%4 == 0 {
			return nil, nil
		}
		return []Sample{numericSample(float64(52+rng.Intn(14)), "bpm", from, to)}, nil
	case MetricHeartRate:
		samples := make([]Sample, 0, 8)
		for i := 0; i < 8; i++ {
			at := day.Add(time.Duration(8+i*2) * time.Hour)
			samples = append(samples, numericSample(float64(55+rng.Intn(60)), "bpm", at, at))
		}
		return samples, nil
	case MetricWeight:
		value := 72.0 + float64(day.YearDay()%14)*0.15 + rng.Float64()*0.4
		return []Sample{numericSample(value, "kg", day, day)}, nil
	case MetricSleep:
		bedtime := day.Add(-1 * time.Hour).Add(time.Duration(rng.Intn(90)) * time.Minute)
		asleepMinutes := 360 + rng.Intn(180)
		asleepStart := bedtime.Add(time.Duration(10+rng.Intn(20)) * time.Minute)
		return []Sample{
			{Start: bedtime, End: asleepStart, State: SleepInBed},
			{Start: asleepStart, End: asleepStart.Add(time.Duration(asleepMinutes) * time.Minute), State: SleepAsleep},
		}, nil
	default:
		return nil, nil
	}
}

func numericSample(value float64, unit string, start, end time.Time) Sample {
	return Sample{Value: value, Unit: unit, Start: start, End: end}
}

// seed 由日期与指标推导随机种子，保证重复查询得到相同样本。
func seed(day time.Time, metric Metric) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(day.Format("2006-01-02")))
	_, _ = h.Write([]byte(metric))
	return int64(h.Sum64())
}
