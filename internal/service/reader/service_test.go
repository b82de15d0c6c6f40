package reader

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-companion-app/internal/infra/provider"
)

// stubProvider 按指标返回预置样本或错误。
type stubProvider struct {
	samples map[provider.Metric][]provider.Sample
	errs    map[provider.Metric]error
}

func (s *stubProvider) Initialize(ctx context.Context) error { return nil }

func (s *stubProvider) Query(ctx context.Context, metric provider.Metric, from, to time.Time) ([]provider.Sample, error) {
	if err, ok := s.errs[metric]; ok {
		return nil, err
	}
	return s.samples[metric], nil
}

func numeric(value float64) provider.Sample {
	return provider.Sample{Value: value}
}

func window() (time.Time, time.Time) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	return from, from.AddDate(0, 0, 1)
}

func TestStepsDefaultsToZeroOnError(t *testing.T) {
	svc := NewService(&stubProvider{errs: map[provider.Metric]error{
		provider.MetricSteps: errors.New("bridge unavailable"),
	}}, nil)

	from, to := window()
	if got := svc.Steps(context.Background(), from, to); got != 0 {
		t.Fatalf("expected 0 steps on error, got %d", got)
	}
}

func TestActiveEnergyRoundsToInteger(t *testing.T) {
	svc := NewService(&stubProvider{samples: map[provider.Metric][]provider.Sample{
		provider.MetricActiveEnergy: {numeric(410.6)},
	}}, nil)

	from, to := window()
	if got := svc.ActiveEnergy(context.Background(), from, to); got != 411 {
		t.Fatalf("expected 411 kcal, got %d", got)
	}
}

func TestRestingHeartRatePrefersDedicatedSeries(t *testing.T) {
	svc := NewService(&stubProvider{samples: map[provider.Metric][]provider.Sample{
		provider.MetricRestingHeartRate: {numeric(57.6)},
		provider.MetricHeartRate:        {numeric(72), numeric(65), numeric(80)},
	}}, nil)

	from, to := window()
	if got := svc.RestingHeartRate(context.Background(), from, to); got != 58 {
		t.Fatalf("expected 58 from dedicated series, got %d", got)
	}
}

func TestRestingHeartRateFallsBackToRawMinimum(t *testing.T) {
	svc := NewService(&stubProvider{samples: map[provider.Metric][]provider.Sample{
		provider.MetricHeartRate: {numeric(72), numeric(65), numeric(80)},
	}}, nil)

	from, to := window()
	if got := svc.RestingHeartRate(context.Background(), from, to); got != 65 {
		t.Fatalf("expected raw minimum 65, got %d", got)
	}
}

func TestRestingHeartRateDefaultsToZeroWhenBothEmpty(t *testing.T) {
	svc := NewService(&stubProvider{}, nil)

	from, to := window()
	if got := svc.RestingHeartRate(context.Background(), from, to); got != 0 {
		t.Fatalf("expected 0 without any samples, got %d", got)
	}
}

func TestWeightRoundsToOneDecimal(t *testing.T) {
	svc := NewService(&stubProvider{samples: map[provider.Metric][]provider.Sample{
		provider.MetricWeight: {numeric(74.26)},
	}}, nil)

	_, to := window()
	if got := svc.Weight(context.Background(), to); got != 74.3 {
		t.Fatalf("expected 74.3 kg, got %v", got)
	}
}

func TestSleepSumsInBedAndAsleepMinutes(t *testing.T) {
	from, to := window()
	bedtime := from.Add(-1 * time.Hour)

	svc := NewService(&stubProvider{samples: map[provider.Metric][]provider.Sample{
		provider.MetricSleep: {
			{Start: bedtime, End: bedtime.Add(40 * time.Minute), State: provider.SleepInBed},
			{Start: bedtime.Add(40 * time.Minute), End: bedtime.Add(40*time.Minute + 7*time.Hour), State: provider.SleepAsleep},
			// AWAKE 片段不计入时长。
			{Start: bedtime.Add(8 * time.Hour), End: bedtime.Add(9 * time.Hour), State: provider.SleepAwake},
		},
	}}, nil)

	hours, index := svc.Sleep(context.Background(), from, to)
	if hours != 7.7 {
		t.Fatalf("expected 7.7 hours, got %v", hours)
	}
	if index != 90 {
		t.Fatalf("expected quality index 90, got %d", index)
	}
}

func TestSleepDefaultsOnError(t *testing.T) {
	svc := NewService(&stubProvider{errs: map[provider.Metric]error{
		provider.MetricSleep: errors.New("bridge unavailable"),
	}}, nil)

	from, to := window()
	hours, index := svc.Sleep(context.Background(), from, to)
	if hours != 0 {
		t.Fatalf("expected 0 hours on error, got %v", hours)
	}
	if index != 50 {
		t.Fatalf("expected fallback index 50, got %d", index)
	}
}
