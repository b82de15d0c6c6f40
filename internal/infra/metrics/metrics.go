package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce    sync.Once
	syncRunsTotal   *prometheus.CounterVec
	syncDuration    *prometheus.HistogramVec
	probeTotal      *prometheus.CounterVec
	reconnectsTotal prometheus.Counter
	offlineWarnings prometheus.Counter
	durationBuckets = prometheus.DefBuckets
)

const (
	namespaceMetrics = "healthsync"
)

// MustRegister 初始化 Prometheus 指标并注册运行时采样器，需在应用启动阶段调用一次。
func MustRegister() {
	registerOnce.Do(func() {
		syncRunsTotal = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "sync",
					Name:      "runs_total",
					Help:      "同步执行次数，按触发来源与结果统计。",
				},
				[]string{"trigger", "result"},
			),
		)
		syncDuration = registerHistogramVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespaceMetrics,
					Subsystem: "sync",
					Name:      "duration_seconds",
					Help:      "单次同步（采集 + 传输）的耗时分布。",
					Buckets:   durationBuckets,
				},
				[]string{"trigger"},
			),
		)
		probeTotal = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "connectivity",
					Name:      "probes_total",
					Help:      "存活探测次数，按结果统计。",
				},
				[]string{"result"},
			),
		)
		reconnectsTotal = registerCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "connectivity",
					Name:      "reconnects_total",
					Help:      "离线恢复为在线并触发全量重载的次数。",
				},
			),
		)
		offlineWarnings = registerCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "connectivity",
					Name:      "offline_warnings_total",
					Help:      "实际向用户展示的离线警告次数（含冷却抑制后）。",
				},
			),
		)

		registerRuntimeCollectors()
	})
}

// ObserveSyncRun 记录一次同步的触发来源、结果与耗时。
func ObserveSyncRun(trigger string, success bool, duration time.Duration) {
	if syncRunsTotal == nil || syncDuration == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	label := normalizeLabel(trigger, "unknown")
	syncRunsTotal.WithLabelValues(label, result).Inc()
	syncDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveProbe 记录一次存活探测的结果。
func ObserveProbe(success bool) {
	if probeTotal == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	probeTotal.WithLabelValues(result).Inc()
}

// RecordReconnect 记录一次离线恢复。
func RecordReconnect() {
	if reconnectsTotal != nil {
		reconnectsTotal.Inc()
	}
}

// RecordOfflineWarning 记录一次实际展示的离线警告。
func RecordOfflineWarning() {
	if offlineWarnings != nil {
		offlineWarnings.Inc()
	}
}

func normalizeLabel(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func registerCounter(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		if existing := alreadyRegisteredCounterVec(err); existing != nil {
			return existing
		}
		panic(err)
	}
	return vec
}

func registerHistogramVec(vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(vec); err != nil {
		if existing := alreadyRegisteredHistogramVec(err); existing != nil {
			return existing
		}
		panic(err)
	}
	return vec
}

func registerRuntimeCollectors() {
	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		if !isAlreadyRegistered(err) {
			panic(err)
		}
	}
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		if !isAlreadyRegistered(err) {
			panic(err)
		}
	}
}

func alreadyRegisteredCounterVec(err error) *prometheus.CounterVec {
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing
		}
	}
	return nil
}

func alreadyRegisteredHistogramVec(err error) *prometheus.HistogramVec {
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
			return existing
		}
	}
	return nil
}

func isAlreadyRegistered(err error) bool {
	_, ok := err.(prometheus.AlreadyRegisteredError)
	return ok
}
