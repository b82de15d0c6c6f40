/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-18 16:45:09
 * @FilePath: \health-companion-app\internal\service\connectivity\monitor.go
 * @LastEditTime: 2025-10-18 16:45:14
 */
package connectivity

import (
	"context"
	"sync"
	"time"

	"health-companion-app/internal/infra/metrics"

	"go.uber.org/zap"
)

const (
	defaultInterval     = 30 * time.Second
	defaultProbeTimeout = 3 * time.Second
	defaultWarnCooldown = 10 * time.Second
)

// State 描述后端可达性。
type State string

const (
	StateOnline  State = "online"
	StateOffline State = "offline"
)

// Probe 对远端执行一次轻量存活探测，返回 nil 表示在线。
type Probe func(ctx context.Context) error

// Config 描述监控器的可配置参数，零值字段回退到默认值。
type Config struct {
	Interval     time.Duration
	ProbeTimeout time.Duration
	WarnCooldown time.Duration

	// OnReconnect 在离线恢复为在线时调用一次，用于全量重建本地视图。
	OnReconnect func(ctx context.Context)
	// OnWarning 在需要向用户展示离线警告时调用（已做冷却抑制）。
	OnWarning func(message string)
}

// Monitor 周期性探测后端存活并维护在线/离线状态机。
// 探测在独立的定时循环里执行，失败只影响连通状态，
// 绝不被解读为任何并发在途用户操作的失败。初始状态乐观地视为在线。
type Monitor struct {
	probe        Probe
	interval     time.Duration
	probeTimeout time.Duration
	warnCooldown time.Duration
	onReconnect  func(ctx context.Context)
	onWarning    func(message string)
	now          func() time.Time
	logger       *zap.SugaredLogger

	mu       sync.Mutex
	state    State
	lastWarn time.Time
	subs     []chan State
}

// NewMonitor 创建连通性监控器。
func NewMonitor(probe Probe, cfg Config, logger *zap.SugaredLogger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.WarnCooldown <= 0 {
		cfg.WarnCooldown = defaultWarnCooldown
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Monitor{
		probe:        probe,
		interval:     cfg.Interval,
		probeTimeout: cfg.ProbeTimeout,
		warnCooldown: cfg.WarnCooldown,
		onReconnect:  cfg.OnReconnect,
		onWarning:    cfg.OnWarning,
		now:          time.Now,
		logger:       logger,
		state:        StateOnline,
	}
}

// State 返回当前连通状态。
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsOnline 报告当前是否在线。
func (m *Monitor) IsOnline() bool {
	return m.State() == StateOnline
}

// Subscribe 返回接收状态迁移通知的通道。通知是尽力而为的：
// 订阅方消费过慢时会丢弃通知而不是阻塞监控循环。
func (m *Monitor) Subscribe() <-chan State {
	ch := make(chan State, 4)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Run 以固定周期驱动存活探测，直到上下文取消。定时器随上下文一并释放。
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Infow("connectivity monitor stopped", "reason", "context cancelled")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// poll 执行一次带硬超时的探测并驱动状态迁移。
func (m *Monitor) poll(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	err := m.probe(probeCtx)
	cancel()

	metrics.ObserveProbe(err == nil)
	m.handleResult(ctx, err)
}

// handleResult 根据探测结果迁移状态：
// 任意错误（含超时）进入 Offline 并发出受冷却抑制的用户警告；
// 成功进入 Online，且 Offline→Online 的迁移触发一次全量重载。
func (m *Monitor) handleResult(ctx context.Context, probeErr error) {
	if probeErr != nil {
		m.toOffline(probeErr)
		return
	}
	m.toOnline(ctx)
}

func (m *Monitor) toOffline(probeErr error) {
	m.mu.Lock()
	wasOnline := m.state == StateOnline
	m.state = StateOffline

	warn := m.now().Sub(m.lastWarn) >= m.warnCooldown
	if warn {
		m.lastWarn = m.now()
	}
	m.mu.Unlock()

	if wasOnline {
		m.logger.Warnw("backend unreachable, entering offline state", "error", probeErr)
		m.notify(StateOffline)
	}

	if warn && m.onWarning != nil {
		metrics.RecordOfflineWarning()
		m.onWarning("Server nicht erreichbar – Daten werden nach der Wiederverbindung aktualisiert.")
	}
}

func (m *Monitor) toOnline(ctx context.Context) {
	m.mu.Lock()
	wasOffline := m.state == StateOffline
	m.state = StateOnline
	if wasOffline {
		// 新一轮离线应当立即可以告警，冷却窗口随本次恢复结束。
		m.lastWarn = time.Time{}
	}
	m.mu.Unlock()

	if !wasOffline {
		return
	}

	m.logger.Infow("backend reachable again, reloading local state")
	metrics.RecordReconnect()
	m.notify(StateOnline)

	// 离线期间远端可能发生任意变化，本地视图整体重建而非增量修补。
	if m.onReconnect != nil {
		m.onReconnect(ctx)
	}
}

// notify 向所有订阅方广播状态迁移，不阻塞。
func (m *Monitor) notify(state State) {
	m.mu.Lock()
	subs := make([]chan State, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- state:
		default:
		}
	}
}
