/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 09:12:47
 * @FilePath: \health-companion-app\internal\service\dashboard\service.go
 * @LastEditTime: 2025-10-19 09:12:52
 */
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"health-companion-app/internal/infra/healthapi"

	"go.uber.org/zap"
)

const (
	entriesLimit   = 1000
	statsDays      = 30
	stepsChartDays = 7
	chartDays      = 30
)

// ClientSource 提供当前生效的远端客户端。
type ClientSource interface {
	Get() *healthapi.Client
}

// Snapshot 是仪表盘的完整本地视图：全部记录（按日期倒序）、
// 30 天聚合统计、各图表序列与当前浏览位置。
type Snapshot struct {
	Username     string
	Entries      []healthapi.Entry
	Stats        healthapi.Stats
	Charts       map[string]healthapi.ChartData
	CurrentIndex int
	ReloadedAt   time.Time
}

// Service 维护仪表盘本地视图。Reload 从零重建整个快照，
// 用于启动时与连接恢复后——离线期间远端变化量未知，不做增量修补。
type Service struct {
	api    ClientSource
	logger *zap.SugaredLogger

	mu   sync.RWMutex
	snap Snapshot
}

// NewService 创建仪表盘服务。
func NewService(api ClientSource, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{api: api, logger: logger}
}

// Reload 重新拉取身份、全部记录、聚合统计与图表序列，整体替换快照。
// 任一必要请求失败则保留旧快照并返回错误。
func (s *Service) Reload(ctx context.Context) error {
	client := s.api.Get()
	if client == nil {
		return fmt.Errorf("remote client not configured")
	}

	next := Snapshot{
		Charts: make(map[string]healthapi.ChartData, 4),
	}

	// 身份请求失败不致命，回退到通用称呼。
	if info, err := client.Me(ctx); err == nil {
		next.Username = info.Username
	} else {
		s.logger.Warnw("load user info failed, using fallback", "error", err)
		next.Username = "User"
	}

	entries, err := client.Entries(ctx, entriesLimit, "")
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Datum > entries[j].Datum
	})
	next.Entries = entries

	stats, err := client.Stats(ctx, statsDays)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	next.Stats = stats

	charts := map[string]int{
		"schritte":          stepsChartDays,
		"schlaf_stunden":    chartDays,
		"herzfrequenz_ruhe": chartDays,
		"herzfrequenz_avg":  chartDays,
	}
	for field, days := range charts {
		data, err := client.Chart(ctx, field, days)
		if err != nil {
			return fmt.Errorf("load chart %s: %w", field, err)
		}
		next.Charts[field] = data
	}

	next.ReloadedAt = time.Now()

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	s.logger.Infow("dashboard reloaded", "entries", len(next.Entries), "charts", len(next.Charts))
	return nil
}

// Snapshot 返回当前视图的副本。
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Navigate 在记录列表上前后移动浏览位置（delta 为 +1/-1），
// 越界时保持原位并返回 false。
func (s *Service) Navigate(delta int) (healthapi.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.CurrentIndex + delta
	if next < 0 || next >= len(s.snap.Entries) {
		if s.snap.CurrentIndex >= 0 && s.snap.CurrentIndex < len(s.snap.Entries) {
			return s.snap.Entries[s.snap.CurrentIndex], false
		}
		return healthapi.Entry{}, false
	}

	s.snap.CurrentIndex = next
	return s.snap.Entries[next], true
}

// Current 返回当前浏览的记录，列表为空时返回 false。
func (s *Service) Current() (healthapi.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap.CurrentIndex < 0 || s.snap.CurrentIndex >= len(s.snap.Entries) {
		return healthapi.Entry{}, false
	}
	return s.snap.Entries[s.snap.CurrentIndex], true
}
