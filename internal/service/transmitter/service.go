/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-17 14:03:55
 * @FilePath: \health-companion-app\internal\service\transmitter\service.go
 * @LastEditTime: 2025-10-17 14:04:00
 */
package transmitter

import (
	"context"

	"health-companion-app/internal/domain/health"
	"health-companion-app/internal/infra/healthapi"

	"go.uber.org/zap"
)

// ClientSource 提供当前生效的远端客户端，设置变更后返回新实例。
type ClientSource interface {
	Get() *healthapi.Client
}

// Service 将日级记录序列化并提交到远端存储。
// 对外只暴露布尔结果：网络错误、非 2xx 状态、响应解析失败一律视为 false，
// 从不向调用方抛出。重试策略归调度器，这里不做。
type Service struct {
	api    ClientSource
	logger *zap.SugaredLogger
}

// NewService 创建传输服务。
func NewService(api ClientSource, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{api: api, logger: logger}
}

// Submit 按日期键提交记录。该日期已有记录时按标识更新，否则新建，
// 保证远端每个日期至多一行。成功返回 true。
func (s *Service) Submit(ctx context.Context, rec health.DailyRecord) bool {
	client := s.api.Get()
	if client == nil {
		s.logger.Warnw("submit skipped: remote client not configured")
		return false
	}

	payload := healthapi.EntryFromRecord(rec)

	// 按日期查找已有记录；查找失败时按不存在处理，交给创建路径统一判定。
	existing, err := client.EntryByDate(ctx, rec.Date)
	if err != nil {
		s.logger.Warnw("entry lookup failed, attempting create", "date", rec.Date, "error", err)
		existing = nil
	}

	if existing != nil && existing.ID != 0 {
		if _, err := client.UpdateEntry(ctx, existing.ID, payload); err != nil {
			s.logger.Errorw("entry update failed", "date", rec.Date, "id", existing.ID, "error", err)
			return false
		}
		s.logger.Infow("entry updated", "date", rec.Date, "id", existing.ID)
		return true
	}

	if _, err := client.CreateEntry(ctx, payload); err != nil {
		s.logger.Errorw("entry create failed", "date", rec.Date, "error", err)
		return false
	}
	s.logger.Infow("entry created", "date", rec.Date)
	return true
}
