/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 14:21:07
 * @FilePath: \health-companion-app\internal\service\settings\service.go
 * @LastEditTime: 2025-10-19 14:21:12
 */
package settings

import (
	"context"
	"fmt"
	"strings"

	syncdomain "health-companion-app/internal/domain/sync"
	"health-companion-app/internal/infra/healthapi"
	"health-companion-app/internal/repository"

	"go.uber.org/zap"
)

// SchedulerControl 抽象调度器的启停入口，设置流程据此切换自动同步。
type SchedulerControl interface {
	Arm()
	Disarm()
}

// UpdateInput 描述设置流程的局部更新，nil 字段保持原值。
type UpdateInput struct {
	ServerIP     *string
	FrontendPort *string
	BackendPort  *string
	Token        *string
	AutoSync     *bool
}

// Service 负责连接与同步设置的读写。保存成功后整体重建远端客户端，
// 并按自动同步开关切换调度器；数据源不可用时调度器保持停用。
type Service struct {
	repo          *repository.SyncStateRepository
	holder        *healthapi.Holder
	scheduler     SchedulerControl
	providerReady bool
	logger        *zap.SugaredLogger
}

// NewService 创建设置服务。providerReady 为 false 时保存设置不会武装调度器。
func NewService(repo *repository.SyncStateRepository, holder *healthapi.Holder, scheduler SchedulerControl, providerReady bool, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		repo:          repo,
		holder:        holder,
		scheduler:     scheduler,
		providerReady: providerReady,
		logger:        logger,
	}
}

// BackendBaseURL 由服务器地址与后端端口拼出远端存储的基础地址。
func BackendBaseURL(state *syncdomain.State) string {
	return fmt.Sprintf("http://%s:%s", strings.TrimSpace(state.ServerIP), strings.TrimSpace(state.BackendPort))
}

// Current 返回当前生效的设置。
func (s *Service) Current(ctx context.Context) (*syncdomain.State, error) {
	state, err := s.repo.LoadOrSeed(ctx, syncdomain.State{})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return state, nil
}

// Update 应用局部更新并落库，随后替换远端客户端并切换调度器。
// 落库失败时不触碰任何运行态组件。
func (s *Service) Update(ctx context.Context, input UpdateInput) (*syncdomain.State, error) {
	state, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if input.ServerIP != nil {
		state.ServerIP = strings.TrimSpace(*input.ServerIP)
	}
	if input.FrontendPort != nil {
		state.FrontendPort = strings.TrimSpace(*input.FrontendPort)
	}
	if input.BackendPort != nil {
		state.BackendPort = strings.TrimSpace(*input.BackendPort)
	}
	if input.Token != nil {
		state.Token = strings.TrimSpace(*input.Token)
	}
	if input.AutoSync != nil {
		state.AutoSync = *input.AutoSync
	}

	if err := s.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	s.apply(state)
	return state, nil
}

// apply 把已落库的设置同步到运行态：重建客户端、切换调度器。
func (s *Service) apply(state *syncdomain.State) {
	if state.Token != "" {
		s.holder.Swap(healthapi.NewClient(BackendBaseURL(state), state.Token))
		s.logger.Infow("remote client rebuilt", "base_url", BackendBaseURL(state))
	}

	if s.scheduler == nil {
		return
	}
	switch {
	case state.AutoSync && s.providerReady:
		s.scheduler.Arm()
	case state.AutoSync && !s.providerReady:
		s.logger.Warnw("auto sync enabled but data source unavailable, scheduler stays idle")
	default:
		s.scheduler.Disarm()
	}
}
