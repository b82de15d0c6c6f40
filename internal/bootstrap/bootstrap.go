/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 18:02:36
 * @FilePath: \health-companion-app\internal\bootstrap\bootstrap.go
 * @LastEditTime: 2025-10-19 18:02:41
 */
package bootstrap

import (
	"context"
	"net/http"

	"health-companion-app/internal/app"
	"health-companion-app/internal/config"
	syncdomain "health-companion-app/internal/domain/sync"
	"health-companion-app/internal/handler"
	"health-companion-app/internal/infra/healthapi"
	"health-companion-app/internal/infra/metrics"
	"health-companion-app/internal/infra/provider"
	"health-companion-app/internal/middleware"
	"health-companion-app/internal/repository"
	"health-companion-app/internal/server"
	"health-companion-app/internal/service/aggregator"
	"health-companion-app/internal/service/connectivity"
	"health-companion-app/internal/service/dashboard"
	"health-companion-app/internal/service/reader"
	"health-companion-app/internal/service/scheduler"
	settingssvc "health-companion-app/internal/service/settings"
	"health-companion-app/internal/service/transmitter"

	"go.uber.org/zap"
)

// Application 汇总组装完成的代理：HTTP 控制面与需要独立 goroutine 驱动的后台组件。
type Application struct {
	Resources *app.Resources
	Scheduler *scheduler.Service
	Monitor   *connectivity.Monitor
	Dashboard *dashboard.Service
	Router    http.Handler
}

// BuildApplication 按依赖顺序组装所有组件。
// 数据源初始化失败不阻止启动：手动同步与仪表盘依旧可用，只是调度器保持停用。
func BuildApplication(ctx context.Context, logger *zap.SugaredLogger, resources *app.Resources) (*Application, error) {
	flags := resources.Flags

	metrics.MustRegister()

	repo := repository.NewSyncStateRepository(resources.DBConn())
	state, err := repo.LoadOrSeed(ctx, syncdomain.State{
		ServerIP:     flags.Seed.ServerIP,
		FrontendPort: flags.Seed.FrontendPort,
		BackendPort:  flags.Seed.BackendPort,
		Token:        flags.Seed.Token,
		AutoSync:     flags.Seed.AutoSync,
	})
	if err != nil {
		return nil, err
	}

	var client *healthapi.Client
	if state.Token != "" {
		client = healthapi.NewClient(settingssvc.BackendBaseURL(state), state.Token)
	} else {
		logger.Warnw("no api token configured, remote sync disabled until settings are saved")
	}
	holder := healthapi.NewHolder(client)

	dataSource := buildProvider(flags)
	providerReady := true
	if err := dataSource.Initialize(ctx); err != nil {
		// 采集管线不可用只影响同步：代理继续服务设置与仪表盘。
		providerReady = false
		logger.Errorw("data source initialization failed, scheduler stays idle", "mode", flags.Mode, "error", err)
	}

	readers := reader.NewService(dataSource, logger.With("component", "reader"))
	builder := aggregator.NewService(readers, logger.With("component", "aggregator"))
	submitter := transmitter.NewService(holder, logger.With("component", "transmitter"))

	sched := scheduler.NewService(builder, submitter, repo, state.ID, flags.SyncInterval, logger.With("component", "scheduler"))
	if state.AutoSync && providerReady {
		sched.Arm()
	}

	dash := dashboard.NewService(holder, logger.With("component", "dashboard"))
	if client != nil {
		if err := dash.Reload(ctx); err != nil {
			logger.Warnw("initial dashboard load failed, waiting for reconnect", "error", err)
		}
	}

	monitor := connectivity.NewMonitor(func(ctx context.Context) error {
		return holder.Get().Probe(ctx)
	}, connectivity.Config{
		Interval:     flags.ProbeInterval,
		ProbeTimeout: flags.ProbeTimeout,
		OnReconnect: func(ctx context.Context) {
			if err := dash.Reload(ctx); err != nil {
				logger.Warnw("reload after reconnect failed", "error", err)
			}
		},
		OnWarning: func(message string) {
			logger.Warnw("connectivity warning", "message", message)
		},
	}, logger.With("component", "connectivity"))

	settingsService := settingssvc.NewService(repo, holder, sched, providerReady, logger.With("component", "settings"))

	router := server.NewRouter(server.RouterOptions{
		StatusHandler:    handler.NewStatusHandler(monitor, sched, repo, flags.Mode),
		SyncHandler:      handler.NewSyncHandler(sched),
		SettingsHandler:  handler.NewSettingsHandler(settingsService),
		DashboardHandler: handler.NewDashboardHandler(dash),
		ControlToken:     middleware.NewControlTokenMiddleware(flags.ControlToken),
	})

	return &Application{
		Resources: resources,
		Scheduler: sched,
		Monitor:   monitor,
		Dashboard: dash,
		Router:    router,
	}, nil
}

// buildProvider 按运行模式选择数据源实现。
func buildProvider(flags config.RuntimeFlags) provider.Provider {
	if flags.Mode == config.ModeSimulated {
		return provider.NewSimulated()
	}
	return provider.NewBridge(flags.BridgeURL)
}
