/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 15:02:44
 * @FilePath: \health-companion-app\internal\handler\status_handler.go
 * @LastEditTime: 2025-10-19 15:02:49
 */
package handler

import (
	"net/http"
	"time"

	syncdomain "health-companion-app/internal/domain/sync"
	response "health-companion-app/internal/infra/common"
	appLogger "health-companion-app/internal/infra/logger"
	"health-companion-app/internal/repository"
	"health-companion-app/internal/service/connectivity"
	"health-companion-app/internal/service/scheduler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const recentRunsLimit = 20

// StatusHandler 汇总代理的运行状态：连通性、调度器、最近同步历史。
type StatusHandler struct {
	monitor *connectivity.Monitor
	sched   *scheduler.Service
	repo    *repository.SyncStateRepository
	mode    string
	logger  *zap.SugaredLogger
}

// NewStatusHandler 构造状态 handler。
func NewStatusHandler(monitor *connectivity.Monitor, sched *scheduler.Service, repo *repository.SyncStateRepository, mode string) *StatusHandler {
	return &StatusHandler{
		monitor: monitor,
		sched:   sched,
		repo:    repo,
		mode:    mode,
		logger:  appLogger.S().With("component", "status.handler"),
	}
}

// runView 是同步历史在控制面接口上的展示结构。
type runView struct {
	RunID     string    `json:"run_id"`
	Datum     string    `json:"datum"`
	Trigger   string    `json:"trigger"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// Get 返回代理当前状态快照。
func (h *StatusHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	state, err := h.repo.LoadOrSeed(ctx, syncdomain.State{})
	if err != nil {
		h.logger.Errorw("load sync state failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "load sync state failed", nil)
		return
	}

	runs, err := h.repo.RecentRuns(ctx, recentRunsLimit)
	if err != nil {
		h.logger.Errorw("load recent runs failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "load recent runs failed", nil)
		return
	}

	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView{
			RunID:     run.RunID,
			Datum:     run.Datum,
			Trigger:   string(run.Trigger),
			Success:   run.Success,
			CreatedAt: run.CreatedAt,
		})
	}

	response.Success(c, http.StatusOK, gin.H{
		"mode":         h.mode,
		"connectivity": string(h.monitor.State()),
		"scheduler":    h.sched.State().String(),
		"auto_sync":    state.AutoSync,
		"last_sync_at": state.LastSyncAt,
		"recent_runs":  views,
	})
}
