/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 16:05:51
 * @FilePath: \health-companion-app\internal\handler\dashboard_handler.go
 * @LastEditTime: 2025-10-19 16:05:56
 */
package handler

import (
	"net/http"

	response "health-companion-app/internal/infra/common"
	appLogger "health-companion-app/internal/infra/logger"
	"health-companion-app/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler 暴露仪表盘的本地视图与浏览操作。
type DashboardHandler struct {
	service *dashboard.Service
	logger  *zap.SugaredLogger
}

// NewDashboardHandler 构造仪表盘 handler。
func NewDashboardHandler(service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  appLogger.S().With("component", "dashboard.handler"),
	}
}

// Get 返回当前快照。快照可能来自上一次成功的加载，离线时依旧可用。
func (h *DashboardHandler) Get(c *gin.Context) {
	snap := h.service.Snapshot()
	response.Success(c, http.StatusOK, gin.H{
		"username":      snap.Username,
		"entries":       snap.Entries,
		"stats":         snap.Stats,
		"charts":        snap.Charts,
		"current_index": snap.CurrentIndex,
		"reloaded_at":   snap.ReloadedAt,
	})
}

// Reload 从远端全量重建快照。
func (h *DashboardHandler) Reload(c *gin.Context) {
	if err := h.service.Reload(c.Request.Context()); err != nil {
		h.logger.Warnw("dashboard reload failed", "error", err)
		response.Fail(c, http.StatusBadGateway, response.ErrUpstream, "dashboard reload failed", err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reloaded": true})
}

// NavigateRequest 描述记录浏览请求，direction 为 prev 或 next。
type NavigateRequest struct {
	Direction string `json:"direction" binding:"required,oneof=prev next"`
}

// Navigate 在记录列表上移动浏览位置并返回目标记录。
func (h *DashboardHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid request body", err.Error())
		return
	}

	delta := 1
	if req.Direction == "prev" {
		delta = -1
	}

	entry, moved := h.service.Navigate(delta)
	response.Success(c, http.StatusOK, gin.H{
		"entry": entry,
		"moved": moved,
	})
}

// Current 返回当前浏览的记录，列表为空时返回 404。
func (h *DashboardHandler) Current(c *gin.Context) {
	entry, ok := h.service.Current()
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound, "no entries loaded", nil)
		return
	}
	response.Success(c, http.StatusOK, entry)
}
