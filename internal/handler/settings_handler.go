/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 15:40:12
 * @FilePath: \health-companion-app\internal\handler\settings_handler.go
 * @LastEditTime: 2025-10-19 15:40:17
 */
package handler

import (
	"net/http"
	"time"

	syncdomain "health-companion-app/internal/domain/sync"
	response "health-companion-app/internal/infra/common"
	appLogger "health-companion-app/internal/infra/logger"
	settingssvc "health-companion-app/internal/service/settings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettingsHandler 负责连接与同步设置的读写入口。
type SettingsHandler struct {
	service *settingssvc.Service
	logger  *zap.SugaredLogger
}

// NewSettingsHandler 构造设置 handler。
func NewSettingsHandler(service *settingssvc.Service) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  appLogger.S().With("component", "settings.handler"),
	}
}

// settingsView 是设置在控制面接口上的展示结构。
type settingsView struct {
	ServerIP     string     `json:"server_ip"`
	FrontendPort string     `json:"frontend_port"`
	BackendPort  string     `json:"backend_port"`
	Token        string     `json:"token"`
	AutoSync     bool       `json:"auto_sync"`
	LastSyncAt   *time.Time `json:"last_sync_at"`
}

func viewOf(state *syncdomain.State) settingsView {
	return settingsView{
		ServerIP:     state.ServerIP,
		FrontendPort: state.FrontendPort,
		BackendPort:  state.BackendPort,
		Token:        state.Token,
		AutoSync:     state.AutoSync,
		LastSyncAt:   state.LastSyncAt,
	}
}

// Get 返回当前生效的设置。
func (h *SettingsHandler) Get(c *gin.Context) {
	state, err := h.service.Current(c.Request.Context())
	if err != nil {
		h.logger.Errorw("load settings failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "load settings failed", nil)
		return
	}
	response.Success(c, http.StatusOK, viewOf(state))
}

// UpdateSettingsRequest 描述设置更新的请求体，缺省字段保持原值。
type UpdateSettingsRequest struct {
	ServerIP     *string `json:"server_ip"`
	FrontendPort *string `json:"frontend_port"`
	BackendPort  *string `json:"backend_port"`
	Token        *string `json:"token"`
	AutoSync     *bool   `json:"auto_sync"`
}

// Update 应用局部更新。保存成功后远端客户端与调度器立即生效新配置。
func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid request body", err.Error())
		return
	}

	state, err := h.service.Update(c.Request.Context(), settingssvc.UpdateInput{
		ServerIP:     req.ServerIP,
		FrontendPort: req.FrontendPort,
		BackendPort:  req.BackendPort,
		Token:        req.Token,
		AutoSync:     req.AutoSync,
	})
	if err != nil {
		h.logger.Errorw("update settings failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "update settings failed", nil)
		return
	}

	h.logger.Infow("settings updated", "server_ip", state.ServerIP, "backend_port", state.BackendPort, "auto_sync", state.AutoSync)
	response.Success(c, http.StatusOK, viewOf(state))
}
