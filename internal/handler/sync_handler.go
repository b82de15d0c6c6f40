/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 15:18:30
 * @FilePath: \health-companion-app\internal\handler\sync_handler.go
 * @LastEditTime: 2025-10-19 15:18:35
 */
package handler

import (
	"context"
	"net/http"
	"time"

	"health-companion-app/internal/domain/health"
	response "health-companion-app/internal/infra/common"
	appLogger "health-companion-app/internal/infra/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ManualSyncer 对指定日历日执行一次同步并返回布尔结果。
type ManualSyncer interface {
	SyncDate(ctx context.Context, day time.Time) bool
}

// SyncHandler 承接用户显式发起的同步请求。请求同步执行，
// 调用方在响应里直接拿到本次结果，不排队也不重试。
type SyncHandler struct {
	syncer ManualSyncer
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewSyncHandler 构造手动同步 handler。
func NewSyncHandler(syncer ManualSyncer) *SyncHandler {
	return &SyncHandler{
		syncer: syncer,
		now:    time.Now,
		logger: appLogger.S().With("component", "sync.handler"),
	}
}

// SyncRequest 描述手动同步的请求体。date 接受 today、yesterday
// 或具体日期（2006-01-02），缺省为 today——手动同步允许同步当天的不完整数据。
type SyncRequest struct {
	Date string `json:"date"`
}

// Trigger 执行一次手动同步。
func (h *SyncHandler) Trigger(c *gin.Context) {
	var req SyncRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid request body", err.Error())
			return
		}
	}

	day, ok := h.resolveDate(req.Date)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid date, expected today, yesterday or 2006-01-02", nil)
		return
	}

	date := health.FormatDate(day)
	log := h.logger.With("date", date)
	log.Infow("manual sync requested")

	if !h.syncer.SyncDate(c.Request.Context(), day) {
		log.Warnw("manual sync failed")
		response.Fail(c, http.StatusBadGateway, response.ErrSyncFailed, "sync failed, see agent logs", gin.H{"date": date})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":    date,
		"trigger": "manual",
	})
}

// resolveDate 把请求里的日期标记解析成具体日历日。
func (h *SyncHandler) resolveDate(raw string) (time.Time, bool) {
	switch raw {
	case "", "today":
		return h.now(), true
	case "yesterday":
		return h.now().AddDate(0, 0, -1), true
	default:
		day, err := time.ParseInLocation(health.DateLayout, raw, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return day, true
	}
}
