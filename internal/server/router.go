/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 16:44:02
 * @FilePath: \health-companion-app\internal\server\router.go
 * @LastEditTime: 2025-10-19 16:44:08
 */
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"health-companion-app/internal/handler"
	"health-companion-app/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	StatusHandler    *handler.StatusHandler
	SyncHandler      *handler.SyncHandler
	SettingsHandler  *handler.SettingsHandler
	DashboardHandler *handler.DashboardHandler
	ControlToken     *middleware.ControlTokenMiddleware
}

// NewRouter 构建代理控制面的 Gin Engine，汇总所有 REST 接口与公共中间件配置。
// 控制面默认只在回环地址上监听，CORS 仅放行本机来源。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// gin 中间件配置
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  false,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
		AllowOriginFunc: func(origin string) bool {
			if origin == "" {
				return false
			}
			if origin == "null" {
				return true
			}
			if strings.HasPrefix(origin, "http://localhost:") {
				return true
			}
			if strings.HasPrefix(origin, "http://127.0.0.1:") {
				return true
			}
			return false
		},
	}))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: gin.LogFormatter(func(params gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s\" %d %s\n",
				params.ClientIP,
				params.TimeStamp.Format(time.RFC3339),
				params.Method,
				params.Path,
				params.StatusCode,
				params.Latency,
			)
		}),
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if opts.ControlToken != nil {
		api.Use(opts.ControlToken.Handle())
	}
	{
		if opts.StatusHandler != nil {
			api.GET("/status", opts.StatusHandler.Get)
		}
		if opts.SyncHandler != nil {
			api.POST("/sync", opts.SyncHandler.Trigger)
		}
		if opts.SettingsHandler != nil {
			api.GET("/settings", opts.SettingsHandler.Get)
			api.PUT("/settings", opts.SettingsHandler.Update)
		}
		if opts.DashboardHandler != nil {
			api.POST("/reload", opts.DashboardHandler.Reload)

			dash := api.Group("/dashboard")
			dash.GET("", opts.DashboardHandler.Get)
			dash.GET("/current", opts.DashboardHandler.Current)
			dash.POST("/reload", opts.DashboardHandler.Reload)
			dash.POST("/navigate", opts.DashboardHandler.Navigate)
		}
	}

	return r
}
