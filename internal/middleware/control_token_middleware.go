/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 11:02:33
 * @FilePath: \health-companion-app\internal\middleware\control_token_middleware.go
 * @LastEditTime: 2025-10-19 11:02:38
 */
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ControlTokenMiddleware 校验控制面接口的共享令牌。
// 令牌是不透明的共享密钥，通过查询参数或 X-Auth-Token 头携带；
// 未配置令牌时（仅监听回环地址的默认部署）放行所有请求。
type ControlTokenMiddleware struct {
	token string
}

// NewControlTokenMiddleware 创建控制面鉴权中间件。
func NewControlTokenMiddleware(token string) *ControlTokenMiddleware {
	return &ControlTokenMiddleware{token: token}
}

// Handle 返回 Gin 中间件。
func (m *ControlTokenMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.token == "" {
			c.Next()
			return
		}

		provided := c.Query("token")
		if provided == "" {
			provided = c.GetHeader("X-Auth-Token")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Next()
	}
}
