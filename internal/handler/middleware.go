package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// viewerContextKey 存放解析出的当前浏览者 id
const viewerContextKey = "viewer_id"

// AuthRequired 认证中间件：优先读会话，其次读 Bearer 令牌，两者皆无则拒绝。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewerID := a.resolveViewer(c); viewerID != 0 {
			c.Set(viewerContextKey, viewerID)
			c.Next()
			return
		}

		respondError(c, http.StatusUnauthorized, "authentication required")
		c.Abort()
	}
}

// OptionalAuth 在凭证存在时填充浏览者身份，匿名请求照常放行。
func (a *API) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewerID := a.resolveViewer(c); viewerID != 0 {
			c.Set(viewerContextKey, viewerID)
		}
		c.Next()
	}
}

func (a *API) resolveViewer(c *gin.Context) uint {
	session := sessions.Default(c)
	if raw := session.Get("user_id"); raw != nil {
		if id, ok := raw.(uint); ok && id != 0 {
			return id
		}
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return 0
	}

	id, err := a.auth.ParseToken(strings.TrimSpace(authHeader[7:]))
	if err != nil {
		return 0
	}
	return id
}

// currentViewerID 返回中间件写入的浏览者 id，匿名时为 0。
func currentViewerID(c *gin.Context) uint {
	if raw, exists := c.Get(viewerContextKey); exists {
		if id, ok := raw.(uint); ok {
			return id
		}
	}
	return 0
}
