package middleware

import (
	"errors"
	"net/http"

	"shortly-platform/internal/model"
	"shortly-platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserKey 认证通过后保存在 gin.Context 中的用户
const ContextUserKey = "user"

// AuthMiddleware 从 HTTP-only Cookie 中解析会话并加载用户
func AuthMiddleware(authService *service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthenticated) {
				zap.S().Errorw("会话校验失败", "error", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		// 将用户信息存入上下文
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser 取出认证中间件写入的用户
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
