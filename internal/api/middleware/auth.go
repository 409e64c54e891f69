package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/jwt"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/response"
)

const (
	UserIDKey  = "userID"
	IsAdminKey = "isAdmin"
)

// authenticate 校验请求上的 token，成功时把声明写入上下文。
// 失败时写入错误响应并 Abort，不触发后续 handler。
func authenticate(c *gin.Context, jwtSecret string) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.AuthError(c, "请提供认证信息")
		c.Abort()
		return false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		response.AuthError(c, "认证格式错误")
		c.Abort()
		return false
	}

	claims, err := jwt.ParseToken(tokenString, jwtSecret)
	if err != nil {
		response.AuthError(c, "认证失败或已过期")
		c.Abort()
		return false
	}

	c.Set(UserIDKey, claims.UserID)
	c.Set(IsAdminKey, claims.IsAdmin)
	return true
}

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, jwtSecret) {
			return
		}
		c.Next()
	}
}

// AdminAuth 后台接口鉴权，要求 token 带 is_admin 声明。
// 先鉴权再查声明，都通过后才放行到业务 handler。
func AdminAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, jwtSecret) {
			return
		}
		if !GetIsAdmin(c) {
			response.PermissionError(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// GetIsAdmin 从上下文获取管理员标记
func GetIsAdmin(c *gin.Context) bool {
	isAdmin, exists := c.Get(IsAdminKey)
	if !exists {
		return false
	}
	flag, ok := isAdmin.(bool)
	return ok && flag
}
