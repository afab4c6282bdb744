package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"wellness_shop/internal/pkg/session"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/response"
	"wellness_shop/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 上下文键
const (
	CtxUserID    = "userID"
	CtxRole      = "role"
	CtxSessionID = "sessionID"
)

// RoleChecker 按 user_roles 表判断管理员
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// BearerToken 从 Authorization 头取出 token，WebSocket 场景允许 ?access_token=
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("access_token")
}

// Authenticate 校验 token 和 Redis 会话，成功时返回 claims
func Authenticate(c *gin.Context, sessions session.Store) (*utils.Claims, error) {
	tokenString := BearerToken(c)
	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 登出后会话被删除，token 立即失效
	userID, err := sessions.Get(c.Request.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if userID != claims.UserID {
		return nil, errors.New("session does not match token")
	}
	return claims, nil
}

// AuthMiddleware JWT + 会话认证中间件
func AuthMiddleware(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := Authenticate(c, sessions)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxSessionID, claims.ID)

		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件，必须放在 AuthMiddleware 之后
func AdminMiddleware(checker RoleChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Unauthorized")
			c.Abort()
			return
		}

		ok, err := checker.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			logger.Log.Error("role lookup failed", zap.String("user_id", userID), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, response.MsgRetry)
			c.Abort()
			return
		}
		if !ok {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Admin permission required")
			c.Abort()
			return
		}

		c.Next()
	}
}
