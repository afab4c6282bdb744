package handler

import (
	"context"
	"net/http"
	"time"

	"wellness_shop/internal/pkg/middleware"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/internal/pkg/session"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc 适配函数为 Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health 依次检查各依赖，任何一个失败返回 503
// @Summary 健康检查
// @Tags Common
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 503 {object} response.Response{data=map[string]string}
// @Router /health [get]
func Health(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := make(map[string]string, len(checks))
		healthy := true
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				status[name] = "down"
				healthy = false
				logger.Log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			response.ErrorWithData(c, http.StatusServiceUnavailable, response.ErrServerInternal, "unhealthy", status)
			return
		}
		response.Success(c, status)
	}
}

// Realtime 升级为 WebSocket 并订阅 ?tables=，orders/auth 需要管理员 token
// @Summary 订阅数据变更推送
// @Tags Common
// @Param tables query string true "Comma separated tables, e.g. promotions,images"
// @Param access_token query string false "Admin token for admin-only tables"
// @Success 101
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /realtime [get]
func Realtime(hub *realtime.Hub, sessions session.Store, roles middleware.RoleChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables := realtime.ParseTables(c.Query("tables"))
		if len(tables) == 0 {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "tables is required")
			return
		}

		if needsAdmin(tables) {
			claims, err := middleware.Authenticate(c, sessions)
			if err != nil {
				response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Unauthorized")
				return
			}
			ok, err := roles.IsAdmin(c.Request.Context(), claims.UserID)
			if err != nil {
				response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, response.MsgRetry)
				return
			}
			if !ok {
				response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Accès refusé")
				return
			}
		}

		hub.Serve(c.Writer, c.Request, tables)
	}
}

func needsAdmin(tables []string) bool {
	for _, t := range tables {
		if realtime.IsAdminTable(t) {
			return true
		}
	}
	return false
}
