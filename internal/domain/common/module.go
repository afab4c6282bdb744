package common

import (
	"context"

	userRepo "wellness_shop/internal/domain/user/repository"
	userService "wellness_shop/internal/domain/user/service"
	commonHandler "wellness_shop/internal/pkg/common"
	"wellness_shop/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// CommonModule 健康检查、指标、文档、实时推送
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	sqlDB, err := ctx.DB.DB()
	if err != nil {
		return err
	}

	checks := map[string]commonHandler.Pinger{
		"postgres": commonHandler.PingFunc(sqlDB.PingContext),
		"redis": commonHandler.PingFunc(func(c context.Context) error {
			return ctx.Redis.Ping(c).Err()
		}),
	}
	roles := userService.NewAuthService(userRepo.NewUserRepository(ctx.DB), ctx.Sessions, nil)

	r := ctx.Router
	r.GET("/health", commonHandler.Health(checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/realtime", commonHandler.Realtime(ctx.Hub, ctx.Sessions, roles))
	return nil
}
