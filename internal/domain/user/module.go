package user

import (
	"wellness_shop/internal/domain/user/handler"
	"wellness_shop/internal/domain/user/repository"
	"wellness_shop/internal/domain/user/service"
	"wellness_shop/internal/pkg/middleware"
	"wellness_shop/internal/pkg/registry"
)

// UserModule 后台账号与会话
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 其他模块的管理员校验依赖用户表
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	userRepo := repository.NewUserRepository(ctx.DB)
	authService := service.NewAuthService(userRepo, ctx.Sessions, ctx.Publisher)
	userHandler := handler.NewUserHandler(authService)

	setupRoutes(ctx, userHandler)
	return nil
}

func setupRoutes(ctx *registry.ModuleContext, h *handler.UserHandler) {
	authGroup := ctx.Router.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
	}

	sessionGroup := ctx.Router.Group("/auth")
	sessionGroup.Use(middleware.AuthMiddleware(ctx.Sessions))
	{
		sessionGroup.GET("/session", h.Session)
		sessionGroup.POST("/logout", h.Logout)
		sessionGroup.POST("/password", h.ChangePassword)
	}
}
