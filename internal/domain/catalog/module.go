package catalog

import (
	"wellness_shop/internal/domain/catalog/handler"
	"wellness_shop/internal/domain/catalog/repository"
	"wellness_shop/internal/domain/catalog/service"
	userRepo "wellness_shop/internal/domain/user/repository"
	userService "wellness_shop/internal/domain/user/service"
	"wellness_shop/internal/pkg/config"
	"wellness_shop/internal/pkg/middleware"
	"wellness_shop/internal/pkg/registry"
	"wellness_shop/internal/pkg/uploader"
)

// CatalogModule 促销、图片、视频
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 10
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig.Upload

	promotionService := service.NewPromotionService(
		repository.NewPromotionRepository(ctx.DB), ctx.Cache, ctx.Publisher, ctx.Metrics)
	mediaService := service.NewMediaService(
		repository.NewImageRepository(ctx.DB),
		repository.NewVideoRepository(ctx.DB),
		ctx.Uploader, ctx.Publisher, ctx.Metrics,
		service.MediaSettings{
			VideoBucket: cfg.VideoBucket,
			VideoRule:   uploader.VideoRule(cfg.VideoMaxBytes),
		},
	)

	// 管理员校验复用用户模块
	roles := userService.NewAuthService(userRepo.NewUserRepository(ctx.DB), ctx.Sessions, nil)

	setupRoutes(ctx,
		handler.NewPromotionHandler(promotionService),
		handler.NewMediaHandler(mediaService, cfg.VideoMaxBytes),
		roles,
	)
	return nil
}

func setupRoutes(ctx *registry.ModuleContext, promos *handler.PromotionHandler, media *handler.MediaHandler, roles middleware.RoleChecker) {
	public := ctx.Router.Group("")
	{
		public.GET("/promotions/active", promos.ListActive)
		public.GET("/images", media.ListImages)
		public.GET("/images/:key", media.GetImage)
		public.GET("/videos", media.ListActiveVideos)
	}

	admin := ctx.Router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(ctx.Sessions), middleware.AdminMiddleware(roles))
	{
		admin.GET("/promotions", promos.List)
		admin.POST("/promotions", promos.Create)
		admin.PUT("/promotions/:id", promos.Update)
		admin.PATCH("/promotions/:id/active", promos.SetActive)
		admin.DELETE("/promotions/:id", promos.Delete)

		admin.GET("/images", media.ListImages)
		admin.POST("/images", media.CreateImage)
		admin.PUT("/images/:id", media.UpdateImage)
		admin.DELETE("/images/:id", media.DeleteImage)

		admin.GET("/videos", media.ListVideos)
		admin.POST("/videos", media.CreateVideo)
		admin.POST("/videos/upload", media.UploadVideo)
		admin.PUT("/videos/:id", media.UpdateVideo)
		admin.PATCH("/videos/:id/active", media.SetVideoActive)
		admin.DELETE("/videos/:id", media.DeleteVideo)
	}
}
