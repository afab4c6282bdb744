package order

import (
	"fmt"
	"time"

	catalogRepo "wellness_shop/internal/domain/catalog/repository"
	catalogService "wellness_shop/internal/domain/catalog/service"
	"wellness_shop/internal/domain/order/handler"
	"wellness_shop/internal/domain/order/presenter"
	"wellness_shop/internal/domain/order/repository"
	"wellness_shop/internal/domain/order/service"
	userRepo "wellness_shop/internal/domain/user/repository"
	userService "wellness_shop/internal/domain/user/service"
	"wellness_shop/internal/pkg/config"
	"wellness_shop/internal/pkg/middleware"
	"wellness_shop/internal/pkg/push"
	"wellness_shop/internal/pkg/registry"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/internal/pkg/worker"

	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"
)

// OrderModule 下单、支付凭证、后台审核
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 促销码校验依赖目录模块
	return 20
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	cfg := config.GlobalConfig

	sqlDB, err := ctx.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	report := sqlx.NewDb(sqlDB, "pgx")

	presenters := presenter.NewRegistry(
		presenter.NewOrangePresenter(cfg.Store.OrangeMoneyNumber, cfg.Store.Currency),
		presenter.NewWavePresenter(cfg.Store.WavePaymentLink, cfg.Store.WaveQRCodeURL, cfg.Store.Currency),
	).WithWhatsApp(cfg.Store.WhatsAppNumber)

	promotions := catalogService.NewPromotionService(
		catalogRepo.NewPromotionRepository(ctx.DB), ctx.Cache, ctx.Publisher, ctx.Metrics)

	orderService := service.NewOrderService(service.Dependencies{
		Repo:       repository.NewOrderRepository(ctx.DB, report),
		Promotions: promotions,
		Presenters: presenters,
		Uploader:   ctx.Uploader,
		Publisher:  ctx.Publisher,
		Notifier:   push.NewOperatorNotifier(ctx.Push, cfg.Push.OperatorAccount),
		Metrics:    ctx.Metrics,
	}, service.Settings{
		UnitPrice:   cfg.Store.UnitPrice,
		ProofBucket: cfg.Upload.ProofBucket,
		ProofRule:   uploader.ProofRule(cfg.Upload.ProofMaxBytes),
	})

	roles := userService.NewAuthService(userRepo.NewUserRepository(ctx.DB), ctx.Sessions, nil)

	setupRoutes(ctx,
		handler.NewOrderHandler(orderService, cfg.Upload.ProofMaxBytes),
		handler.NewAdminOrderHandler(orderService),
		roles,
	)

	if cfg.Reconcile.Enabled {
		reconciler := worker.NewReconciler(orderService, worker.ReconcilerOptions{
			Interval:       cfg.Reconcile.Interval,
			PendingTimeout: cfg.Reconcile.PendingTimeout,
			BatchSize:      cfg.Reconcile.BatchSize,
			AutoCancel:     cfg.Reconcile.AutoCancel,
		})
		go reconciler.Start(ctx.Ctx)
	}
	return nil
}

func setupRoutes(ctx *registry.ModuleContext, h *handler.OrderHandler, admin *handler.AdminOrderHandler, roles middleware.RoleChecker) {
	// 下单与上传比全局限流更严格：每个 IP 每分钟 10 次
	orderLimiter := middleware.NewIPRateLimiter(rate.Every(time.Minute/10), 5)

	orderGroup := ctx.Router.Group("/orders")
	orderGroup.Use(middleware.RateLimitMiddleware(orderLimiter))
	{
		orderGroup.POST("", h.CreateOrder)
		orderGroup.GET("/:id/instructions", h.GetInstructions)
		orderGroup.POST("/:id/proof", h.UploadProof)
	}

	adminGroup := ctx.Router.Group("/admin/orders")
	adminGroup.Use(middleware.AuthMiddleware(ctx.Sessions), middleware.AdminMiddleware(roles))
	{
		adminGroup.GET("", admin.ListOrders)
		adminGroup.GET("/summary", admin.Summary)
		adminGroup.GET("/:id", admin.GetOrder)
		adminGroup.PUT("/:id/status", admin.UpdateStatus)
	}
}
