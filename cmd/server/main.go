package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "wellness_shop/docs"
	_ "wellness_shop/internal/domain/catalog"
	_ "wellness_shop/internal/domain/common"
	_ "wellness_shop/internal/domain/order"
	_ "wellness_shop/internal/domain/user"
	"wellness_shop/internal/pkg/config"
	"wellness_shop/internal/pkg/middleware"
	"wellness_shop/internal/pkg/push"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/internal/pkg/registry"
	"wellness_shop/internal/pkg/session"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/cache"
	"wellness_shop/pkg/database"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title Wellness Shop API
// @version 1.0
// @description 单品店铺：下单、支付凭证、后台审核与目录管理
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	if err := logger.InitLogger(cfg.App.Debug); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := database.InitDatabase()
	rdb := database.InitRedis()
	collector := metrics.GetGlobalCollector()

	ossUploader, err := uploader.NewAliyunOSSUploader(cfg.OSS)
	if err != nil {
		logger.Log.Fatal("init oss uploader", zap.Error(err))
	}

	// 未配置推送时只记日志，不影响下单
	var pushService push.PushService = push.NopPushService{}
	if p, err := push.NewAliyunPushService(cfg.Push); err != nil {
		logger.Log.Warn("operator push disabled", zap.Error(err))
	} else {
		pushService = p
	}

	hub := realtime.NewHub(collector)
	go hub.Run(ctx)
	broker := realtime.NewRedisBroker(rdb, cfg.Realtime.Channel, hub)
	go broker.Run(ctx)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Trace-ID"},
		ExposeHeaders:    []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(collector))
	r.Use(middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(rate.Limit(20), 40)))

	moduleCtx := &registry.ModuleContext{
		Ctx:       ctx,
		DB:        db,
		Redis:     rdb,
		Router:    r,
		Sessions:  session.NewRedisStore(rdb),
		Cache:     cache.NewRedisCache(rdb, "shop:"),
		Uploader:  ossUploader,
		Publisher: broker,
		Hub:       hub,
		Push:      pushService,
		Metrics:   collector,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("init modules", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	logger.Log.Info("server exited")
}
