package registry

import (
	"context"
	"sort"

	"wellness_shop/internal/pkg/push"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/internal/pkg/session"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/cache"
	"wellness_shop/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	// Ctx 进程生命周期，后台任务在它结束时退出
	Ctx    context.Context
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine

	Sessions  session.Store
	Cache     cache.CacheService
	Uploader  uploader.Uploader
	Publisher realtime.Publisher
	Hub       *realtime.Hub
	Push      push.PushService
	Metrics   *metrics.MetricsCollector
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// sortedModules 按优先级排序，同优先级按名称保证顺序稳定
func sortedModules() []Module {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range sortedModules() {
		if err := module.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}
