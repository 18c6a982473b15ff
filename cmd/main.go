package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/xiaozhang0801/ost/internal/controller"
	"github.com/xiaozhang0801/ost/internal/middleware"
	"github.com/xiaozhang0801/ost/internal/model"
	"github.com/xiaozhang0801/ost/internal/repository"
	"github.com/xiaozhang0801/ost/internal/router"
	"github.com/xiaozhang0801/ost/internal/service"
	"github.com/xiaozhang0801/ost/internal/task"
	"github.com/xiaozhang0801/ost/pkg/countries"
	"github.com/xiaozhang0801/ost/pkg/database"
	"github.com/xiaozhang0801/ost/pkg/shopify"
)

func main() {
	// 0. 加载环境变量（本地开发用，线上由部署环境注入）
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		middleware.WebhookConfig{
			Secret:     getEnv("SHOPIFY_API_SECRET", ""),
			SkipVerify: getEnvBool("DEV_SKIP_HMAC", false),
		},
		getEnv("SHOPIFY_API_SECRET", ""),
		*deps.Controllers,
	)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	CountrySvc  *countries.Service
}

// Repositories 仓库集合
type Repositories struct {
	Rule    repository.ShippingRuleRepository
	Session repository.ShopSessionRepository
}

// Services 服务集合
type Services struct {
	Rule     *service.ShippingRuleService
	Quote    *service.QuoteService
	Transfer *service.TransferService
	Carrier  *service.CarrierService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	return database.InitDB(
		getEnv("DATABASE_URL", ""),
		// Shipping
		&model.ShippingRule{}, &model.ShippingRange{},
		// Session
		&model.ShopSession{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Rule:    repository.NewShippingRuleRepository(db),
		Session: repository.NewShopSessionRepository(db),
	}

	// -------- 基础服务 --------
	countrySvc := countries.NewService(6 * time.Hour)
	adminClient := shopify.NewAdminClient()

	// -------- 业务服务 --------
	services := &Services{
		Rule:     service.NewShippingRuleService(repos.Rule),
		Quote:    service.NewQuoteService(repos.Rule),
		Transfer: service.NewTransferService(repos.Rule),
		Carrier: service.NewCarrierService(service.CarrierConfig{
			AppURL:      getEnv("SHOPIFY_APP_URL", ""),
			ServiceName: getEnv("CARRIER_SERVICE_NAME", "自定义运费"),
		}, adminClient, repos.Session, repos.Rule),
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Carrier:      controller.NewCarrierController(services.Quote),
		CarrierAdmin: controller.NewCarrierAdminController(services.Carrier),
		Shipping:     controller.NewShippingRuleController(services.Rule, services.Transfer),
		Country:      controller.NewCountryController(countrySvc),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		CountrySvc:  countrySvc,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	// 国家选项缓存预热与刷新
	countryTask := task.NewCountryTask(deps.CountrySvc)
	countryTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 10 秒
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
