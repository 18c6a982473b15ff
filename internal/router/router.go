package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaozhang0801/ost/internal/controller"
	"github.com/xiaozhang0801/ost/internal/middleware"
)

// Controllers 路由所需的控制器集合
type Controllers struct {
	Carrier      *controller.CarrierController
	CarrierAdmin *controller.CarrierAdminController
	Shipping     *controller.ShippingRuleController
	Country      *controller.CountryController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	webhookCfg middleware.WebhookConfig,
	sessionSecret string,
	ctls Controllers) {
	// 1. 健康检查，平台探活用
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 2. API 路由组
	api := r.Group("/api")
	{
		// carrier 回调组，走 HMAC 校验而非 session
		carrier := api.Group("/carrier")
		{
			// POST /api/carrier/callback
			carrier.POST("/callback", middleware.WebhookAuth(webhookCfg), ctls.Carrier.Callback)

			// GET /api/carrier/callback
			// 平台注册回调地址前会探测可达性
			carrier.GET("/callback", ctls.Carrier.Health)
		}

		// 后台接口组，走 session token 校验
		authed := api.Group("", middleware.SessionAuth(sessionSecret))
		{
			// shipping 规则维护
			shipping := authed.Group("/shipping")
			{
				// GET /api/shipping/rules
				shipping.GET("/rules", ctls.Shipping.GetRuleList)
				shipping.POST("/rules", ctls.Shipping.SaveRule)
				shipping.DELETE("/rules/:id", ctls.Shipping.DeleteRule)
				shipping.POST("/rules/batch-delete", ctls.Shipping.BatchDeleteRules)

				// POST /api/shipping/import/:id
				shipping.POST("/import/:id", ctls.Shipping.ImportRule)
				shipping.GET("/export/:id", ctls.Shipping.ExportRule)
			}

			// carriers 注册管理
			carriers := authed.Group("/carriers")
			{
				carriers.GET("", ctls.CarrierAdmin.GetCarrierList)
				carriers.POST("/ensure", ctls.CarrierAdmin.EnsureCarrier)
				carriers.GET("/diagnose", ctls.CarrierAdmin.DiagnoseCarrier)
			}

			// GET /api/countries
			authed.GET("/countries", ctls.Country.GetCountryList)
		}
	}
}
