package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/xiaozhang0801/ost/internal/middleware"
	"github.com/xiaozhang0801/ost/internal/model"
	"github.com/xiaozhang0801/ost/internal/repository"
	"github.com/xiaozhang0801/ost/internal/service"
	"github.com/xiaozhang0801/ost/pkg/shopify"
)

// ==================== 测试辅助 ====================

func setupCarrierAdminRouter(t *testing.T, shop string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db := setupCarrierCtlTestDB(t)
	if err := db.AutoMigrate(&model.ShopSession{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	svc := service.NewCarrierService(
		service.CarrierConfig{AppURL: "https://app.example.com", ServiceName: "自定义运费"},
		shopify.NewAdminClient(),
		repository.NewShopSessionRepository(db),
		repository.NewShippingRuleRepository(db),
	)
	ctl := NewCarrierAdminController(svc)

	r := gin.New()
	api := r.Group("/api/carriers", func(c *gin.Context) {
		c.Set(middleware.CtxShop, shop)
		c.Next()
	})
	{
		api.GET("", ctl.GetCarrierList)
		api.POST("/ensure", ctl.EnsureCarrier)
		api.GET("/diagnose", ctl.DiagnoseCarrier)
	}
	return r
}

// ==================== 单元测试 ====================

func TestCarrierAdmin_NotInstalledReturns409(t *testing.T) {
	r := setupCarrierAdminRouter(t, "ghost.myshopify.com")

	// 未安装店铺的所有管理接口统一 409
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/carriers"},
		{http.MethodPost, "/api/carriers/ensure"},
		{http.MethodGet, "/api/carriers/diagnose"},
	}

	for _, tt := range tests {
		var req *http.Request
		if tt.method == http.MethodPost {
			req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(tt.method, tt.path, nil)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code, "%s %s", tt.method, tt.path)
		assert.Contains(t, w.Body.String(), "SHOP_NOT_INSTALLED")
	}
}
