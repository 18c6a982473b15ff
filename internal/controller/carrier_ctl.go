package controller

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaozhang0801/ost/internal/api/dto"
	"github.com/xiaozhang0801/ost/internal/middleware"
	"github.com/xiaozhang0801/ost/internal/service"
)

// CarrierController 平台询价回调入口
type CarrierController struct {
	quoteSvc *service.QuoteService
}

func NewCarrierController(quoteSvc *service.QuoteService) *CarrierController {
	return &CarrierController{quoteSvc: quoteSvc}
}

// Callback 询价回调
// @Summary 询价回调
// @Description 平台结账时同步调用，返回候选运费报价；签名已由中间件校验
// @Tags Carrier (承运商)
// @Accept json
// @Produce json
// @Success 200 {object} dto.CarrierCallbackResp "候选报价（可为空数组）"
// @Failure 400 {object} map[string]string "请求体不是合法 JSON"
// @Failure 401 {object} map[string]string "签名校验失败"
// @Router /api/carrier/callback [post]
func (c *CarrierController) Callback(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)

	var req dto.CarrierCallbackReq
	if err := json.Unmarshal(middleware.RawBody(ctx), &req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	rates, err := c.quoteSvc.Quote(ctx.Request.Context(), shop, &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[carrier.callback] shop=%s items=%d rates=%d",
		shop, len(req.Rate.Items), len(rates))

	ctx.JSON(http.StatusOK, dto.CarrierCallbackResp{Rates: rates})
}

// Health 回调探活
// @Summary 回调探活
// @Tags Carrier (承运商)
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/carrier/callback [get]
func (c *CarrierController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
