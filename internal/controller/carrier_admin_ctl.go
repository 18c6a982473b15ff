package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaozhang0801/ost/internal/middleware"
	"github.com/xiaozhang0801/ost/internal/service"
)

// CarrierAdminController 承运商服务注册管理接口
type CarrierAdminController struct {
	carrierSvc *service.CarrierService
}

func NewCarrierAdminController(carrierSvc *service.CarrierService) *CarrierAdminController {
	return &CarrierAdminController{carrierSvc: carrierSvc}
}

// GetCarrierList 获取承运商服务列表
// @Summary 获取承运商服务列表
// @Description 查询店铺当前已注册的 carrier service
// @Tags Carrier (承运商)
// @Produce json
// @Success 200 {object} map[string]interface{} "{"carrierServices": [...]}"
// @Failure 409 {object} map[string]string "店铺未安装"
// @Router /api/carriers [get]
func (c *CarrierAdminController) GetCarrierList(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)

	services, err := c.carrierSvc.List(ctx.Request.Context(), shop)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"carrierServices": services})
}

// EnsureCarrier 确保承运商服务已注册
// @Summary 确保承运商服务已注册
// @Description 不存在则创建，回调地址不一致则更新；幂等
// @Tags Carrier (承运商)
// @Accept json
// @Produce json
// @Success 200 {object} dto.CarrierEnsureResp "注册结果"
// @Failure 409 {object} map[string]string "店铺未安装"
// @Router /api/carriers/ensure [post]
func (c *CarrierAdminController) EnsureCarrier(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)

	var req struct {
		Name string `json:"name"`
	}
	// body 可选，解析失败按默认名称处理
	_ = ctx.ShouldBindJSON(&req)

	resp, err := c.carrierSvc.Ensure(ctx.Request.Context(), shop, req.Name)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// DiagnoseCarrier 承运商配置诊断
// @Summary 承运商配置诊断
// @Description 汇总回调地址、重名服务与当前规则概况，便于排查报价不出现的问题
// @Tags Carrier (承运商)
// @Produce json
// @Success 200 {object} dto.CarrierDiagnoseResp "诊断结果"
// @Failure 409 {object} map[string]string "店铺未安装"
// @Router /api/carriers/diagnose [get]
func (c *CarrierAdminController) DiagnoseCarrier(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)

	resp, err := c.carrierSvc.Diagnose(ctx.Request.Context(), shop)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (c *CarrierAdminController) writeError(ctx *gin.Context, err error) {
	if errors.Is(err, service.ErrShopNotInstalled) {
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "SHOP_NOT_INSTALLED"})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
