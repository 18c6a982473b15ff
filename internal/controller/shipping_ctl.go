package controller

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/xiaozhang0801/ost/internal/api/dto"
	"github.com/xiaozhang0801/ost/internal/middleware"
	"github.com/xiaozhang0801/ost/internal/service"
)

// ShippingRuleController 运费规则后台接口
type ShippingRuleController struct {
	ruleSvc     *service.ShippingRuleService
	transferSvc *service.TransferService
}

func NewShippingRuleController(ruleSvc *service.ShippingRuleService, transferSvc *service.TransferService) *ShippingRuleController {
	return &ShippingRuleController{
		ruleSvc:     ruleSvc,
		transferSvc: transferSvc,
	}
}

// ==================== 规则 CRUD ====================

// GetRuleList 获取规则列表
// @Summary 获取规则列表
// @Description 获取当前店铺的全部运费规则；国家已标准化，区间升序
// @Tags ShippingRule (运费规则)
// @Produce json
// @Success 200 {object} dto.ShippingRuleListResp "规则列表"
// @Failure 500 {object} map[string]string "查询失败"
// @Router /api/shipping/rules [get]
func (c *ShippingRuleController) GetRuleList(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)

	rules, err := c.ruleSvc.List(ctx.Request.Context(), shop)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.ShippingRuleListResp{Rules: rules})
}

// SaveRule 保存规则
// @Summary 保存规则
// @Description 创建或更新运费规则（带 id 为更新）；区间整体替换
// @Tags ShippingRule (运费规则)
// @Accept json
// @Produce json
// @Param request body dto.ShippingRuleSaveReq true "规则参数"
// @Success 200 {object} service.SaveResult "保存结果"
// @Failure 400 {object} map[string]string "参数不完整"
// @Failure 404 {object} map[string]string "规则不存在或无权限"
// @Failure 409 {object} map[string]string "名称重复"
// @Failure 422 {object} map[string]interface{} "区间校验失败（含全部违规项）"
// @Router /api/shipping/rules [post]
func (c *ShippingRuleController) SaveRule(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)

	var req dto.ShippingRuleSaveReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	result, err := c.ruleSvc.Save(ctx.Request.Context(), shop, &req)
	if err != nil {
		c.writeSaveError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// DeleteRule 删除规则
// @Summary 删除规则
// @Description 删除规则并级联删除其区间
// @Tags ShippingRule (运费规则)
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Failure 404 {object} map[string]string "规则不存在或无权限"
// @Router /api/shipping/rules/{id} [delete]
func (c *ShippingRuleController) DeleteRule(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)
	id := ctx.Param("id")

	if err := c.ruleSvc.Delete(ctx.Request.Context(), shop, id); err != nil {
		if errors.Is(err, service.ErrRuleNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// BatchDeleteRules 批量删除规则
// @Summary 批量删除规则
// @Description 批量删除，自动跳过不归属当前店铺的 id
// @Tags ShippingRule (运费规则)
// @Accept json
// @Produce json
// @Param request body dto.BatchDeleteReq true "规则ID列表"
// @Success 200 {object} map[string]int64 "{"deleted": n}"
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/shipping/rules/batch-delete [post]
func (c *ShippingRuleController) BatchDeleteRules(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)

	var req dto.BatchDeleteReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	deleted, err := c.ruleSvc.BatchDelete(ctx.Request.Context(), shop, req.IDs)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ==================== 导入 / 导出 ====================

// ImportRule 导入区间表
// @Summary 导入区间表
// @Description 解析上传的 .xls 工作簿并返回预览；不落库，保存走规则保存接口
// @Tags ShippingRule (运费规则)
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "规则ID"
// @Param file formData file true "Excel 2003 XML 工作簿"
// @Success 200 {object} map[string]interface{} "{"rule": 预览, "imported": true, "persisted": false}"
// @Failure 400 {object} map[string]string "文件缺失或格式错误"
// @Failure 404 {object} map[string]string "规则不存在或无权限"
// @Router /api/shipping/import/{id} [post]
func (c *ShippingRuleController) ImportRule(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)
	id := ctx.Param("id")

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少文件"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "读取文件失败"})
		return
	}
	defer file.Close()

	preview, err := c.transferSvc.ImportPreview(ctx.Request.Context(), shop, id, file)
	if err != nil {
		var formatErr *service.ImportFormatError
		switch {
		case errors.Is(err, service.ErrRuleNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.As(err, &formatErr):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": formatErr.Reason})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rule": preview, "imported": true, "persisted": false})
}

// ExportRule 导出区间表
// @Summary 导出区间表
// @Description 导出规则为 .xls 附件；区间按 (fromVal, toVal) 升序
// @Tags ShippingRule (运费规则)
// @Produce application/vnd.ms-excel
// @Param id path string true "规则ID"
// @Success 200 {file} binary "工作簿文件"
// @Failure 404 {object} map[string]string "规则不存在或无权限"
// @Router /api/shipping/export/{id} [get]
func (c *ShippingRuleController) ExportRule(ctx *gin.Context) {
	shop := middleware.ShopFromContext(ctx)
	id := ctx.Param("id")

	fileName, content, err := c.transferSvc.Export(ctx.Request.Context(), shop, id)
	if err != nil {
		if errors.Is(err, service.ErrRuleNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+url.PathEscape(fileName)+`"`)
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "application/vnd.ms-excel; charset=utf-8", content)
}

// writeSaveError 保存失败的错误分类输出
func (c *ShippingRuleController) writeSaveError(ctx *gin.Context, err error) {
	var validationErr *service.RangeValidationError
	switch {
	case errors.Is(err, service.ErrIncompleteParams):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
	case errors.Is(err, service.ErrRuleNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNameDuplicate):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "NAME_DUPLICATE"})
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       validationErr.Error(),
			"code":        "INVALID_RANGES",
			"fieldErrors": gin.H{"ranges": validationErr.Errors},
		})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
