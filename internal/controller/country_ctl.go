package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xiaozhang0801/ost/pkg/countries"
)

// CountryController 国家选项接口
type CountryController struct {
	countrySvc *countries.Service
}

func NewCountryController(countrySvc *countries.Service) *CountryController {
	return &CountryController{countrySvc: countrySvc}
}

// GetCountryList 获取国家选项列表
// @Summary 获取国家选项列表
// @Description 返回国家下拉选项（label + value），远端不可用时回退内置列表
// @Tags Country (国家)
// @Produce json
// @Success 200 {object} map[string]interface{} "{"countries": [...]}"
// @Router /api/countries [get]
func (c *CountryController) GetCountryList(ctx *gin.Context) {
	options := c.countrySvc.List(ctx.Request.Context())
	ctx.JSON(http.StatusOK, gin.H{"countries": options})
}
