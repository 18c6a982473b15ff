package dto

import "github.com/xiaozhang0801/ost/internal/model"

// ==================== 规则保存 ====================

// RangeItem 保存请求中的单个区间行。
// 上下界同时兼容 from/fromVal、to/toVal 两组字段名。
type RangeItem struct {
	From     *FlexNumber `json:"from"`
	FromVal  *FlexNumber `json:"fromVal"`
	To       *FlexNumber `json:"to"`
	ToVal    *FlexNumber `json:"toVal"`
	Unit     string      `json:"unit"`
	PricePer FlexNumber  `json:"pricePer"`
	Fee      FlexNumber  `json:"fee"`
	FeeUnit  string      `json:"feeUnit"`
}

// Lower 解析区间下界，优先 from
func (r RangeItem) Lower() FlexNumber {
	if r.From != nil && r.From.Set {
		return *r.From
	}
	if r.FromVal != nil {
		return *r.FromVal
	}
	return FlexNumber{}
}

// Upper 解析区间上界，优先 to
func (r RangeItem) Upper() FlexNumber {
	if r.To != nil && r.To.Set {
		return *r.To
	}
	if r.ToVal != nil {
		return *r.ToVal
	}
	return FlexNumber{}
}

// ShippingRuleSaveReq 创建/更新运费规则请求（带 id 为更新）
type ShippingRuleSaveReq struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ChargeBy    string         `json:"chargeBy"`
	Countries   []CountryField `json:"countries"`
	Description *string        `json:"description"`
	Ranges      []RangeItem    `json:"ranges"`
}

// ShippingRuleListResp 规则列表响应
type ShippingRuleListResp struct {
	Rules []model.ShippingRule `json:"rules"`
}

// BatchDeleteReq 批量删除请求
type BatchDeleteReq struct {
	IDs []string `json:"ids" binding:"required"`
}

// ==================== 表格导入 ====================

// RangePreview 导入预览中的区间行
type RangePreview struct {
	FromVal  string `json:"fromVal"`
	ToVal    string `json:"toVal"`
	Unit     string `json:"unit"`
	PricePer string `json:"pricePer"`
	Fee      string `json:"fee"`
	FeeUnit  string `json:"feeUnit"`
}

// ImportPreviewResp 导入解析结果。只回显不落库，
// 前端回填表单后由保存接口统一校验持久化。
type ImportPreviewResp struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	ChargeBy  string         `json:"chargeBy"`
	Countries []string       `json:"countries"`
	Ranges    []RangePreview `json:"ranges"`
}
