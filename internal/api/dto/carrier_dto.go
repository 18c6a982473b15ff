package dto

// ==================== 承运商回调 ====================

// CarrierAddress 回调中的地址，国家字段存在两个来源
type CarrierAddress struct {
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// CountryOrCode 目的地国家（优先 country，其次 country_code）
func (a CarrierAddress) CountryOrCode() string {
	if a.Country != "" {
		return a.Country
	}
	return a.CountryCode
}

// CarrierItem 回调中的行项目；重量为克。
// 数值字段缺失或非法时按 0 计，单行脏数据不影响整单报价。
type CarrierItem struct {
	Name     string     `json:"name"`
	Grams    FlexNumber `json:"grams"`
	Quantity FlexNumber `json:"quantity"`
}

// CarrierRateReq 回调中的 rate 段
type CarrierRateReq struct {
	Origin      CarrierAddress `json:"origin"`
	Destination CarrierAddress `json:"destination"`
	Items       []CarrierItem  `json:"items"`
	Currency    string         `json:"currency"`
}

// CarrierCallbackReq 平台询价回调请求体
type CarrierCallbackReq struct {
	Rate CarrierRateReq `json:"rate"`
}

// CarrierRate 单条候选报价；total_price 为最小货币单位（分）的字符串
type CarrierRate struct {
	ServiceName string `json:"service_name"`
	ServiceCode string `json:"service_code"`
	TotalPrice  string `json:"total_price"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// CarrierCallbackResp 回调响应；空数组是合法结果
type CarrierCallbackResp struct {
	Rates []CarrierRate `json:"rates"`
}

// ==================== 承运商服务管理 ====================

// CarrierServiceBrief 服务列表项（只输出关键字段）
type CarrierServiceBrief struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	CallbackURL      string `json:"callback_url"`
	ServiceDiscovery bool   `json:"service_discovery"`
}

// CarrierDuplicate 同名服务分组
type CarrierDuplicate struct {
	Name  string                `json:"name"`
	Count int                   `json:"count"`
	Items []CarrierServiceBrief `json:"items"`
}

// RangeBrief 诊断输出里的示例区间
type RangeBrief struct {
	From string `json:"from"`
	To   string `json:"to"`
	Unit string `json:"unit"`
}

// RuleBrief 诊断输出里的规则概要
type RuleBrief struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	ChargeBy       string      `json:"chargeBy"`
	CountriesCount int         `json:"countriesCount"`
	RangesCount    int         `json:"rangesCount"`
	ExampleRange   *RangeBrief `json:"exampleRange"`
}

// CarrierDiagnoseResp 诊断结果：回调配置 + 服务列表 + 规则覆盖
type CarrierDiagnoseResp struct {
	OK                  bool                  `json:"ok"`
	Shop                string                `json:"shop"`
	ExpectedOrigin      string                `json:"expected_origin"`
	HTTPSRequired       bool                  `json:"https_required"`
	HTTPSOK             bool                  `json:"https_ok"`
	ExpectedCallbackURL string                `json:"expected_callback_url"`
	Services            []CarrierServiceBrief `json:"services"`
	Duplicates          []CarrierDuplicate    `json:"duplicates"`
	RulesCount          int                   `json:"rules_count"`
	RulesBrief          []RuleBrief           `json:"rules_brief"`
}

// CarrierEnsureResp 确保注册后的结果
type CarrierEnsureResp struct {
	OK          bool                  `json:"ok"`
	Shop        string                `json:"shop"`
	NameUsed    string                `json:"name_used"`
	CallbackURL string                `json:"callback_url"`
	Services    []CarrierServiceBrief `json:"services"`
}
