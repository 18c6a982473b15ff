package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xiaozhang0801/ost/internal/api/dto"
	"github.com/xiaozhang0801/ost/internal/model"
	"github.com/xiaozhang0801/ost/internal/repository"
	"github.com/xiaozhang0801/ost/pkg/countries"
)

// serviceCodePrefix 报价服务码前缀；后缀取规则 id 末 6 位，
// 同一规则在多次询价中得到稳定的 service_code
const serviceCodePrefix = "ECOCJ_"

var (
	gramsPerKg   = decimal.NewFromInt(1000)
	centsPerUnit = decimal.NewFromInt(100)
)

// QuoteService 报价引擎：无状态，每次询价只做一次规则读取
type QuoteService struct {
	ruleRepo repository.ShippingRuleRepository
}

func NewQuoteService(ruleRepo repository.ShippingRuleRepository) *QuoteService {
	return &QuoteService{ruleRepo: ruleRepo}
}

// measurement 聚合后的货件度量
type measurement struct {
	WeightKg  decimal.Decimal
	VolumeCbm decimal.Decimal
	Quantity  decimal.Decimal
}

// aggregate 汇总行项目：克重求和换算为 KG，件数求和。
// 行项目字段缺失或非法按 0 计。
// 体积暂无上游数据源，固定为 0（规则模型保留 volume 计费方式待接入）。
func aggregate(items []dto.CarrierItem) measurement {
	totalGrams := decimal.Zero
	totalQty := decimal.Zero
	for _, item := range items {
		totalGrams = totalGrams.Add(item.Grams.Or(decimal.Zero))
		totalQty = totalQty.Add(item.Quantity.Or(decimal.Zero))
	}
	return measurement{
		WeightKg:  totalGrams.Div(gramsPerKg),
		VolumeCbm: decimal.Zero,
		Quantity:  totalQty,
	}
}

// valueFor 按计费方式选取比较值
func (m measurement) valueFor(chargeBy string) decimal.Decimal {
	switch chargeBy {
	case model.ChargeByVolume:
		return m.VolumeCbm
	case model.ChargeByQuantity:
		return m.Quantity
	default:
		return m.WeightKg
	}
}

// Quote 计算候选报价。
// 流程：聚合度量 -> 标准化目的地 -> 取店铺全部规则 -> 国家过滤 ->
// 逐规则区间命中 -> 计价。无命中规则不产生报价，空结果是合法结果。
func (s *QuoteService) Quote(ctx context.Context, shop string, req *dto.CarrierCallbackReq) ([]dto.CarrierRate, error) {
	m := aggregate(req.Rate.Items)
	destination := countries.Normalize(req.Rate.Destination.CountryOrCode())

	rules, err := s.ruleRepo.ListByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	rates := []dto.CarrierRate{}
	for i := range rules {
		rule := &rules[i]
		if !ruleCoversCountry(rule, destination) {
			continue
		}

		value := m.valueFor(rule.ChargeBy)

		// 不信任存储顺序，命中前重排
		SortRanges(rule.Ranges)
		hit := matchRange(rule.Ranges, value)
		if hit == nil {
			// 度量落在所有区间之外：该规则不出价，不算错误
			continue
		}

		rates = append(rates, dto.CarrierRate{
			ServiceName: rule.Name,
			ServiceCode: serviceCode(rule.ID),
			TotalPrice:  totalPriceCents(hit.PricePer, value, hit.Fee),
			Currency:    resolveCurrency(req.Rate.Currency, hit.FeeUnit),
			Description: ruleDescription(rule),
		})
	}

	return rates, nil
}

// ruleCoversCountry 规则的国家集合（标准化后）是否包含目的地；空集合不匹配任何目的地
func ruleCoversCountry(rule *model.ShippingRule, destination string) bool {
	if destination == "" {
		return false
	}
	for _, c := range rule.Countries {
		if countries.Normalize(c) == destination {
			return true
		}
	}
	return false
}

// matchRange 升序扫描，返回第一个满足 fromVal <= value <= toVal 的区间。
// 双闭区间：落在相邻区间公共端点上的值归属靠前的一段，这是有意的决断规则。
func matchRange(ranges []model.ShippingRange, value decimal.Decimal) *model.ShippingRange {
	for i := range ranges {
		if value.GreaterThanOrEqual(ranges[i].FromVal) && value.LessThanOrEqual(ranges[i].ToVal) {
			return &ranges[i]
		}
	}
	return nil
}

// totalPriceCents 计价：price = pricePer*value + fee，
// 换算为最小货币单位后四舍五入（远离零取整），负数价格钳到 0
func totalPriceCents(pricePer, value, fee decimal.Decimal) string {
	price := pricePer.Mul(value).Add(fee)
	cents := price.Mul(centsPerUnit).Round(0)
	if cents.IsNegative() {
		cents = decimal.Zero
	}
	return cents.String()
}

// resolveCurrency 货币回退链：请求货币 -> 区间 feeUnit -> 默认货币
func resolveCurrency(payloadCurrency, feeUnit string) string {
	if payloadCurrency != "" {
		return payloadCurrency
	}
	if feeUnit != "" {
		return feeUnit
	}
	return model.DefaultCurrency
}

func serviceCode(ruleID string) string {
	suffix := ruleID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return serviceCodePrefix + suffix
}

func ruleDescription(rule *model.ShippingRule) string {
	if rule.Description != nil && *rule.Description != "" {
		return *rule.Description
	}
	return fmt.Sprintf("%s based rate", rule.ChargeBy)
}
