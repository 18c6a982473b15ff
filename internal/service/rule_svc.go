package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/xiaozhang0801/ost/internal/api/dto"
	"github.com/xiaozhang0801/ost/internal/model"
	"github.com/xiaozhang0801/ost/internal/repository"
	"github.com/xiaozhang0801/ost/pkg/countries"
)

// ==================== 错误定义 ====================

var (
	// ErrRuleNotFound 规则不存在或不属于当前店铺（对外统一为 404，不区分两种情况）
	ErrRuleNotFound = errors.New("未找到对应规则或无权限")
	// ErrNameDuplicate 店铺内规则重名
	ErrNameDuplicate = errors.New("名称已存在，请修改后再保存")
	// ErrIncompleteParams 名称为空或区间列表为空
	ErrIncompleteParams = errors.New("参数不完整")
)

// RangeValidationError 区间校验失败，携带全部违规项
type RangeValidationError struct {
	Errors []RangeError
}

func (e *RangeValidationError) Error() string {
	return "区间设置不合法"
}

// ==================== 服务定义 ====================

// SaveResult 保存结果
type SaveResult struct {
	Rule    *model.ShippingRule `json:"rule"`
	Created bool                `json:"created,omitempty"`
	Updated bool                `json:"updated,omitempty"`
}

// ShippingRuleService 运费规则的后台读写服务
type ShippingRuleService struct {
	ruleRepo repository.ShippingRuleRepository
}

func NewShippingRuleService(ruleRepo repository.ShippingRuleRepository) *ShippingRuleService {
	return &ShippingRuleService{ruleRepo: ruleRepo}
}

// ==================== 查询 ====================

// List 返回店铺的全部规则；国家在读取时统一标准化，区间升序输出
func (s *ShippingRuleService) List(ctx context.Context, shop string) ([]model.ShippingRule, error) {
	rules, err := s.ruleRepo.ListByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	for i := range rules {
		rules[i].Countries = normalizeCountryCodes(rules[i].Countries)
		SortRanges(rules[i].Ranges)
	}
	return rules, nil
}

// ==================== 保存 ====================

// Save 创建或更新规则（带 id 为更新）。
// 区间列表先标准化排序，再整表校验；更新时整体替换区间。
func (s *ShippingRuleService) Save(ctx context.Context, shop string, req *dto.ShippingRuleSaveReq) (*SaveResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(req.Ranges) == 0 {
		return nil, ErrIncompleteParams
	}

	chargeBy := req.ChargeBy
	if chargeBy == "" {
		chargeBy = model.ChargeByWeight
	}

	// 国家：对象/字符串形态统一收敛后标准化，去掉空值
	normalizedCountries := make([]string, 0, len(req.Countries))
	for _, c := range req.Countries {
		if code := countries.Normalize(c.Value); code != "" {
			normalizedCountries = append(normalizedCountries, code)
		}
	}

	rows := buildRangeRows(req.Ranges, chargeBy)
	SortRangeRows(rows)

	if errs := ValidateRanges(rows, chargeBy); len(errs) > 0 {
		return nil, &RangeValidationError{Errors: errs}
	}

	ranges := make([]model.ShippingRange, 0, len(rows))
	for _, r := range rows {
		ranges = append(ranges, model.ShippingRange{
			FromVal:  r.From,
			ToVal:    r.To,
			Unit:     r.Unit,
			PricePer: r.Price,
			Fee:      r.Fee,
			FeeUnit:  r.FeeUnit,
		})
	}

	// 更新
	if req.ID != "" {
		existing, err := s.ruleRepo.GetForShop(ctx, req.ID, shop)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRuleNotFound
			}
			return nil, err
		}

		duplicate, err := s.ruleRepo.NameExists(ctx, shop, name, existing.ID)
		if err != nil {
			return nil, err
		}
		if duplicate {
			return nil, ErrNameDuplicate
		}

		existing.Name = name
		existing.ChargeBy = chargeBy
		existing.Countries = datatypes.NewJSONSlice(normalizedCountries)
		existing.Description = req.Description
		existing.Ranges = ranges

		if err := s.ruleRepo.UpdateWithRanges(ctx, existing); err != nil {
			return nil, err
		}
		return &SaveResult{Rule: existing, Updated: true}, nil
	}

	// 创建
	duplicate, err := s.ruleRepo.NameExists(ctx, shop, name, "")
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrNameDuplicate
	}

	rule := &model.ShippingRule{
		Shop:        shop,
		Name:        name,
		ChargeBy:    chargeBy,
		Countries:   datatypes.NewJSONSlice(normalizedCountries),
		Description: req.Description,
		Ranges:      ranges,
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return &SaveResult{Rule: rule, Created: true}, nil
}

// ==================== 删除 ====================

// Delete 删除单条规则，级联删除其区间
func (s *ShippingRuleService) Delete(ctx context.Context, shop, id string) error {
	err := s.ruleRepo.DeleteForShop(ctx, id, shop)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRuleNotFound
	}
	return err
}

// BatchDelete 批量删除，跳过不归属本店铺的 id，返回实际删除数
func (s *ShippingRuleService) BatchDelete(ctx context.Context, shop string, ids []string) (int64, error) {
	return s.ruleRepo.BatchDeleteForShop(ctx, ids, shop)
}

// ==================== 辅助 ====================

// buildRangeRows 把请求中的区间行转成校验行：
// 解析 from|fromVal / to|toVal 别名，补默认单位与货币
func buildRangeRows(items []dto.RangeItem, chargeBy string) []RangeRow {
	defaultUnit := model.DefaultUnitFor(chargeBy)

	rows := make([]RangeRow, 0, len(items))
	for _, item := range items {
		lower, upper := item.Lower(), item.Upper()

		unit := strings.TrimSpace(item.Unit)
		if unit == "" {
			unit = defaultUnit
		}
		feeUnit := strings.TrimSpace(item.FeeUnit)
		if feeUnit == "" {
			feeUnit = "USD"
		}

		rows = append(rows, RangeRow{
			From:    lower.Or(decimal.Zero),
			FromOK:  !lower.Set || lower.Valid,
			To:      upper.Or(decimal.Zero),
			ToOK:    !upper.Set || upper.Valid,
			Price:   item.PricePer.Or(decimal.Zero),
			PriceOK: !item.PricePer.Set || item.PricePer.Valid,
			Fee:     item.Fee.Or(decimal.Zero),
			FeeOK:   !item.Fee.Set || item.Fee.Valid,
			Unit:    unit,
			FeeUnit: feeUnit,
		})
	}
	return rows
}

// normalizeCountryCodes 读取路径上的国家标准化
func normalizeCountryCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, countries.Normalize(c))
	}
	return out
}
