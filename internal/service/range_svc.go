package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xiaozhang0801/ost/internal/model"
)

// RangeError 单条区间校验错误，index 为排序后的行号
type RangeError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// RangeRow 待校验的区间行。
// 数值字段带可解析标记：非数字输入是校验失败，不是解析异常。
type RangeRow struct {
	From    decimal.Decimal
	FromOK  bool
	To      decimal.Decimal
	ToOK    bool
	Price   decimal.Decimal
	PriceOK bool
	Fee     decimal.Decimal
	FeeOK   bool
	Unit    string
	FeeUnit string
}

// compareRange 区间排序比较：先 fromVal 升序，再 toVal 升序。
// 读、写、报价、导出各路径共用的唯一排序语义。
func compareRange(aFrom, aTo, bFrom, bTo decimal.Decimal) bool {
	if cmp := aFrom.Cmp(bFrom); cmp != 0 {
		return cmp < 0
	}
	return aTo.Cmp(bTo) < 0
}

// SortRanges 按 (fromVal, toVal) 升序排序区间模型
func SortRanges(list []model.ShippingRange) {
	sort.SliceStable(list, func(i, j int) bool {
		return compareRange(list[i].FromVal, list[i].ToVal, list[j].FromVal, list[j].ToVal)
	})
}

// SortRangeRows 按 (fromVal, toVal) 升序排序待校验行（无效数值按 0 参与排序）
func SortRangeRows(list []RangeRow) {
	sort.SliceStable(list, func(i, j int) bool {
		return compareRange(list[i].From, list[i].To, list[j].From, list[j].To)
	})
}

// ValidateRanges 校验排序后的区间表，返回全部违规项（空切片即合法）。
// 逐行：上下界必须为数字（否则该行不再做边界检查）；toVal >= fromVal；
// 按件计费时上下界必须为 >=1 的整数，其余计费方式上下界非负；
// 单价与挂号费非负。跨行：第 i 行的起始值必须 >= 第 i-1 行的结束值。
func ValidateRanges(rows []RangeRow, chargeBy string) []RangeError {
	errs := []RangeError{}
	isQuantity := chargeBy == model.ChargeByQuantity
	one := decimal.NewFromInt(1)

	for i, r := range rows {
		if !r.FromOK || !r.ToOK {
			errs = append(errs, RangeError{Index: i, Message: "范围起止必须为数字"})
		} else {
			if r.To.LessThan(r.From) {
				errs = append(errs, RangeError{Index: i, Message: "范围止必须≥范围起"})
			}
			if isQuantity {
				if !r.From.IsInteger() || !r.To.IsInteger() ||
					r.From.LessThan(one) || r.To.LessThan(one) {
					errs = append(errs, RangeError{Index: i, Message: "按件计费时范围必须为≥1的整数"})
				}
			} else if r.From.IsNegative() || r.To.IsNegative() {
				errs = append(errs, RangeError{Index: i, Message: "范围不得为负数"})
			}
		}

		if !r.PriceOK || r.Price.IsNegative() {
			errs = append(errs, RangeError{Index: i, Message: "运费单价必须为非负数"})
		}
		if !r.FeeOK || r.Fee.IsNegative() {
			errs = append(errs, RangeError{Index: i, Message: "挂号费必须为非负数"})
		}
	}

	// 跨段校验：区间允许共享端点（报价时命中靠前的一段），但不得重叠
	for i := 1; i < len(rows); i++ {
		prev, curr := rows[i-1], rows[i]
		if !prev.ToOK || !curr.FromOK {
			continue
		}
		if curr.From.LessThan(prev.To) {
			errs = append(errs, RangeError{Index: i, Message: "范围起必须≥上一区间的范围止"})
		}
	}

	return errs
}
