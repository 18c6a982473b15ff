package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiaozhang0801/ost/internal/api/dto"
	"github.com/xiaozhang0801/ost/internal/model"
	"github.com/xiaozhang0801/ost/internal/repository"
	"github.com/xiaozhang0801/ost/pkg/countries"
	"github.com/xiaozhang0801/ost/pkg/spreadsheet"
)

// 导入导出共用的固定表头
var transferHeaders = []string{
	"Method", "countries", "from", "to", "unit", "Additional fee", "Base fee", "Currency Unit",
}

var chargeByPattern = regexp.MustCompile(`^(?i)(weight|volume|quantity)$`)

// ImportFormatError 导入文件格式问题（缺列、分隔符错误、空文件等），对外 400
type ImportFormatError struct {
	Reason string
}

func (e *ImportFormatError) Error() string {
	return e.Reason
}

// TransferService 运费规则的表格导入导出
type TransferService struct {
	ruleRepo repository.ShippingRuleRepository
}

func NewTransferService(ruleRepo repository.ShippingRuleRepository) *TransferService {
	return &TransferService{ruleRepo: ruleRepo}
}

// ==================== 导入 ====================

// ImportPreview 解析上传的工作簿并返回预览，不落库；
// 用户在前端确认后走保存接口统一校验持久化。
func (s *TransferService) ImportPreview(ctx context.Context, shop, id string, file io.Reader) (*dto.ImportPreviewResp, error) {
	existing, err := s.ruleRepo.GetForShop(ctx, id, shop)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	rows, err := spreadsheet.Parse(file)
	if err != nil || len(rows) == 0 {
		return nil, &ImportFormatError{Reason: "文件内容为空或格式不正确"}
	}

	// 定位表头列（大小写不敏感，允许空格差异）
	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if rowHasContent(r) {
			dataRows = append(dataRows, r)
		}
	}
	if len(dataRows) == 0 {
		return nil, &ImportFormatError{Reason: "没有可导入的数据行"}
	}

	// 首行的 Method 与 countries 作为整体属性
	chargeBy := existing.ChargeBy
	if methodCell := strings.TrimSpace(cellAt(dataRows[0], cols["method"])); chargeByPattern.MatchString(methodCell) {
		chargeBy = strings.ToLower(methodCell)
	}

	countriesCell := strings.TrimSpace(cellAt(dataRows[0], cols["countries"]))
	// 仅支持英文逗号分隔；检测到 | 或全角逗号直接报错
	if strings.ContainsAny(countriesCell, "|，") {
		return nil, &ImportFormatError{Reason: "国家分隔符仅支持英文逗号 , ，请修改文件后重试"}
	}
	var countryCodes []string
	if countriesCell != "" {
		for _, part := range strings.Split(countriesCell, ",") {
			if code := countries.Normalize(part); code != "" {
				countryCodes = append(countryCodes, code)
			}
		}
	}

	defaultUnit := model.DefaultUnitFor(chargeBy)
	previews := make([]dto.RangePreview, 0, len(dataRows))
	for _, r := range dataRows {
		unit := strings.TrimSpace(cellAt(r, cols["unit"]))
		if unit == "" {
			unit = defaultUnit
		}
		feeUnit := strings.TrimSpace(cellAt(r, cols["currencyUnit"]))
		if feeUnit == "" {
			feeUnit = model.DefaultCurrency
		}
		previews = append(previews, dto.RangePreview{
			FromVal:  numberCell(cellAt(r, cols["from"])),
			ToVal:    numberCell(cellAt(r, cols["to"])),
			Unit:     unit,
			PricePer: numberCell(cellAt(r, cols["additionalFee"])),
			Fee:      numberCell(cellAt(r, cols["baseFee"])),
			FeeUnit:  feeUnit,
		})
	}

	sort.SliceStable(previews, func(i, j int) bool {
		return compareRange(
			previewDecimal(previews[i].FromVal), previewDecimal(previews[i].ToVal),
			previewDecimal(previews[j].FromVal), previewDecimal(previews[j].ToVal),
		)
	})

	return &dto.ImportPreviewResp{
		ID:        existing.ID,
		Name:      existing.Name, // 导入不修改名称
		ChargeBy:  chargeBy,
		Countries: countryCodes,
		Ranges:    previews,
	}, nil
}

// ==================== 导出 ====================

// Export 导出规则为 .xls 工作簿；区间按 (fromVal, toVal) 升序，
// 国家用 | 连接（导入侧再拆分为逗号格式）。
// 返回文件名（规则名）与文件内容。
func (s *TransferService) Export(ctx context.Context, shop, id string) (string, []byte, error) {
	rule, err := s.ruleRepo.GetForShop(ctx, id, shop)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrRuleNotFound
		}
		return "", nil, err
	}

	SortRanges(rule.Ranges)
	countriesCell := strings.Join(normalizeCountryCodes(rule.Countries), "|")

	rows := make([][]string, 0, len(rule.Ranges)+1)
	rows = append(rows, transferHeaders)
	for _, r := range rule.Ranges {
		rows = append(rows, []string{
			rule.ChargeBy,
			countriesCell,
			r.FromVal.String(),
			r.ToVal.String(),
			r.Unit,
			r.PricePer.String(),
			r.Fee.String(),
			r.FeeUnit,
		})
	}

	sheetName := rule.Name
	if sheetName == "" {
		sheetName = "shipping-rule"
	}

	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, sheetName, rows); err != nil {
		return "", nil, fmt.Errorf("生成工作簿失败: %w", err)
	}

	return sheetName + ".xls", buf.Bytes(), nil
}

// ==================== 辅助 ====================

// locateColumns 按名称定位全部必需列，缺列即报错
func locateColumns(header []string) (map[string]int, error) {
	required := []struct {
		key   string
		match string // 小写去空格后的列名
	}{
		{"method", "method"},
		{"countries", "countries"},
		{"from", "from"},
		{"to", "to"},
		{"unit", "unit"},
		{"additionalFee", "additionalfee"},
		{"baseFee", "basefee"},
		{"currencyUnit", "currencyunit"},
	}

	cols := make(map[string]int, len(required))
	for _, want := range required {
		cols[want.key] = -1
		for i, h := range header {
			key := strings.ToLower(strings.Join(strings.Fields(h), ""))
			if key == want.match {
				cols[want.key] = i
				break
			}
		}
		if cols[want.key] == -1 {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("缺少列: %s", want.key)}
		}
	}
	return cols, nil
}

func rowHasContent(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// numberCell 数值单元格宽松解析：非法值按 0 回显，由保存时校验兜底
func numberCell(raw string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "0"
	}
	return d.String()
}

func previewDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
