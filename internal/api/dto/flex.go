package dto

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexNumber 接受数字或字符串两种形态的数值字段。
// 解析失败不报 JSON 错误，只把该字段标记为无效，交给校验层按字段定位报错；
// 承运商回调里的行项目字段则把无效值按 0 处理。
type FlexNumber struct {
	Set   bool            // 字段是否出现且非 null
	Valid bool            // 是否解析为合法数值
	Value decimal.Decimal // 解析结果（无效时为零值）
}

func (f *FlexNumber) UnmarshalJSON(b []byte) error {
	*f = FlexNumber{}

	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
		f.Set = true
		if s == "" {
			// 空字符串按 0 处理
			f.Valid = true
			f.Value = decimal.Zero
			return nil
		}
	} else {
		f.Set = true
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f.Valid = true
	f.Value = d
	return nil
}

func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("0"), nil
	}
	return []byte(f.Value.String()), nil
}

// Or 返回数值；字段缺失或无效时返回回退值
func (f FlexNumber) Or(fallback decimal.Decimal) decimal.Decimal {
	if f.Set && f.Valid {
		return f.Value
	}
	return fallback
}

// CountryField 接受字符串或 {code|value|label} 对象两种形态的国家字段，
// 统一在入口处收敛成单个字符串，下游不再感知形态差异。
type CountryField struct {
	Value string
}

func (c *CountryField) UnmarshalJSON(b []byte) error {
	c.Value = ""

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		c.Value = s
		return nil
	}

	var obj struct {
		Code  string `json:"code"`
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(b, &obj); err == nil {
		switch {
		case obj.Code != "":
			c.Value = obj.Code
		case obj.Value != "":
			c.Value = obj.Value
		default:
			c.Value = obj.Label
		}
	}
	// 无法识别的形态按空值处理，不中断整个请求
	return nil
}

func (c CountryField) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value)
}
