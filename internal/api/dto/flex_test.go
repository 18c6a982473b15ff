package dto

import (
	"encoding/json"
	"testing"
)

// ==================== 单元测试 ====================

func TestFlexNumber_Unmarshal(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		set     bool
		valid   bool
		value   string
	}{
		{"数字", `{"v": 1.5}`, true, true, "1.5"},
		{"字符串数字", `{"v": "2.75"}`, true, true, "2.75"},
		{"带空白的字符串数字", `{"v": " 3 "}`, true, true, "3"},
		{"空字符串按0", `{"v": ""}`, true, true, "0"},
		{"非数字字符串", `{"v": "abc"}`, true, false, "0"},
		{"null视为缺失", `{"v": null}`, false, false, "0"},
		{"字段缺失", `{}`, false, false, "0"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var obj struct {
				V FlexNumber `json:"v"`
			}
			if err := json.Unmarshal([]byte(c.payload), &obj); err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			if obj.V.Set != c.set || obj.V.Valid != c.valid {
				t.Errorf("标记不符: Set=%v Valid=%v, want Set=%v Valid=%v",
					obj.V.Set, obj.V.Valid, c.set, c.valid)
			}
			if obj.V.Value.String() != c.value {
				t.Errorf("数值不符: got %s, want %s", obj.V.Value.String(), c.value)
			}
		})
	}
}

func TestFlexNumber_InvalidDoesNotFailDecode(t *testing.T) {
	// 非法数值不应让整个请求体解析失败
	var obj struct {
		A FlexNumber `json:"a"`
		B FlexNumber `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": "xx", "b": 5}`), &obj); err != nil {
		t.Fatalf("解析不应失败: %v", err)
	}
	if obj.A.Valid {
		t.Error("a 应标记为无效")
	}
	if !obj.B.Valid || obj.B.Value.String() != "5" {
		t.Error("b 应正常解析")
	}
}

func TestCountryField_Shapes(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"字符串", `{"c": "US"}`, "US"},
		{"对象code优先", `{"c": {"code": "CA", "value": "X", "label": "Y"}}`, "CA"},
		{"对象value次之", `{"c": {"value": "DE", "label": "Y"}}`, "DE"},
		{"对象label兜底", `{"c": {"label": "France"}}`, "France"},
		{"无法识别", `{"c": 5}`, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var obj struct {
				C CountryField `json:"c"`
			}
			if err := json.Unmarshal([]byte(c.payload), &obj); err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			if obj.C.Value != c.want {
				t.Errorf("got %q, want %q", obj.C.Value, c.want)
			}
		})
	}
}

func TestRangeItem_AliasResolution(t *testing.T) {
	// from/to 与 fromVal/toVal 两组字段名等价，同时出现时 from/to 优先
	var item RangeItem
	payload := `{"from": 1, "fromVal": 9, "toVal": 5}`
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if got := item.Lower().Value.String(); got != "1" {
		t.Errorf("下界应取 from: got %s", got)
	}
	if got := item.Upper().Value.String(); got != "5" {
		t.Errorf("上界应取 toVal: got %s", got)
	}
}
