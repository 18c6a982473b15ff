package countries

import "strings"

// 国家标准化映射表：ISO2/ISO3/英文名（含去空格形态）/中文名 -> ISO2
// 与承运商回调、规则保存、表格导入三条路径共用同一张表
var normalizeTable = map[string]string{
	"CN": "CN", "CHN": "CN", "CHINA": "CN", "中国": "CN", "中國": "CN",
	"US": "US", "USA": "US", "UNITEDSTATES": "US", "美国": "US", "美國": "US",
	"CA": "CA", "CAN": "CA", "CANADA": "CA", "加拿大": "CA",
	"GB": "GB", "UK": "GB", "GBR": "GB", "UNITEDKINGDOM": "GB", "英国": "GB", "英國": "GB",
	"DE": "DE", "DEU": "DE", "GERMANY": "DE", "德国": "DE", "德國": "DE",
	"FR": "FR", "FRA": "FR", "FRANCE": "FR", "法国": "FR", "法國": "FR",
	"AU": "AU", "AUS": "AU", "AUSTRALIA": "AU", "澳大利亚": "AU", "澳大利亞": "AU",
	"JP": "JP", "JPN": "JP", "JAPAN": "JP", "日本": "JP",
	"HK": "HK", "HKG": "HK", "HONGKONG": "HK", "香港": "HK",
	"MO": "MO", "MAC": "MO", "MACAU": "MO", "澳门": "MO", "澳門": "MO",
	"TW": "TW", "TWN": "TW", "TAIWAN": "TW", "台湾": "TW", "臺灣": "TW",
}

// Normalize 将任意形式的国家标识标准化为 ISO2 代码。
// 规则：去首尾空白 -> 转大写 -> 去除内部空白 -> 查表；
// 查不到时原样返回处理后的键（宽松回退，不丢数据、不报错）。
// 该函数是纯函数且幂等：Normalize(Normalize(x)) == Normalize(x)。
func Normalize(input string) string {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return ""
	}
	key := strings.ToUpper(raw)
	key = strings.Join(strings.Fields(key), "")
	if iso, ok := normalizeTable[key]; ok {
		return iso
	}
	return key
}
