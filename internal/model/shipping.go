package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChargeBy 计费方式常量
const (
	ChargeByWeight   = "weight"   // 按重量（KG）
	ChargeByVolume   = "volume"   // 按体积（CBM）
	ChargeByQuantity = "quantity" // 按件数
)

// 区间显示单位常量
const (
	UnitKG    = "KG"
	UnitCBM   = "CBM"
	UnitPiece = "件"
)

// DefaultCurrency 报价货币的最终回退值
const DefaultCurrency = "CNY"

// DefaultUnitFor 按计费方式返回默认的区间单位
func DefaultUnitFor(chargeBy string) string {
	switch chargeBy {
	case ChargeByVolume:
		return UnitCBM
	case ChargeByQuantity:
		return UnitPiece
	default:
		return UnitKG
	}
}

// ShippingRule 运费规则模型
type ShippingRule struct {
	ID        string         `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 归属店铺（域名）
	Shop string `gorm:"size:255;not null;index;comment:归属店铺域名" json:"shop"`

	// 规则名称，店铺内唯一（区分大小写）
	Name     string `gorm:"size:255;not null;comment:规则名称" json:"name"`
	ChargeBy string `gorm:"size:20;not null;default:weight;comment:计费方式 weight/volume/quantity" json:"chargeBy"`

	// 目的地国家列表（存储时已标准化为 ISO2）
	Countries datatypes.JSONSlice[string] `gorm:"comment:目的地国家列表" json:"countries"`

	Description *string `gorm:"type:text;comment:规则描述" json:"description"`

	// 关联区间（一对多，更新时整体替换）
	Ranges []ShippingRange `gorm:"foreignKey:RuleID" json:"ranges"`
}

// ShippingRange 运费区间模型，归属于唯一的运费规则
type ShippingRange struct {
	ID     int64  `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	RuleID string `gorm:"type:char(36);index;not null;comment:关联规则ID" json:"ruleId"`

	// 区间上下界，双闭区间，toVal >= fromVal
	FromVal decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"fromVal"`
	ToVal   decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"toVal"`

	// 显示单位（KG / CBM / 件），与规则的计费方式一致
	Unit string `gorm:"size:10" json:"unit"`

	// 单价与挂号费（均为非负）
	PricePer decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"pricePer"`
	Fee      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"fee"`

	// 报价货币代码
	FeeUnit string `gorm:"size:10;default:USD" json:"feeUnit"`
}

func (r *ShippingRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (ShippingRule) TableName() string {
	return "shipping_rules"
}
func (ShippingRange) TableName() string {
	return "shipping_ranges"
}
