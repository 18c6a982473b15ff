package model

import "time"

// ShopSession 店铺离线会话（平台安装时写入）
// 承运商服务注册等 Admin API 调用依赖其中的 AccessToken
type ShopSession struct {
	BaseModel

	Shop        string     `gorm:"size:255;uniqueIndex;not null;comment:店铺域名" json:"shop"`
	AccessToken string     `gorm:"size:512;not null;comment:离线访问令牌" json:"-"`
	Scope       string     `gorm:"size:512;comment:授权范围" json:"scope"`
	ExpiresAt   *time.Time `gorm:"comment:令牌过期时间" json:"expires_at"`
}

func (ShopSession) TableName() string {
	return "shop_sessions"
}
