package model

import (
	"time"
)

// ShopeeToken 店铺授权记录，shop_id 为主键
// 令牌由授权流程写入，本服务只负责刷新
type ShopeeToken struct {
	ShopID            int64     `gorm:"primaryKey;autoIncrement:false" json:"shop_id"`
	ShopName          string    `gorm:"size:255" json:"shop_name"`
	UserID            string    `gorm:"size:64;index" json:"user_id"`
	AccessToken       string    `gorm:"size:512" json:"-"`
	RefreshToken      string    `gorm:"size:512" json:"-"`
	AccessTokenExpiry time.Time `json:"access_token_expiry"`
	IsActive          bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (*ShopeeToken) TableName() string {
	return "shopee_tokens"
}

// NeedsRefresh 令牌是否将在 window 内过期
func (t *ShopeeToken) NeedsRefresh(now time.Time, window time.Duration) bool {
	return t.AccessToken == "" || !t.AccessTokenExpiry.After(now.Add(window))
}

// AutoShipChat 店铺级自动发货 / 自动聊天开关
type AutoShipChat struct {
	ShopID     int64     `gorm:"primaryKey;autoIncrement:false" json:"shop_id"`
	UserID     string    `gorm:"size:64;index" json:"user_id"`
	StatusChat bool      `gorm:"default:false" json:"status_chat"`
	StatusShip bool      `gorm:"default:false" json:"status_ship"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (*AutoShipChat) TableName() string {
	return "auto_ship_chat"
}
