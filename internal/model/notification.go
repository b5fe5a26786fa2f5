package model

import (
	"time"

	"gorm.io/datatypes"
)

// 通知类型
const (
	NotificationShopUpdate    = "shop_update"
	NotificationItemViolation = "item_violation"
	NotificationViolation     = "violation"
	NotificationShopPenalty   = "shop_penalty"
)

// ShopeeNotification 店铺推送通知记录
type ShopeeNotification struct {
	ID               int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID           int64          `gorm:"index;not null" json:"shop_id"`
	NotificationType string         `gorm:"size:32;index" json:"notification_type"`
	Data             datatypes.JSON `gorm:"type:jsonb" json:"data"`
	Processed        bool           `gorm:"default:false" json:"processed"`
	Read             bool           `gorm:"default:false" json:"read"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (*ShopeeNotification) TableName() string {
	return "shopee_notifications"
}

// AllModels 需要自动迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&Order{}, &OrderItem{}, &Logistic{}, &OrderEscrow{},
		&BookingOrder{},
		&ShopeeToken{}, &AutoShipChat{},
		&Pengaturan{}, &SubscriptionPlan{}, &UserSubscription{},
		&ShopeeNotification{},
	}
}
