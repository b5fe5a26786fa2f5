package model

import (
	"time"
)

// PremiumPlanName 解锁自动化功能的套餐名
const PremiumPlanName = "Admin"

// SettingsSnapshotVersion 缓存快照结构版本，结构变化时递增
const SettingsSnapshotVersion = 2

// MaxAutoShipInterval 自动发货等待上限（秒），超出的设置按上限执行
const MaxAutoShipInterval = 3600

// ClampAutoShipInterval 把等待秒数限制在 [0, MaxAutoShipInterval]
func ClampAutoShipInterval(sec int) int {
	return min(max(sec, 0), MaxAutoShipInterval)
}

// ==================== 数据表 ====================

// Pengaturan 用户级设置
type Pengaturan struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           string    `gorm:"uniqueIndex;size:64;not null" json:"user_id"`
	AutoShip         bool      `gorm:"default:false" json:"auto_ship"`
	AutoShipInterval int       `gorm:"default:0" json:"auto_ship_interval"` // 秒
	InCancelMsg      string    `gorm:"type:text" json:"in_cancel_msg"`
	InCancelStatus   bool      `gorm:"default:false" json:"in_cancel_status"`
	InReturnMsg      string    `gorm:"type:text" json:"in_return_msg"`
	InReturnStatus   bool      `gorm:"default:false" json:"in_return_status"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (*Pengaturan) TableName() string {
	return "pengaturan"
}

// SubscriptionPlan 订阅套餐
type SubscriptionPlan struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:64;uniqueIndex" json:"name"`
}

func (*SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// 订阅状态
const (
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

// UserSubscription 用户订阅记录
type UserSubscription struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string           `gorm:"size:64;index" json:"user_id"`
	PlanID    int64            `json:"plan_id"`
	Plan      SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan"`
	Status    string           `gorm:"size:16;index" json:"status"`
	StartDate time.Time        `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
	CreatedAt time.Time        `json:"created_at"`
}

func (*UserSubscription) TableName() string {
	return "user_subscriptions"
}

// ==================== 缓存快照 ====================

// ShopSettings 快照中的店铺开关
type ShopSettings struct {
	ShopID     int64 `json:"shop_id" validate:"required,gt=0"`
	StatusChat bool  `json:"status_chat"`
	StatusShip bool  `json:"status_ship"`
}

// SettingsSnapshot 用户设置快照，缓存于 user_settings:<userId>
// 读取时校验版本与字段，不通过按未命中处理
type SettingsSnapshot struct {
	Version          int            `json:"version" validate:"required"`
	UserID           string         `json:"user_id" validate:"required"`
	PlanName         string         `json:"plan_name"`
	AutoShip         bool           `json:"auto_ship"`
	AutoShipInterval int            `json:"auto_ship_interval" validate:"gte=0,lte=3600"`
	InCancelMsg      string         `json:"in_cancel_msg"`
	InCancelStatus   bool           `json:"in_cancel_status"`
	InReturnMsg      string         `json:"in_return_msg"`
	InReturnStatus   bool           `json:"in_return_status"`
	Shops            []ShopSettings `json:"shops" validate:"dive"`
	CachedAt         time.Time      `json:"cached_at"`
}

// Shop 查找店铺开关
func (s *SettingsSnapshot) Shop(shopID int64) (ShopSettings, bool) {
	for _, shop := range s.Shops {
		if shop.ShopID == shopID {
			return shop, true
		}
	}
	return ShopSettings{}, false
}

// IsPremium 是否为特权套餐
func (s *SettingsSnapshot) IsPremium() bool {
	return s.PlanName == PremiumPlanName
}
