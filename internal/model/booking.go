package model

import (
	"time"

	"gorm.io/datatypes"
)

// BookingOrder Shopee 预约单，(shop_id, booking_sn) 唯一
type BookingOrder struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID    int64  `gorm:"uniqueIndex:idx_booking_shop_sn;not null" json:"shop_id"`
	BookingSn string `gorm:"uniqueIndex:idx_booking_shop_sn;size:64;not null" json:"booking_sn"`
	OrderSn   string `gorm:"index;size:64" json:"order_sn"`
	Region    string `gorm:"size:16" json:"region"`

	BookingStatus   string `gorm:"size:32;index" json:"booking_status"`
	MatchStatus     string `gorm:"size:32" json:"match_status"`
	ShippingCarrier string `gorm:"size:128" json:"shipping_carrier"`
	CreateTime      int64  `json:"create_time"`
	UpdateTime      int64  `json:"update_time"`

	// 原样保存的嵌套结构
	RecipientAddress datatypes.JSON `gorm:"type:jsonb" json:"recipient_address"`
	ItemList         datatypes.JSON `gorm:"type:jsonb" json:"item_list"`

	Dropshipper      string `gorm:"size:255" json:"dropshipper"`
	DropshipperPhone string `gorm:"size:64" json:"dropshipper_phone"`
	CancelBy         string `gorm:"size:64" json:"cancel_by"`
	CancelReason     string `gorm:"type:text" json:"cancel_reason"`
	FulfillmentFlag  string `gorm:"size:64" json:"fulfillment_flag"`
	PickupDoneTime   int64  `json:"pickup_done_time"`

	// 面单（同步只写入运单号，不改变 document_status）
	TrackingNumber string `gorm:"size:128" json:"tracking_number"`
	IsPrinted      bool   `gorm:"default:false" json:"is_printed"`
	DocumentStatus string `gorm:"size:16;default:PENDING" json:"document_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (*BookingOrder) TableName() string {
	return "booking_orders"
}
