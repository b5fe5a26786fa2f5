package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 订单状态常量 ====================

// Shopee 订单状态
const (
	OrderStatusUnpaid      = "UNPAID"
	OrderStatusReadyToShip = "READY_TO_SHIP"
	OrderStatusProcessed   = "PROCESSED"
	OrderStatusShipped     = "SHIPPED"
	OrderStatusCompleted   = "COMPLETED"
	OrderStatusInCancel    = "IN_CANCEL"
	OrderStatusCancelled   = "CANCELLED"
	OrderStatusToReturn    = "TO_RETURN"
)

// 面单状态
const (
	DocumentStatusPending = "PENDING" // 待生成
	DocumentStatusReady   = "READY"   // 可打印
	DocumentStatusFailed  = "FAILED"  // 生成失败
	DocumentStatusPrinted = "PRINTED" // 已打印
)

// EscrowStatuses 需要拉取结算明细的订单状态
var EscrowStatuses = map[string]bool{
	OrderStatusProcessed: true,
	OrderStatusCompleted: true,
	OrderStatusCancelled: true,
}

// ==================== Order 订单主表 ====================

// Order Shopee 订单，(shop_id, order_sn) 唯一
type Order struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID  int64  `gorm:"uniqueIndex:idx_orders_shop_order;not null" json:"shop_id"`
	OrderSn string `gorm:"uniqueIndex:idx_orders_shop_order;size:64;not null" json:"order_sn"`

	// 买家
	BuyerUserID   int64  `gorm:"index" json:"buyer_user_id"`
	BuyerUsername string `gorm:"size:255" json:"buyer_username"`

	// 状态与时间（Unix 秒）
	OrderStatus    string `gorm:"size:32;index" json:"order_status"`
	CreateTime     int64  `json:"create_time"`
	PayTime        int64  `json:"pay_time"`
	UpdateTime     int64  `json:"update_time"`
	ShipByDate     int64  `json:"ship_by_date"`
	PickupDoneTime int64  `json:"pickup_done_time"`
	DaysToShip     int    `json:"days_to_ship"`

	// 金额
	Currency                   string          `gorm:"size:10" json:"currency"`
	TotalAmount                decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_amount"`
	EstimatedShippingFee       decimal.Decimal `gorm:"type:numeric(14,2)" json:"estimated_shipping_fee"`
	ActualShippingFeeConfirmed bool            `json:"actual_shipping_fee_confirmed"`
	Cod                        bool            `json:"cod"`
	PaymentMethod              string          `gorm:"size:64" json:"payment_method"`

	// 物流
	ShippingCarrier           string `gorm:"size:128" json:"shipping_carrier"`
	FulfillmentFlag           string `gorm:"size:64" json:"fulfillment_flag"`
	OrderChargeableWeightGram int64  `json:"order_chargeable_weight_gram"`

	// 备注
	MessageToSeller string `gorm:"type:text" json:"message_to_seller"`
	Note            string `gorm:"type:text" json:"note"`
	NoteUpdateTime  int64  `json:"note_update_time"`

	// 取消
	CancelBy     string `gorm:"size:64" json:"cancel_by"`
	CancelReason string `gorm:"type:text" json:"cancel_reason"`

	// 面单（仅由物流事件和打印流程维护，同步不覆盖）
	TrackingNumber string `gorm:"size:128" json:"tracking_number"`
	DocumentStatus string `gorm:"size:16;default:PENDING" json:"document_status"`
	IsPrinted      bool   `gorm:"default:false" json:"is_printed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (*Order) TableName() string {
	return "orders"
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项，(order_sn, order_item_id, model_id) 唯一
type OrderItem struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderSn     string `gorm:"uniqueIndex:idx_order_items_key;size:64;not null" json:"order_sn"`
	OrderItemID int64  `gorm:"uniqueIndex:idx_order_items_key" json:"order_item_id"`
	ModelID     int64  `gorm:"uniqueIndex:idx_order_items_key" json:"model_id"`

	ItemID    int64  `gorm:"index" json:"item_id"`
	ItemName  string `gorm:"size:500" json:"item_name"`
	ItemSku   string `gorm:"size:128" json:"item_sku"`
	ModelName string `gorm:"size:255" json:"model_name"`
	ModelSku  string `gorm:"size:128" json:"model_sku"`
	ImageURL  string `gorm:"size:500" json:"image_url"`

	ModelQuantityPurchased int             `json:"model_quantity_purchased"`
	ModelOriginalPrice     decimal.Decimal `gorm:"type:numeric(14,2)" json:"model_original_price"`
	ModelDiscountedPrice   decimal.Decimal `gorm:"type:numeric(14,2)" json:"model_discounted_price"`
	Wholesale              bool            `json:"wholesale"`
	Weight                 float64         `json:"weight"`

	// 促销
	AddOnDeal        bool   `json:"add_on_deal"`
	MainItem         bool   `json:"main_item"`
	AddOnDealID      int64  `json:"add_on_deal_id"`
	PromotionType    string `gorm:"size:64" json:"promotion_type"`
	PromotionID      int64  `json:"promotion_id"`
	PromotionGroupID int64  `json:"promotion_group_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (*OrderItem) TableName() string {
	return "order_items"
}

// ==================== Logistic 包裹物流 ====================

// Logistic 包裹物流记录，package_number 唯一
type Logistic struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PackageNumber string `gorm:"uniqueIndex;size:64;not null" json:"package_number"`
	ShopID        int64  `gorm:"index" json:"shop_id"`
	OrderSn       string `gorm:"index;size:64" json:"order_sn"`

	LogisticsStatus            string `gorm:"size:64" json:"logistics_status"`
	ShippingCarrier            string `gorm:"size:128" json:"shipping_carrier"`
	ParcelChargeableWeightGram int64  `json:"parcel_chargeable_weight_gram"`

	// 收件人
	RecipientName        string `gorm:"size:255" json:"recipient_name"`
	RecipientPhone       string `gorm:"size:64" json:"recipient_phone"`
	RecipientTown        string `gorm:"size:128" json:"recipient_town"`
	RecipientDistrict    string `gorm:"size:128" json:"recipient_district"`
	RecipientCity        string `gorm:"size:128" json:"recipient_city"`
	RecipientState       string `gorm:"size:128" json:"recipient_state"`
	RecipientRegion      string `gorm:"size:16" json:"recipient_region"`
	RecipientZipcode     string `gorm:"size:16" json:"recipient_zipcode"`
	RecipientFullAddress string `gorm:"type:text" json:"recipient_full_address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (*Logistic) TableName() string {
	return "logistic"
}

// ==================== OrderEscrow 结算明细 ====================

// OrderEscrow 订单结算明细，(order_sn, shop_id) 唯一
type OrderEscrow struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderSn string `gorm:"uniqueIndex:idx_order_escrow_key;size:64;not null" json:"order_sn"`
	ShopID  int64  `gorm:"uniqueIndex:idx_order_escrow_key" json:"shop_id"`

	EscrowAmount         decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"escrow_amount"`
	BuyerTotalAmount     decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"buyer_total_amount"`
	OriginalPrice        decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"original_price"`
	SellerDiscount       decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"seller_discount"`
	ShopeeDiscount       decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"shopee_discount"`
	VoucherFromSeller    decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"voucher_from_seller"`
	CommissionFee        decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"commission_fee"`
	ServiceFee           decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"service_fee"`
	SellerTransactionFee decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"seller_transaction_fee"`
	ActualShippingFee    decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"actual_shipping_fee"`
	AmsCommissionFee     decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"ams_commission_fee"`
	BuyerPaymentMethod   string              `gorm:"size:64" json:"buyer_payment_method"`

	EscrowAmountAfterAdjustment decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"escrow_amount_after_adjustment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (*OrderEscrow) TableName() string {
	return "order_escrow"
}
