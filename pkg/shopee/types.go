package shopee

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ==================== 订单 ====================

// ListOptions 列表查询参数
type ListOptions struct {
	TimeRangeField string // create_time / update_time
	TimeFrom       int64
	TimeTo         int64
	PageSize       int
	Cursor         string
	Status         string // 为空或 ALL 时不过滤
}

// OrderListResult get_order_list 响应
type OrderListResult struct {
	More       bool            `json:"more"`
	NextCursor string          `json:"next_cursor"`
	OrderList  []OrderListItem `json:"order_list"`
}

// OrderListItem 订单列表项
type OrderListItem struct {
	OrderSn     string `json:"order_sn"`
	OrderStatus string `json:"order_status,omitempty"`
}

// RecipientAddress 收件地址
type RecipientAddress struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Town        string `json:"town"`
	District    string `json:"district"`
	City        string `json:"city"`
	State       string `json:"state"`
	Region      string `json:"region"`
	Zipcode     string `json:"zipcode"`
	FullAddress string `json:"full_address"`
}

// ImageInfo 图片
type ImageInfo struct {
	ImageURL string `json:"image_url"`
}

// OrderItem 订单商品
type OrderItem struct {
	ItemID                 int64           `json:"item_id"`
	ItemName               string          `json:"item_name"`
	ItemSku                string          `json:"item_sku"`
	ModelID                int64           `json:"model_id"`
	ModelName              string          `json:"model_name"`
	ModelSku               string          `json:"model_sku"`
	ModelQuantityPurchased int             `json:"model_quantity_purchased"`
	ModelOriginalPrice     decimal.Decimal `json:"model_original_price"`
	ModelDiscountedPrice   decimal.Decimal `json:"model_discounted_price"`
	Wholesale              bool            `json:"wholesale"`
	Weight                 float64         `json:"weight"`
	AddOnDeal              bool            `json:"add_on_deal"`
	MainItem               bool            `json:"main_item"`
	AddOnDealID            int64           `json:"add_on_deal_id"`
	PromotionType          string          `json:"promotion_type"`
	PromotionID            int64           `json:"promotion_id"`
	OrderItemID            int64           `json:"order_item_id"`
	PromotionGroupID       int64           `json:"promotion_group_id"`
	ImageInfo              ImageInfo       `json:"image_info"`
}

// Package 包裹
type Package struct {
	PackageNumber              string `json:"package_number"`
	LogisticsStatus            string `json:"logistics_status"`
	ShippingCarrier            string `json:"shipping_carrier"`
	ParcelChargeableWeightGram int64  `json:"parcel_chargeable_weight_gram"`
}

// OrderDetail get_order_detail 中的订单
type OrderDetail struct {
	OrderSn                    string           `json:"order_sn"`
	Region                     string           `json:"region"`
	Currency                   string           `json:"currency"`
	Cod                        bool             `json:"cod"`
	TotalAmount                decimal.Decimal  `json:"total_amount"`
	OrderStatus                string           `json:"order_status"`
	ShippingCarrier            string           `json:"shipping_carrier"`
	PaymentMethod              string           `json:"payment_method"`
	EstimatedShippingFee       decimal.Decimal  `json:"estimated_shipping_fee"`
	MessageToSeller            string           `json:"message_to_seller"`
	CreateTime                 int64            `json:"create_time"`
	UpdateTime                 int64            `json:"update_time"`
	DaysToShip                 int              `json:"days_to_ship"`
	ShipByDate                 int64            `json:"ship_by_date"`
	BuyerUserID                int64            `json:"buyer_user_id"`
	BuyerUsername              string           `json:"buyer_username"`
	RecipientAddress           RecipientAddress `json:"recipient_address"`
	ActualShippingFeeConfirmed bool             `json:"actual_shipping_fee_confirmed"`
	Note                       string           `json:"note"`
	NoteUpdateTime             int64            `json:"note_update_time"`
	ItemList                   []OrderItem      `json:"item_list"`
	PayTime                    int64            `json:"pay_time"`
	Dropshipper                string           `json:"dropshipper"`
	DropshipperPhone           string           `json:"dropshipper_phone"`
	CancelBy                   string           `json:"cancel_by"`
	CancelReason               string           `json:"cancel_reason"`
	BuyerCancelReason          string           `json:"buyer_cancel_reason"`
	FulfillmentFlag            string           `json:"fulfillment_flag"`
	PickupDoneTime             int64            `json:"pickup_done_time"`
	PackageList                []Package        `json:"package_list"`
	OrderChargeableWeightGram  int64            `json:"order_chargeable_weight_gram"`
}

// orderDetailResult get_order_detail 响应
type orderDetailResult struct {
	OrderList []OrderDetail `json:"order_list"`
}

// OrderDetailOptionalFields 订单详情附加字段
const OrderDetailOptionalFields = "buyer_user_id,buyer_username,estimated_shipping_fee,recipient_address," +
	"actual_shipping_fee,goods_to_declare,note,note_update_time,item_list,pay_time,dropshipper," +
	"dropshipper_phone,split_up,buyer_cancel_reason,cancel_by,cancel_reason,actual_shipping_fee_confirmed," +
	"buyer_cpf_id,fulfillment_flag,pickup_done_time,package_list,shipping_carrier,payment_method," +
	"total_amount,invoice_data,no_plastic_packing,order_chargeable_weight_gram,edt"

// ==================== 结算 ====================

// OrderIncome 结算明细
type OrderIncome struct {
	EscrowAmount                decimal.NullDecimal `json:"escrow_amount"`
	BuyerTotalAmount            decimal.NullDecimal `json:"buyer_total_amount"`
	OriginalPrice               decimal.NullDecimal `json:"original_price"`
	SellerDiscount              decimal.NullDecimal `json:"seller_discount"`
	ShopeeDiscount              decimal.NullDecimal `json:"shopee_discount"`
	VoucherFromSeller           decimal.NullDecimal `json:"voucher_from_seller"`
	CommissionFee               decimal.NullDecimal `json:"commission_fee"`
	ServiceFee                  decimal.NullDecimal `json:"service_fee"`
	SellerTransactionFee        decimal.NullDecimal `json:"seller_transaction_fee"`
	ActualShippingFee           decimal.NullDecimal `json:"actual_shipping_fee"`
	BuyerPaymentMethod          string              `json:"buyer_payment_method"`
	OrderAmsCommissionFee       decimal.NullDecimal `json:"order_ams_commission_fee"`
	EscrowAmountAfterAdjustment decimal.NullDecimal `json:"escrow_amount_after_adjustment"`
}

// EscrowDetail get_escrow_detail 响应
type EscrowDetail struct {
	OrderSn       string       `json:"order_sn"`
	BuyerUserName string       `json:"buyer_user_name"`
	OrderIncome   *OrderIncome `json:"order_income"`
}

// ==================== 物流 ====================

// TrackingInfo 运单号
type TrackingInfo struct {
	TrackingNumber          string `json:"tracking_number"`
	PlpNumber               string `json:"plp_number,omitempty"`
	FirstMileTrackingNumber string `json:"first_mile_tracking_number,omitempty"`
	LastMileTrackingNumber  string `json:"last_mile_tracking_number,omitempty"`
}

// ShippingDocumentOrder 面单请求项
type ShippingDocumentOrder struct {
	OrderSn        string `json:"order_sn"`
	PackageNumber  string `json:"package_number,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// DocumentResult 面单生成结果
type DocumentResult struct {
	OrderSn       string `json:"order_sn"`
	PackageNumber string `json:"package_number"`
	FailError     string `json:"fail_error"`
	FailMessage   string `json:"fail_message"`
}

// createDocumentResult create_shipping_document 响应
type createDocumentResult struct {
	ResultList []DocumentResult `json:"result_list"`
}

// TimeSlot 揽收时段
type TimeSlot struct {
	PickupTimeID string `json:"pickup_time_id"`
	Date         int64  `json:"date"`
}

// PickupAddress 揽收地址
type PickupAddress struct {
	AddressID    int64      `json:"address_id"`
	Address      string     `json:"address"`
	AddressFlag  []string   `json:"address_flag"`
	TimeSlotList []TimeSlot `json:"time_slot_list"`
}

// ShippingParameter get_shipping_parameter 响应
type ShippingParameter struct {
	InfoNeeded struct {
		Dropoff []string `json:"dropoff"`
		Pickup  []string `json:"pickup"`
	} `json:"info_needed"`
	Dropoff *struct {
		BranchList []struct {
			BranchID int64 `json:"branch_id"`
		} `json:"branch_list"`
	} `json:"dropoff"`
	Pickup *struct {
		AddressList []PickupAddress `json:"address_list"`
	} `json:"pickup"`
}

// PickupInfo 上门揽收
type PickupInfo struct {
	AddressID    int64  `json:"address_id"`
	PickupTimeID string `json:"pickup_time_id,omitempty"`
}

// DropoffInfo 自送网点
type DropoffInfo struct {
	BranchID int64 `json:"branch_id,omitempty"`
}

// ShipOrderRequest ship_order 请求
type ShipOrderRequest struct {
	OrderSn       string       `json:"order_sn"`
	PackageNumber string       `json:"package_number,omitempty"`
	Pickup        *PickupInfo  `json:"pickup,omitempty"`
	Dropoff       *DropoffInfo `json:"dropoff,omitempty"`
}

// ==================== 预约单 ====================

// BookingListResult get_booking_list 响应
type BookingListResult struct {
	More        bool              `json:"more"`
	NextCursor  string            `json:"next_cursor"`
	BookingList []BookingListItem `json:"booking_list"`
}

// BookingListItem 预约单列表项
type BookingListItem struct {
	BookingSn     string `json:"booking_sn"`
	BookingStatus string `json:"booking_status,omitempty"`
}

// BookingDetail get_booking_detail 中的预约单
type BookingDetail struct {
	BookingSn        string          `json:"booking_sn"`
	OrderSn          string          `json:"order_sn"`
	Region           string          `json:"region"`
	BookingStatus    string          `json:"booking_status"`
	MatchStatus      string          `json:"match_status"`
	ShippingCarrier  string          `json:"shipping_carrier"`
	CreateTime       int64           `json:"create_time"`
	UpdateTime       int64           `json:"update_time"`
	RecipientAddress json.RawMessage `json:"recipient_address"`
	ItemList         json.RawMessage `json:"item_list"`
	Dropshipper      string          `json:"dropshipper"`
	DropshipperPhone string          `json:"dropshipper_phone"`
	CancelBy         string          `json:"cancel_by"`
	CancelReason     string          `json:"cancel_reason"`
	FulfillmentFlag  string          `json:"fulfillment_flag"`
	PickupDoneTime   int64           `json:"pickup_done_time"`
}

// bookingDetailResult get_booking_detail 响应
type bookingDetailResult struct {
	BookingList []BookingDetail `json:"booking_list"`
}

// BookingDetailOptionalFields 预约单详情附加字段
const BookingDetailOptionalFields = "item_list,cancel_by,cancel_reason,fulfillment_flag,pickup_done_time," +
	"shipping_carrier,recipient_address,dropshipper,dropshipper_phone"

// ==================== 聊天 ====================

// 消息类型
const (
	MessageTypeText  = "text"
	MessageTypeOrder = "order"
)

// MessageContent 消息内容
type MessageContent struct {
	Text    string `json:"text,omitempty"`
	OrderSn string `json:"order_sn,omitempty"`
}

// SendMessageRequest send_message 请求
type SendMessageRequest struct {
	ToID        int64          `json:"to_id"`
	MessageType string         `json:"message_type"`
	Content     MessageContent `json:"content"`
}

// SendMessageResult send_message 响应
type SendMessageResult struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
}

// ==================== 授权 / 店铺 ====================

// TokenResult access_token/get 响应（字段在顶层）
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int64  `json:"expire_in"`
	RequestID    string `json:"request_id"`
	Error        string `json:"error"`
	Message      string `json:"message"`
}

// ShopInfo get_shop_info 响应（字段在顶层）
type ShopInfo struct {
	ShopName  string `json:"shop_name"`
	Region    string `json:"region"`
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}
