package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_ops_v1_202610/internal/model"
)

// ErrOrderNotFound 订单不存在
var ErrOrderNotFound = errors.New("订单不存在")

// ==================== 冲突更新列 ====================

// 同步写入的订单列，tracking_number / document_status / is_printed 不在其中
var orderUpsertColumns = []string{
	"buyer_user_id", "buyer_username", "create_time", "pay_time", "order_status",
	"currency", "total_amount", "shipping_carrier", "estimated_shipping_fee",
	"actual_shipping_fee_confirmed", "cod", "days_to_ship", "ship_by_date",
	"payment_method", "fulfillment_flag", "message_to_seller", "note", "note_update_time",
	"order_chargeable_weight_gram", "pickup_done_time", "update_time",
	"cancel_by", "cancel_reason", "updated_at",
}

var orderItemUpsertColumns = []string{
	"item_id", "item_name", "item_sku", "model_name", "model_sku",
	"model_quantity_purchased", "model_original_price", "model_discounted_price",
	"wholesale", "weight", "add_on_deal", "main_item", "add_on_deal_id",
	"promotion_type", "promotion_id", "promotion_group_id", "image_url", "updated_at",
}

var logisticUpsertColumns = []string{
	"shop_id", "order_sn", "logistics_status", "shipping_carrier", "parcel_chargeable_weight_gram",
	"recipient_name", "recipient_phone", "recipient_town", "recipient_district", "recipient_city",
	"recipient_state", "recipient_region", "recipient_zipcode", "recipient_full_address", "updated_at",
}

var escrowUpsertColumns = []string{
	"escrow_amount", "buyer_total_amount", "original_price", "seller_discount", "shopee_discount",
	"voucher_from_seller", "commission_fee", "service_fee", "seller_transaction_fee",
	"actual_shipping_fee", "buyer_payment_method", "ams_commission_fee",
	"escrow_amount_after_adjustment", "updated_at",
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
// 所有写操作均为按自然键的幂等 upsert，彼此不在同一事务中
type OrderRepository interface {
	UpsertOrder(ctx context.Context, order *model.Order) error
	UpsertItems(ctx context.Context, items []model.OrderItem) error
	UpsertLogistics(ctx context.Context, logistics []model.Logistic) error
	UpsertEscrow(ctx context.Context, escrow *model.OrderEscrow) error

	GetByOrderSn(ctx context.Context, shopID int64, orderSn string) (*model.Order, error)
	GetStatus(ctx context.Context, shopID int64, orderSn string) (string, error)

	UpdateStatusOnly(ctx context.Context, shopID int64, orderSn, status string, updateTime int64) (int64, error)
	UpdateTrackingAndDocument(ctx context.Context, shopID int64, orderSn, trackingNumber, documentStatus string) (int64, error)
	UpdateTrackingNumber(ctx context.Context, shopID int64, orderSn, trackingNumber string) (int64, error)
	UpdateDocumentStatus(ctx context.Context, shopID int64, orderSn, documentStatus string) (int64, error)
}

// ==================== 实现 ====================

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) UpsertOrder(ctx context.Context, order *model.Order) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "order_sn"}},
		DoUpdates: clause.AssignmentColumns(orderUpsertColumns),
	}).Create(order).Error
	if err != nil {
		return fmt.Errorf("保存订单失败: %w", err)
	}
	return nil
}

func (r *orderRepository) UpsertItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_sn"}, {Name: "order_item_id"}, {Name: "model_id"}},
		DoUpdates: clause.AssignmentColumns(orderItemUpsertColumns),
	}).Create(&items).Error
	if err != nil {
		return fmt.Errorf("保存订单商品失败: %w", err)
	}
	return nil
}

func (r *orderRepository) UpsertLogistics(ctx context.Context, logistics []model.Logistic) error {
	if len(logistics) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "package_number"}},
		DoUpdates: clause.AssignmentColumns(logisticUpsertColumns),
	}).Create(&logistics).Error
	if err != nil {
		return fmt.Errorf("保存物流信息失败: %w", err)
	}
	return nil
}

func (r *orderRepository) UpsertEscrow(ctx context.Context, escrow *model.OrderEscrow) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_sn"}, {Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns(escrowUpsertColumns),
	}).Create(escrow).Error
	if err != nil {
		return fmt.Errorf("保存结算明细失败: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByOrderSn(ctx context.Context, shopID int64, orderSn string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND order_sn = ?", shopID, orderSn).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) GetStatus(ctx context.Context, shopID int64, orderSn string) (string, error) {
	var statuses []string
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("shop_id = ? AND order_sn = ?", shopID, orderSn).
		Limit(1).
		Pluck("order_status", &statuses).Error
	if err != nil {
		return "", fmt.Errorf("查询订单状态失败: %w", err)
	}
	if len(statuses) == 0 {
		return "", ErrOrderNotFound
	}
	return statuses[0], nil
}

func (r *orderRepository) UpdateStatusOnly(ctx context.Context, shopID int64, orderSn, status string, updateTime int64) (int64, error) {
	return r.updateFields(ctx, shopID, orderSn, map[string]interface{}{
		"order_status": status,
		"update_time":  updateTime,
	}, "更新订单状态失败")
}

func (r *orderRepository) UpdateTrackingAndDocument(ctx context.Context, shopID int64, orderSn, trackingNumber, documentStatus string) (int64, error) {
	return r.updateFields(ctx, shopID, orderSn, map[string]interface{}{
		"tracking_number": trackingNumber,
		"document_status": documentStatus,
	}, "更新运单号和面单状态失败")
}

func (r *orderRepository) UpdateTrackingNumber(ctx context.Context, shopID int64, orderSn, trackingNumber string) (int64, error) {
	return r.updateFields(ctx, shopID, orderSn, map[string]interface{}{
		"tracking_number": trackingNumber,
	}, "更新运单号失败")
}

func (r *orderRepository) UpdateDocumentStatus(ctx context.Context, shopID int64, orderSn, documentStatus string) (int64, error) {
	return r.updateFields(ctx, shopID, orderSn, map[string]interface{}{
		"document_status": documentStatus,
	}, "更新面单状态失败")
}

// updateFields 按 (shop_id, order_sn) 更新部分字段，返回影响行数
func (r *orderRepository) updateFields(ctx context.Context, shopID int64, orderSn string, fields map[string]interface{}, errMsg string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("shop_id = ? AND order_sn = ?", shopID, orderSn).
		Updates(fields)
	if result.Error != nil {
		return 0, fmt.Errorf("%s: %w", errMsg, result.Error)
	}
	return result.RowsAffected, nil
}
