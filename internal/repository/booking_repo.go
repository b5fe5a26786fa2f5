package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_ops_v1_202610/internal/model"
)

// 同步写入的预约单列，tracking_number / is_printed / document_status 只在插入时取默认值
var bookingUpsertColumns = []string{
	"order_sn", "region", "booking_status", "match_status", "shipping_carrier",
	"create_time", "update_time", "recipient_address", "item_list",
	"dropshipper", "dropshipper_phone", "cancel_by", "cancel_reason",
	"fulfillment_flag", "pickup_done_time", "updated_at",
}

// BookingRepository 预约单仓库接口
type BookingRepository interface {
	UpsertBookings(ctx context.Context, bookings []model.BookingOrder) error
	UpdateTrackingNumber(ctx context.Context, shopID int64, bookingSn, trackingNumber string) (int64, error)
	GetByBookingSn(ctx context.Context, shopID int64, bookingSn string) (*model.BookingOrder, error)
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预约单仓库
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) UpsertBookings(ctx context.Context, bookings []model.BookingOrder) error {
	if len(bookings) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "booking_sn"}},
		DoUpdates: clause.AssignmentColumns(bookingUpsertColumns),
	}).Create(&bookings).Error
	if err != nil {
		return fmt.Errorf("保存预约单失败: %w", err)
	}
	return nil
}

// UpdateTrackingNumber 只写运单号，不改变面单状态
func (r *bookingRepository) UpdateTrackingNumber(ctx context.Context, shopID int64, bookingSn, trackingNumber string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.BookingOrder{}).
		Where("shop_id = ? AND booking_sn = ?", shopID, bookingSn).
		Update("tracking_number", trackingNumber)
	if result.Error != nil {
		return 0, fmt.Errorf("更新预约单运单号失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *bookingRepository) GetByBookingSn(ctx context.Context, shopID int64, bookingSn string) (*model.BookingOrder, error) {
	var booking model.BookingOrder
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND booking_sn = ?", shopID, bookingSn).
		First(&booking).Error
	if err != nil {
		return nil, fmt.Errorf("查询预约单失败: %w", err)
	}
	return &booking, nil
}
