package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"shopee_ops_v1_202610/internal/model"
)

// NotificationRepository 店铺通知仓库接口
type NotificationRepository interface {
	Create(ctx context.Context, n *model.ShopeeNotification) error
	ListRecent(ctx context.Context, shopIDs []int64, limit int) ([]model.ShopeeNotification, error)
	MarkProcessed(ctx context.Context, id int64) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.ShopeeNotification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("保存通知失败: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListRecent(ctx context.Context, shopIDs []int64, limit int) ([]model.ShopeeNotification, error) {
	if len(shopIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []model.ShopeeNotification
	err := r.db.WithContext(ctx).
		Where("shop_id IN ?", shopIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("查询通知失败: %w", err)
	}
	return list, nil
}

func (r *notificationRepository) MarkProcessed(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Model(&model.ShopeeNotification{}).
		Where("id = ?", id).
		Update("processed", true).Error
	if err != nil {
		return fmt.Errorf("更新通知状态失败: %w", err)
	}
	return nil
}
