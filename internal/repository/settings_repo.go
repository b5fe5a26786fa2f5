package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"shopee_ops_v1_202610/internal/model"
)

// SettingsRepository 用户设置 / 订阅仓库接口
// 这些表由设置页面维护，同步与推送流程只读
type SettingsRepository interface {
	GetPengaturan(ctx context.Context, userID string) (*model.Pengaturan, error)
	ListAutoShipChat(ctx context.Context, userID string) ([]model.AutoShipChat, error)
	GetActivePlanName(ctx context.Context, userID string) (string, error)
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository 创建设置仓库
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// GetPengaturan 用户设置，不存在时返回 nil
func (r *settingsRepository) GetPengaturan(ctx context.Context, userID string) (*model.Pengaturan, error) {
	var p model.Pengaturan
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询用户设置失败: %w", err)
	}
	return &p, nil
}

func (r *settingsRepository) ListAutoShipChat(ctx context.Context, userID string) ([]model.AutoShipChat, error) {
	var rows []model.AutoShipChat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("shop_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询店铺自动化开关失败: %w", err)
	}
	return rows, nil
}

// GetActivePlanName 最新一条有效订阅的套餐名，没有订阅返回空串
func (r *settingsRepository) GetActivePlanName(ctx context.Context, userID string) (string, error) {
	var sub model.UserSubscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ? AND status = ?", userID, model.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("查询用户订阅失败: %w", err)
	}
	return sub.Plan.Name, nil
}
