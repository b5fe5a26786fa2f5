package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shopee_ops_v1_202610/internal/model"
)

// ErrShopNotFound 店铺不存在或未激活
var ErrShopNotFound = errors.New("店铺不存在或未激活")

// ShopRepository 店铺授权仓库接口
type ShopRepository interface {
	GetByShopID(ctx context.Context, shopID int64) (*model.ShopeeToken, error)
	GetOwnerUserID(ctx context.Context, shopID int64) (string, error)
	ListActiveShops(ctx context.Context) ([]model.ShopeeToken, error)
	ListByUserID(ctx context.Context, userID string) ([]model.ShopeeToken, error)
	FindExpiringShops(ctx context.Context, before time.Time) ([]model.ShopeeToken, error)
	UpdateToken(ctx context.Context, shopID int64, accessToken, refreshToken string, expiry time.Time) error
	Deactivate(ctx context.Context, shopID int64) error
}

type shopRepo struct {
	db *gorm.DB
}

// NewShopRepository 创建店铺仓库
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepo{db: db}
}

func (r *shopRepo) GetByShopID(ctx context.Context, shopID int64) (*model.ShopeeToken, error) {
	var shop model.ShopeeToken
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND is_active = ?", shopID, true).
		First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询店铺失败: %w", err)
	}
	return &shop, nil
}

func (r *shopRepo) GetOwnerUserID(ctx context.Context, shopID int64) (string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Model(&model.ShopeeToken{}).
		Where("shop_id = ? AND is_active = ?", shopID, true).
		Limit(1).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return "", fmt.Errorf("查询店铺所属用户失败: %w", err)
	}
	if len(userIDs) == 0 || userIDs[0] == "" {
		return "", ErrShopNotFound
	}
	return userIDs[0], nil
}

func (r *shopRepo) ListActiveShops(ctx context.Context) ([]model.ShopeeToken, error) {
	var shops []model.ShopeeToken
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("shop_id").
		Find(&shops).Error
	if err != nil {
		return nil, fmt.Errorf("查询活跃店铺失败: %w", err)
	}
	return shops, nil
}

func (r *shopRepo) ListByUserID(ctx context.Context, userID string) ([]model.ShopeeToken, error) {
	var shops []model.ShopeeToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("shop_id").
		Find(&shops).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户店铺失败: %w", err)
	}
	return shops, nil
}

// FindExpiringShops 查找令牌在 before 之前过期的活跃店铺
func (r *shopRepo) FindExpiringShops(ctx context.Context, before time.Time) ([]model.ShopeeToken, error) {
	var shops []model.ShopeeToken
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND refresh_token <> '' AND access_token_expiry < ?", true, before).
		Find(&shops).Error
	if err != nil {
		return nil, fmt.Errorf("查询待刷新店铺失败: %w", err)
	}
	return shops, nil
}

func (r *shopRepo) UpdateToken(ctx context.Context, shopID int64, accessToken, refreshToken string, expiry time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.ShopeeToken{}).
		Where("shop_id = ?", shopID).
		Updates(map[string]interface{}{
			"access_token":        accessToken,
			"refresh_token":       refreshToken,
			"access_token_expiry": expiry,
		}).Error
	if err != nil {
		return fmt.Errorf("更新店铺令牌失败: %w", err)
	}
	return nil
}

func (r *shopRepo) Deactivate(ctx context.Context, shopID int64) error {
	err := r.db.WithContext(ctx).Model(&model.ShopeeToken{}).
		Where("shop_id = ?", shopID).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("停用店铺失败: %w", err)
	}
	return nil
}
