package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/repository"
	"shopee_ops_v1_202610/pkg/shopee"
)

// RefreshWindow 令牌在此时间内过期即刷新
const RefreshWindow = 5 * time.Minute

// ErrTokenNotFound 店铺没有可用令牌
var ErrTokenNotFound = errors.New("店铺令牌不存在")

// TokenProvider 访问令牌提供者
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context, shopID int64) (string, error)
}

// ==================== TokenService ====================

// TokenService 店铺访问令牌管理
type TokenService struct {
	shopRepo repository.ShopRepository
	api      shopee.API
	group    singleflight.Group
	now      func() time.Time
	log      *zap.Logger
}

var _ TokenProvider = (*TokenService)(nil)

// NewTokenService 创建令牌服务
func NewTokenService(shopRepo repository.ShopRepository, api shopee.API, log *zap.Logger) *TokenService {
	return &TokenService{
		shopRepo: shopRepo,
		api:      api,
		now:      time.Now,
		log:      log.Named("Token"),
	}
}

// GetValidAccessToken 返回可用令牌，临近过期时先刷新
func (s *TokenService) GetValidAccessToken(ctx context.Context, shopID int64) (string, error) {
	shop, err := s.shopRepo.GetByShopID(ctx, shopID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	if !shop.NeedsRefresh(s.now(), RefreshWindow) {
		return shop.AccessToken, nil
	}
	if shop.RefreshToken == "" {
		return "", ErrTokenNotFound
	}
	return s.RefreshShop(ctx, shop)
}

// RefreshShop 刷新单个店铺令牌并落库，同一店铺的并发刷新合并为一次
func (s *TokenService) RefreshShop(ctx context.Context, shop *model.ShopeeToken) (string, error) {
	v, err, _ := s.group.Do(strconv.FormatInt(shop.ShopID, 10), func() (interface{}, error) {
		res, err := s.api.RefreshAccessToken(ctx, shop.ShopID, shop.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("刷新店铺 %d 令牌失败: %w", shop.ShopID, err)
		}
		expiry := s.now().Add(time.Duration(res.ExpireIn) * time.Second)
		if err := s.shopRepo.UpdateToken(ctx, shop.ShopID, res.AccessToken, res.RefreshToken, expiry); err != nil {
			return "", err
		}
		s.log.Info("令牌已刷新",
			zap.Int64("shop_id", shop.ShopID),
			zap.Time("expiry", expiry))
		return res.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
