package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/repository"
	"shopee_ops_v1_202610/pkg/cache"
)

// DefaultSettingsTTL 设置快照缓存时长
const DefaultSettingsTTL = time.Hour

// ErrShopOwnerNotFound 无法确定店铺所属用户
var ErrShopOwnerNotFound = errors.New("店铺所属用户不存在")

// ==================== SettingsService ====================

// SettingsService 用户设置读取，缓存只做加速，未命中回源数据库
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	shopRepo     repository.ShopRepository
	cache        cache.Store
	validate     *validator.Validate
	ttl          time.Duration
	now          func() time.Time
	log          *zap.Logger
}

// NewSettingsService 创建设置服务
func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	shopRepo repository.ShopRepository,
	store cache.Store,
	ttl time.Duration,
	log *zap.Logger,
) *SettingsService {
	if ttl <= 0 {
		ttl = DefaultSettingsTTL
	}
	return &SettingsService{
		settingsRepo: settingsRepo,
		shopRepo:     shopRepo,
		cache:        store,
		validate:     validator.New(),
		ttl:          ttl,
		now:          time.Now,
		log:          log.Named("Settings"),
	}
}

// ResolveUserID 店铺 -> 所属用户
func (s *SettingsService) ResolveUserID(ctx context.Context, shopID int64) (string, error) {
	key := cache.ShopToUserKey(shopID)
	if userID, err := s.cache.Get(ctx, key); err == nil && userID != "" {
		return userID, nil
	} else if err != nil && !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
	}

	userID, err := s.shopRepo.GetOwnerUserID(ctx, shopID)
	if errors.Is(err, repository.ErrShopNotFound) {
		return "", ErrShopOwnerNotFound
	}
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, key, userID, s.ttl); err != nil {
		s.log.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
	return userID, nil
}

// ShopName 店铺名称，取不到时返回空串
func (s *SettingsService) ShopName(ctx context.Context, shopID int64) (string, error) {
	key := cache.ShopNameKey(shopID)
	if name, err := s.cache.Get(ctx, key); err == nil {
		return name, nil
	}
	shop, err := s.shopRepo.GetByShopID(ctx, shopID)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, key, shop.ShopName, s.ttl); err != nil {
		s.log.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
	return shop.ShopName, nil
}

// GetSnapshot 用户设置快照
// 缓存内容版本不符或校验失败按未命中处理
func (s *SettingsService) GetSnapshot(ctx context.Context, userID string) (*model.SettingsSnapshot, error) {
	key := cache.UserSettingsKey(userID)

	var cached model.SettingsSnapshot
	hit, err := cache.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		s.log.Warn("读取设置缓存失败", zap.String("user_id", userID), zap.Error(err))
	}
	if hit {
		verr := s.check(&cached, userID)
		if verr == nil {
			return &cached, nil
		}
		s.log.Info("设置缓存失效，回源数据库", zap.String("user_id", userID), zap.Error(verr))
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, snap, s.ttl); err != nil {
		s.log.Warn("写入设置缓存失败", zap.String("user_id", userID), zap.Error(err))
	}
	return snap, nil
}

// Invalidate 清除用户相关缓存
func (s *SettingsService) Invalidate(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, cache.UserSettingsKey(userID))
}

func (s *SettingsService) check(snap *model.SettingsSnapshot, userID string) error {
	if snap.Version != model.SettingsSnapshotVersion {
		return fmt.Errorf("快照版本 %d 与当前版本 %d 不一致", snap.Version, model.SettingsSnapshotVersion)
	}
	if snap.UserID != userID {
		return fmt.Errorf("快照用户 %q 不匹配", snap.UserID)
	}
	return s.validate.Struct(snap)
}

// load 从数据库组装快照
func (s *SettingsService) load(ctx context.Context, userID string) (*model.SettingsSnapshot, error) {
	p, err := s.settingsRepo.GetPengaturan(ctx, userID)
	if err != nil {
		return nil, err
	}
	shops, err := s.settingsRepo.ListAutoShipChat(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan, err := s.settingsRepo.GetActivePlanName(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &model.SettingsSnapshot{
		Version:  model.SettingsSnapshotVersion,
		UserID:   userID,
		PlanName: plan,
		Shops:    make([]model.ShopSettings, 0, len(shops)),
		CachedAt: s.now(),
	}
	if p != nil {
		snap.AutoShip = p.AutoShip
		snap.AutoShipInterval = model.ClampAutoShipInterval(p.AutoShipInterval)
		if snap.AutoShipInterval != p.AutoShipInterval {
			s.log.Warn("自动发货等待超出范围，按边界执行",
				zap.String("user_id", userID),
				zap.Int("configured", p.AutoShipInterval),
				zap.Int("applied", snap.AutoShipInterval))
		}
		snap.InCancelMsg = p.InCancelMsg
		snap.InCancelStatus = p.InCancelStatus
		snap.InReturnMsg = p.InReturnMsg
		snap.InReturnStatus = p.InReturnStatus
	}
	for _, sh := range shops {
		snap.Shops = append(snap.Shops, model.ShopSettings{
			ShopID:     sh.ShopID,
			StatusChat: sh.StatusChat,
			StatusShip: sh.StatusShip,
		})
	}
	if err := s.validate.Struct(snap); err != nil {
		return nil, fmt.Errorf("用户设置无效: %w", err)
	}
	return snap, nil
}
