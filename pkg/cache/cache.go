package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache: miss")

// Store 键值缓存
// 缓存只做加速，调用方在未命中或出错时回源数据库
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// ==================== Key ====================

// UserSettingsKey 用户设置快照
func UserSettingsKey(userID string) string {
	return "user_settings:" + userID
}

// ShopToUserKey 店铺 -> 用户反查
func ShopToUserKey(shopID int64) string {
	return fmt.Sprintf("shop_to_user:%d", shopID)
}

// ShopNameKey 店铺名称
func ShopNameKey(shopID int64) string {
	return fmt.Sprintf("shop_name:%d", shopID)
}

// ==================== JSON 辅助 ====================

// GetJSON 读取并解码，未命中返回 false
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("缓存解码失败 %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 编码并写入
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("缓存编码失败 %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw), ttl)
}
