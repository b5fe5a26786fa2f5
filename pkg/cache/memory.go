package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内缓存
// 未配置 Redis 时使用，也用作店铺名称等热点数据的本地缓存
type MemoryStore struct {
	items sync.Map
	now   func() time.Time
}

// memoryItem 值和过期时间，expiration 为 0 表示不过期
type memoryItem struct {
	value      string
	expiration int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemory 创建进程内缓存
func NewMemory() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	val, ok := m.items.Load(key)
	if !ok {
		return "", ErrMiss
	}

	item := val.(memoryItem)
	if item.expiration > 0 && m.now().UnixNano() > item.expiration {
		m.items.Delete(key) // 懒删除
		return "", ErrMiss
	}
	return item.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = m.now().Add(ttl).UnixNano()
	}
	m.items.Store(key, memoryItem{value: value, expiration: exp})
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.items.Delete(key)
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.items.Clear()
	return nil
}
