package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== SyncRateLimiter 同步冷却 ====================

// SyncRateLimiter 按 key 记录最近一次同步，冷却期内拒绝再次触发
// 手动同步与定时同步共用一个实例，key 中带同步类型互不影响
type SyncRateLimiter struct {
	locks sync.Map // key -> *cooldownEntry
	now   func() time.Time
}

type cooldownEntry struct {
	mu       sync.Mutex
	lastTime time.Time
}

// NewSyncRateLimiter 创建限流器
func NewSyncRateLimiter() *SyncRateLimiter {
	return &SyncRateLimiter{now: time.Now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并占用冷却窗口
func (r *SyncRateLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &cooldownEntry{})
	entry := actual.(*cooldownEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	if elapsed := now.Sub(entry.lastTime); elapsed < interval {
		return CheckResult{RetryAfter: interval - elapsed}
	}
	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 归还窗口，同步没有真正执行时调用
func (r *SyncRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// Sweep 清理 maxAge 之前的记录，返回清理数量
// maxAge 需大于所有调用方使用的冷却间隔
func (r *SyncRateLimiter) Sweep(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)
	removed := 0
	r.locks.Range(func(key, value any) bool {
		entry := value.(*cooldownEntry)
		entry.mu.Lock()
		stale := entry.lastTime.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			r.locks.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// ==================== Key ====================

// SyncType 同步类型
type SyncType string

const (
	SyncTypeManual    SyncType = "manual"
	SyncTypeScheduled SyncType = "scheduled"
)

// ShopSyncKey 店铺级同步 Key，如 shop:123:manual
func ShopSyncKey(shopID int64, syncType SyncType) string {
	return fmt.Sprintf("shop:%d:%s", shopID, syncType)
}
