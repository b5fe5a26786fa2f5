package task

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/middleware"
	"shopee_ops_v1_202610/internal/repository"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理定时同步与令牌保活
type TaskManager struct {
	syncTask  *ScheduledSyncTask
	tokenTask *TokenTask
	log       *zap.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	// Repositories
	ShopRepo repository.ShopRepository

	// Services
	OrderSync   OrderSyncer
	BookingSync BookingSyncer
	Tokens      TokenRefresher

	Limiter *middleware.SyncRateLimiter
	Logger  *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 定时同步
	SyncEnabled     bool
	SyncSpec        string
	SyncConcurrency int

	// 令牌保活
	TokenEnabled     bool
	TokenSpec        string
	TokenConcurrency int
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SyncEnabled:     true,
		SyncSpec:        "0 */15 * * * *",
		SyncConcurrency: 5,

		TokenEnabled:     true,
		TokenSpec:        "0 */30 * * * *",
		TokenConcurrency: 10,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tm := &TaskManager{log: log.Named("TaskManager")}

	if cfg.SyncEnabled && deps.OrderSync != nil && deps.BookingSync != nil {
		tm.syncTask = NewScheduledSyncTask(deps.ShopRepo, deps.OrderSync, deps.BookingSync, deps.Limiter, cfg.SyncSpec, log)
		tm.syncTask.SetConcurrency(cfg.SyncConcurrency, 200*time.Millisecond)
	}

	if cfg.TokenEnabled && deps.Tokens != nil {
		tm.tokenTask = NewTokenTask(deps.ShopRepo, deps.Tokens, cfg.TokenSpec, log)
		tm.tokenTask.SetConcurrency(cfg.TokenConcurrency, 50*time.Millisecond)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务，任一 cron 表达式无效即返回错误
func (tm *TaskManager) Start() error {
	tm.log.Info("正在启动后台任务")

	if tm.tokenTask != nil {
		if err := tm.tokenTask.Start(); err != nil {
			return err
		}
	}
	if tm.syncTask != nil {
		if err := tm.syncTask.Start(); err != nil {
			return err
		}
	}

	tm.log.Info("后台任务已全部启动")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	tm.log.Info("正在停止后台任务")

	if tm.syncTask != nil {
		tm.syncTask.Stop()
	}
	if tm.tokenTask != nil {
		tm.tokenTask.Stop()
	}

	tm.log.Info("后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerShopSync 立即同步单个店铺
func (tm *TaskManager) TriggerShopSync(ctx context.Context, shopID int64) (*ShopSyncReport, error) {
	if tm.syncTask == nil {
		return nil, ErrTaskDisabled
	}
	return tm.syncTask.SyncShopNow(ctx, shopID)
}

// TriggerAllShopsSync 触发所有店铺同步
func (tm *TaskManager) TriggerAllShopsSync() {
	if tm.syncTask != nil {
		tm.syncTask.SyncAllNow()
	}
}

// TriggerTokenRefresh 立即刷新即将过期的令牌
func (tm *TaskManager) TriggerTokenRefresh(ctx context.Context) (int, error) {
	if tm.tokenTask == nil {
		return 0, ErrTaskDisabled
	}
	return tm.tokenTask.RefreshNow(ctx), nil
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"sync":  tm.syncTask != nil,
		"token": tm.tokenTask != nil,
	}
}

// ErrTaskDisabled 任务未启用
var ErrTaskDisabled = errors.New("task is disabled")
