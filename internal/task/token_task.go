package task

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/model"
)

// ExpiringShopFinder 查询即将过期的店铺令牌
type ExpiringShopFinder interface {
	FindExpiringShops(ctx context.Context, before time.Time) ([]model.ShopeeToken, error)
}

// TokenRefresher 刷新单店铺令牌
type TokenRefresher interface {
	RefreshShop(ctx context.Context, shop *model.ShopeeToken) (string, error)
}

// TokenTask 令牌保活任务
type TokenTask struct {
	shops     ExpiringShopFinder
	refresher TokenRefresher
	cron      *cron.Cron
	spec      string
	log       *zap.Logger
	now       func() time.Time

	// 提前量需覆盖两次执行的间隔
	window time.Duration

	concurrencyLimit int
	sleepTime        time.Duration
}

// NewTokenTask 创建令牌保活任务
func NewTokenTask(shops ExpiringShopFinder, refresher TokenRefresher, spec string, log *zap.Logger) *TokenTask {
	if spec == "" {
		spec = "0 */30 * * * *"
	}
	return &TokenTask{
		shops:            shops,
		refresher:        refresher,
		cron:             cron.New(cron.WithSeconds()),
		spec:             spec,
		log:              log.Named("TokenTask"),
		now:              time.Now,
		window:           time.Hour,
		concurrencyLimit: 10,
		sleepTime:        50 * time.Millisecond,
	}
}

// SetConcurrency 设置并发参数
func (t *TokenTask) SetConcurrency(limit int, sleep time.Duration) {
	if limit > 0 {
		t.concurrencyLimit = limit
	}
	t.sleepTime = sleep
}

// Start 启动定时任务，首次检查立即执行
func (t *TokenTask) Start() error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.log.Info("服务启动，执行首次 Token 检查")
		t.refreshJob(ctx)
	}()

	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.refreshJob(ctx)
	})
	if err != nil {
		t.log.Error("定时任务注册失败", zap.String("spec", t.spec), zap.Error(err))
		return err
	}

	t.cron.Start()
	t.log.Info("已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止任务
func (t *TokenTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info("已停止")
}

// RefreshNow 立即执行一轮刷新，返回成功数
func (t *TokenTask) RefreshNow(ctx context.Context) int {
	return t.refreshJob(ctx)
}

func (t *TokenTask) refreshJob(ctx context.Context) int {
	shops, err := t.shops.FindExpiringShops(ctx, t.now().Add(t.window))
	if err != nil {
		t.log.Error("店铺过期状态查询失败", zap.Error(err))
		return 0
	}
	if len(shops) == 0 {
		return 0
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup
	var refreshed atomic.Int64

	t.log.Info("开始刷新 Token", zap.Int("shops", len(shops)), zap.Int("concurrency", t.concurrencyLimit))

	for i := range shops {
		select {
		case <-ctx.Done():
			t.log.Warn("任务超时停止")
			wg.Wait()
			return int(refreshed.Load())
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(t.sleepTime)

		go func(s model.ShopeeToken) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := t.refresher.RefreshShop(ctx, &s); err != nil {
				t.log.Warn("刷新失败", zap.Int64("shop_id", s.ShopID), zap.Error(err))
				return
			}
			refreshed.Add(1)
		}(shops[i])
	}

	wg.Wait()
	t.log.Info("本轮 Token 刷新完成", zap.Int("refreshed", int(refreshed.Load())), zap.Int("total", len(shops)))
	return int(refreshed.Load())
}
