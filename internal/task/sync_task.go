package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/middleware"
	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/service"
)

// ==================== ScheduledSyncTask 定时同步任务 ====================

// ShopLister 活跃店铺来源
type ShopLister interface {
	ListActiveShops(ctx context.Context) ([]model.ShopeeToken, error)
}

// OrderSyncer 订单同步
type OrderSyncer interface {
	SyncOrders(ctx context.Context, shopID int64, opts service.SyncOptions) (*service.SyncResult, error)
}

// BookingSyncer 预约单同步
type BookingSyncer interface {
	SyncBookings(ctx context.Context, shopID int64, opts service.SyncOptions) (*service.SyncResult, error)
}

// cooldownRetention 冷却记录保留时长，超过后在每轮结束时清理
const cooldownRetention = time.Hour

// ShopSyncReport 单店铺同步结果
type ShopSyncReport struct {
	ShopID   int64
	Orders   *service.SyncResult
	Bookings *service.SyncResult
}

// ScheduledSyncTask 定时增量同步订单与预约单
type ScheduledSyncTask struct {
	shops    ShopLister
	orders   OrderSyncer
	bookings BookingSyncer
	limiter  *middleware.SyncRateLimiter
	cron     *cron.Cron
	spec     string
	log      *zap.Logger
	now      func() time.Time

	// 并发控制
	concurrencyLimit int
	sleepTime        time.Duration
	lookback         time.Duration
	cooldown         time.Duration
	runTimeout       time.Duration
}

// NewScheduledSyncTask 创建定时同步任务
func NewScheduledSyncTask(
	shops ShopLister,
	orders OrderSyncer,
	bookings BookingSyncer,
	limiter *middleware.SyncRateLimiter,
	spec string,
	log *zap.Logger,
) *ScheduledSyncTask {
	if spec == "" {
		spec = "0 */15 * * * *"
	}
	if limiter == nil {
		limiter = middleware.NewSyncRateLimiter()
	}
	return &ScheduledSyncTask{
		shops:            shops,
		orders:           orders,
		bookings:         bookings,
		limiter:          limiter,
		cron:             cron.New(cron.WithSeconds()),
		spec:             spec,
		log:              log.Named("ScheduledSync"),
		now:              time.Now,
		concurrencyLimit: 5,
		sleepTime:        200 * time.Millisecond,
		lookback:         24 * time.Hour,
		cooldown:         5 * time.Minute,
		runTimeout:       14 * time.Minute,
	}
}

// SetConcurrency 设置并发参数
func (t *ScheduledSyncTask) SetConcurrency(limit int, sleep time.Duration) {
	if limit > 0 {
		t.concurrencyLimit = limit
	}
	t.sleepTime = sleep
}

// SetCooldown 同一店铺两次定时同步的最小间隔
func (t *ScheduledSyncTask) SetCooldown(d time.Duration) {
	t.cooldown = d
}

// Start 启动定时任务
func (t *ScheduledSyncTask) Start() error {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.runTimeout)
		defer cancel()
		t.syncAllShops(ctx)
	})
	if err != nil {
		t.log.Error("定时任务注册失败", zap.String("spec", t.spec), zap.Error(err))
		return err
	}

	t.cron.Start()
	t.log.Info("已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止任务，等待进行中的同步结束
func (t *ScheduledSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info("已停止")
}

// syncAllShops 同步所有活跃店铺
func (t *ScheduledSyncTask) syncAllShops(ctx context.Context) {
	shops, err := t.shops.ListActiveShops(ctx)
	if err != nil {
		t.log.Error("获取店铺列表失败", zap.Error(err))
		return
	}
	if len(shops) == 0 {
		t.log.Info("无活跃店铺需要同步")
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	var (
		totalOrders   int
		totalBookings int
		totalErrors   int
		skipped       int
		mu            sync.Mutex
	)

	t.log.Info("开始同步", zap.Int("shops", len(shops)), zap.Int("concurrency", t.concurrencyLimit))

	for i := range shops {
		shopID := shops[i].ShopID
		select {
		case <-ctx.Done():
			t.log.Warn("任务超时停止")
			wg.Wait()
			return
		default:
		}

		key := middleware.ShopSyncKey(shopID, middleware.SyncTypeScheduled)
		if !t.limiter.Check(key, t.cooldown).Allowed {
			skipped++
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(t.sleepTime)

		go func(shopID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			report, err := t.SyncShopNow(ctx, shopID)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				t.log.Warn("店铺同步失败", zap.Int64("shop_id", shopID), zap.Error(err))
				totalErrors++
			}
			if report.Orders != nil {
				totalOrders += report.Orders.Processed
			}
			if report.Bookings != nil {
				totalBookings += report.Bookings.Processed
			}
		}(shopID)
	}

	wg.Wait()
	if n := t.limiter.Sweep(cooldownRetention); n > 0 {
		t.log.Debug("清理过期冷却记录", zap.Int("removed", n))
	}
	t.log.Info("同步完成",
		zap.Int("shops", len(shops)),
		zap.Int("skipped", skipped),
		zap.Int("orders", totalOrders),
		zap.Int("bookings", totalBookings),
		zap.Int("errors", totalErrors))
}

// ==================== 手动触发 ====================

// SyncShopNow 按 update_time 增量同步单个店铺，订单失败不影响预约单
func (t *ScheduledSyncTask) SyncShopNow(ctx context.Context, shopID int64) (*ShopSyncReport, error) {
	now := t.now()
	opts := service.SyncOptions{
		TimeFrom:       now.Add(-t.lookback),
		TimeTo:         now,
		TimeRangeField: service.TimeRangeUpdate,
	}

	report := &ShopSyncReport{ShopID: shopID}
	var firstErr error

	orders, err := t.orders.SyncOrders(ctx, shopID, opts)
	if err != nil {
		firstErr = err
	}
	report.Orders = orders

	bookings, err := t.bookings.SyncBookings(ctx, shopID, opts)
	if err != nil && firstErr == nil {
		firstErr = err
	}
	report.Bookings = bookings

	return report, firstErr
}

// SyncAllNow 立即同步所有店铺
func (t *ScheduledSyncTask) SyncAllNow() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.runTimeout)
		defer cancel()
		t.syncAllShops(ctx)
	}()
}
