package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/pkg/retry"
	"shopee_ops_v1_202610/pkg/shopee"
)

// OrderSyncService 订单同步管道：分页列表 -> 分批详情 -> 逐单落库
type OrderSyncService struct {
	api    shopee.API
	tokens TokenProvider
	orders *OrderService
	cfg    SyncConfig
	now    func() time.Time
	log    *zap.Logger

	retryUnit time.Duration
}

// NewOrderSyncService 创建订单同步服务
func NewOrderSyncService(api shopee.API, tokens TokenProvider, orders *OrderService, cfg SyncConfig, log *zap.Logger) *OrderSyncService {
	return &OrderSyncService{
		api:       api,
		tokens:    tokens,
		orders:    orders,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		log:       log.Named("OrderSync"),
		retryUnit: time.Second,
	}
}

// SetRetryUnit 调整退避基准
func (s *OrderSyncService) SetRetryUnit(d time.Duration) {
	s.retryUnit = d
}

// SyncOrders 按时间窗口同步
// 只有第一页列表拿不到时返回错误，其余失败计入结果
func (s *OrderSyncService) SyncOrders(ctx context.Context, shopID int64, opts SyncOptions) (*SyncResult, error) {
	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("获取访问令牌失败: %w", err)
	}

	from, to, field := s.cfg.window(opts, s.now())
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}

	tracker := newBatchTracker("order", opts.OnProgress)
	cursor := ""
	for page := 1; ; page++ {
		list, err := retry.WithRetry(ctx, 3, s.retryUnit, func(ctx context.Context) (*shopee.OrderListResult, error) {
			return s.api.GetOrderList(ctx, shopID, token, shopee.ListOptions{
				TimeRangeField: field,
				TimeFrom:       from,
				TimeTo:         to,
				PageSize:       pageSize,
				Cursor:         cursor,
			})
		})
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("获取订单列表失败: %w", err)
			}
			s.log.Error("分页中断", zap.Int64("shop_id", shopID), zap.Int("page", page), zap.Error(err))
			tracker.result.Success = false
			tracker.result.Error = err.Error()
			break
		}

		sns := NormalizeSns(lo.Map(list.OrderList, func(it shopee.OrderListItem, _ int) string { return it.OrderSn }))
		tracker.grow(len(sns))
		s.runBatches(ctx, shopID, token, sns, tracker)

		if !list.More || list.NextCursor == "" {
			break
		}
		cursor = list.NextCursor
	}

	s.log.Info("订单同步完成",
		zap.Int64("shop_id", shopID),
		zap.Int("total", tracker.result.Total),
		zap.Int("processed", tracker.result.Processed))
	return &tracker.result, nil
}

// SyncOrdersByOrderSns 按指定订单号同步
func (s *OrderSyncService) SyncOrdersByOrderSns(ctx context.Context, shopID int64, orderSns []string, onProgress ProgressFunc) (*SyncResult, error) {
	sns := NormalizeSns(orderSns)
	tracker := newBatchTracker("order", onProgress)
	if len(sns) == 0 {
		return &tracker.result, nil
	}

	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("获取访问令牌失败: %w", err)
	}

	tracker.grow(len(sns))
	s.runBatches(ctx, shopID, token, sns, tracker)

	s.log.Info("指定订单同步完成",
		zap.Int64("shop_id", shopID),
		zap.Int("total", tracker.result.Total),
		zap.Int("processed", tracker.result.Processed))
	return &tracker.result, nil
}

func (s *OrderSyncService) runBatches(ctx context.Context, shopID int64, token string, sns []string, tracker *batchTracker) {
	for _, batch := range lo.Chunk(sns, s.cfg.BatchSize) {
		if ctx.Err() != nil {
			tracker.done(0, batch)
			continue
		}
		ok, failed := s.processBatch(ctx, shopID, token, batch)
		tracker.done(ok, failed)
	}
}

// processBatch 一次详情请求覆盖整批；请求失败则整批计为失败
func (s *OrderSyncService) processBatch(ctx context.Context, shopID int64, token string, batch []string) (int, []string) {
	details, err := retry.WithRetry(ctx, 3, s.retryUnit, func(ctx context.Context) ([]shopee.OrderDetail, error) {
		return s.api.GetOrderDetail(ctx, shopID, token, batch)
	})
	if err != nil {
		s.log.Error("批量获取订单详情失败",
			zap.Int64("shop_id", shopID),
			zap.Strings("order_sns", batch),
			zap.Error(err))
		return 0, batch
	}

	got := make(map[string]bool, len(details))
	todo := make([]*shopee.OrderDetail, 0, len(details))
	for i := range details {
		d := &details[i]
		if got[d.OrderSn] || !lo.Contains(batch, d.OrderSn) {
			continue
		}
		got[d.OrderSn] = true
		todo = append(todo, d)
	}

	ok, failed := saveAll(ctx, s.cfg.Parallelism, s.log, todo,
		func(d *shopee.OrderDetail) string { return d.OrderSn },
		func(ctx context.Context, d *shopee.OrderDetail) error {
			return s.orders.SaveOrderDetail(ctx, shopID, d)
		})

	if missing := missingSns(batch, got); len(missing) > 0 {
		s.log.Warn("部分订单详情缺失", zap.Int64("shop_id", shopID), zap.Strings("order_sns", missing))
		failed = append(failed, missing...)
	}
	return ok, failed
}
