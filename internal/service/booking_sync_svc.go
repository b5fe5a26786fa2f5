package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/repository"
	"shopee_ops_v1_202610/pkg/retry"
	"shopee_ops_v1_202610/pkg/shopee"
)

// BookingSyncService 预约单同步管道，落库后补查运单号
type BookingSyncService struct {
	api         shopee.API
	tokens      TokenProvider
	bookingRepo repository.BookingRepository
	cfg         SyncConfig
	now         func() time.Time
	log         *zap.Logger

	retryUnit time.Duration
}

// NewBookingSyncService 创建预约单同步服务
func NewBookingSyncService(api shopee.API, tokens TokenProvider, bookingRepo repository.BookingRepository, cfg SyncConfig, log *zap.Logger) *BookingSyncService {
	return &BookingSyncService{
		api:         api,
		tokens:      tokens,
		bookingRepo: bookingRepo,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
		log:         log.Named("BookingSync"),
		retryUnit:   time.Second,
	}
}

// SetRetryUnit 调整退避基准
func (s *BookingSyncService) SetRetryUnit(d time.Duration) {
	s.retryUnit = d
}

// SyncBookings 按时间窗口同步预约单
func (s *BookingSyncService) SyncBookings(ctx context.Context, shopID int64, opts SyncOptions) (*SyncResult, error) {
	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("获取访问令牌失败: %w", err)
	}

	from, to, field := s.cfg.window(opts, s.now())
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}

	tracker := newBatchTracker("booking", opts.OnProgress)
	cursor := ""
	for page := 1; ; page++ {
		list, err := retry.WithRetry(ctx, 3, s.retryUnit, func(ctx context.Context) (*shopee.BookingListResult, error) {
			return s.api.GetBookingList(ctx, shopID, token, shopee.ListOptions{
				TimeRangeField: field,
				TimeFrom:       from,
				TimeTo:         to,
				PageSize:       pageSize,
				Cursor:         cursor,
			})
		})
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("获取预约单列表失败: %w", err)
			}
			s.log.Error("分页中断", zap.Int64("shop_id", shopID), zap.Int("page", page), zap.Error(err))
			tracker.result.Success = false
			tracker.result.Error = err.Error()
			break
		}

		sns := NormalizeSns(lo.Map(list.BookingList, func(it shopee.BookingListItem, _ int) string { return it.BookingSn }))
		tracker.grow(len(sns))
		s.runBatches(ctx, shopID, token, sns, tracker)

		if !list.More || list.NextCursor == "" {
			break
		}
		cursor = list.NextCursor
	}

	s.log.Info("预约单同步完成",
		zap.Int64("shop_id", shopID),
		zap.Int("total", tracker.result.Total),
		zap.Int("processed", tracker.result.Processed))
	return &tracker.result, nil
}

// SyncBookingsByBookingSns 按指定预约单号同步
func (s *BookingSyncService) SyncBookingsByBookingSns(ctx context.Context, shopID int64, bookingSns []string, onProgress ProgressFunc) (*SyncResult, error) {
	sns := NormalizeSns(bookingSns)
	tracker := newBatchTracker("booking", onProgress)
	if len(sns) == 0 {
		return &tracker.result, nil
	}

	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("获取访问令牌失败: %w", err)
	}

	tracker.grow(len(sns))
	s.runBatches(ctx, shopID, token, sns, tracker)
	return &tracker.result, nil
}

func (s *BookingSyncService) runBatches(ctx context.Context, shopID int64, token string, sns []string, tracker *batchTracker) {
	for _, batch := range lo.Chunk(sns, s.cfg.BatchSize) {
		if ctx.Err() != nil {
			tracker.done(0, batch)
			continue
		}
		ok, failed := s.processBatch(ctx, shopID, token, batch)
		tracker.done(ok, failed)
	}
}

func (s *BookingSyncService) processBatch(ctx context.Context, shopID int64, token string, batch []string) (int, []string) {
	details, err := retry.WithRetry(ctx, 3, s.retryUnit, func(ctx context.Context) ([]shopee.BookingDetail, error) {
		return s.api.GetBookingDetail(ctx, shopID, token, batch)
	})
	if err != nil {
		s.log.Error("批量获取预约单详情失败",
			zap.Int64("shop_id", shopID),
			zap.Strings("booking_sns", batch),
			zap.Error(err))
		return 0, batch
	}

	got := make(map[string]bool, len(details))
	todo := make([]*shopee.BookingDetail, 0, len(details))
	for i := range details {
		d := &details[i]
		if got[d.BookingSn] || !lo.Contains(batch, d.BookingSn) {
			continue
		}
		got[d.BookingSn] = true
		todo = append(todo, d)
	}

	ok, failed := saveAll(ctx, s.cfg.Parallelism, s.log, todo,
		func(d *shopee.BookingDetail) string { return d.BookingSn },
		func(ctx context.Context, d *shopee.BookingDetail) error {
			return s.saveBooking(ctx, shopID, token, d)
		})

	if missing := missingSns(batch, got); len(missing) > 0 {
		s.log.Warn("部分预约单详情缺失", zap.Int64("shop_id", shopID), zap.Strings("booking_sns", missing))
		failed = append(failed, missing...)
	}
	return ok, failed
}

// saveBooking 落库后补查运单号，运单号查询失败不影响结果
func (s *BookingSyncService) saveBooking(ctx context.Context, shopID int64, token string, d *shopee.BookingDetail) error {
	row := ToBookingModel(d, shopID)
	if err := retry.Do(ctx, 5, s.retryUnit, func(ctx context.Context) error {
		return s.bookingRepo.UpsertBookings(ctx, []model.BookingOrder{row})
	}); err != nil {
		return err
	}
	s.updateTrackingNumber(ctx, shopID, token, d.BookingSn)
	return nil
}

// updateTrackingNumber 只写运单号，面单状态保持不变
func (s *BookingSyncService) updateTrackingNumber(ctx context.Context, shopID int64, token, bookingSn string) {
	info, err := s.api.GetBookingTrackingNumber(ctx, shopID, token, bookingSn)
	if err != nil {
		s.log.Debug("预约单暂无运单号", zap.String("booking_sn", bookingSn), zap.Error(err))
		return
	}
	if info == nil || info.TrackingNumber == "" {
		return
	}
	if _, err := s.bookingRepo.UpdateTrackingNumber(ctx, shopID, bookingSn, info.TrackingNumber); err != nil {
		s.log.Warn("写入预约单运单号失败", zap.String("booking_sn", bookingSn), zap.Error(err))
	}
}
