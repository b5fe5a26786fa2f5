package service

import (
	"context"
	"time"
)

// 同步阶段
const (
	PhaseStarting  = "starting"
	PhaseOrders    = "orders"
	PhaseBookings  = "bookings"
	PhaseCompleted = "completed"
)

// 进度类型
const (
	ProgressOrders   = "orders"
	ProgressBookings = "bookings"
	ProgressCombined = "combined"
)

// SyncRequest 手动同步请求
type SyncRequest struct {
	ShopID          int64
	OrderSns        []string
	BookingSns      []string
	IncludeBookings bool
}

// StreamProgress 推给客户端的进度行
// Current 为已处理数（含失败），决定进度百分比；Processed 只计成功，与最终结果一致
type StreamProgress struct {
	Phase      string `json:"phase"`
	Type       string `json:"type"`
	Current    int    `json:"current"`
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Timestamp  string `json:"timestamp"`
}

// SyncSummary 汇总
type SyncSummary struct {
	ShopID         int64 `json:"shop_id"`
	TotalProcessed int   `json:"total_processed"`
	TotalItems     int   `json:"total_items"`
	DurationMs     int64 `json:"duration_ms"`
}

// SyncReport 最终结果，Bookings 未请求时为 nil
type SyncReport struct {
	Orders   *SyncResult `json:"orders"`
	Bookings *SyncResult `json:"bookings"`
	Summary  SyncSummary `json:"summary"`
}

// SyncService 串联订单与预约单同步
type SyncService struct {
	orderSync   *OrderSyncService
	bookingSync *BookingSyncService
	now         func() time.Time
}

// NewSyncService 创建同步编排服务
func NewSyncService(orderSync *OrderSyncService, bookingSync *BookingSyncService) *SyncService {
	return &SyncService{
		orderSync:   orderSync,
		bookingSync: bookingSync,
		now:         time.Now,
	}
}

// Run 执行一次手动同步，emit 在每个批次后调用
func (s *SyncService) Run(ctx context.Context, req SyncRequest, emit func(StreamProgress)) (*SyncReport, error) {
	start := s.now()
	if emit == nil {
		emit = func(StreamProgress) {}
	}
	emit(s.progress(PhaseStarting, ProgressCombined, SyncProgress{}))

	onOrders := func(p SyncProgress) {
		emit(s.progress(PhaseOrders, ProgressOrders, p))
	}
	var (
		orders *SyncResult
		err    error
	)
	if len(req.OrderSns) > 0 {
		orders, err = s.orderSync.SyncOrdersByOrderSns(ctx, req.ShopID, req.OrderSns, onOrders)
	} else {
		orders, err = s.orderSync.SyncOrders(ctx, req.ShopID, SyncOptions{OnProgress: onOrders})
	}
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Orders: orders}
	if req.IncludeBookings || len(req.BookingSns) > 0 {
		onBookings := func(p SyncProgress) {
			emit(s.progress(PhaseBookings, ProgressBookings, p))
		}
		var bookings *SyncResult
		if len(req.BookingSns) > 0 {
			bookings, err = s.bookingSync.SyncBookingsByBookingSns(ctx, req.ShopID, req.BookingSns, onBookings)
		} else {
			bookings, err = s.bookingSync.SyncBookings(ctx, req.ShopID, SyncOptions{OnProgress: onBookings})
		}
		if err != nil {
			return nil, err
		}
		report.Bookings = bookings
	}

	report.Summary = SyncSummary{
		ShopID:         req.ShopID,
		TotalProcessed: orders.Processed,
		TotalItems:     orders.Total,
		DurationMs:     s.now().Sub(start).Milliseconds(),
	}
	if report.Bookings != nil {
		report.Summary.TotalProcessed += report.Bookings.Processed
		report.Summary.TotalItems += report.Bookings.Total
	}
	emit(s.progress(PhaseCompleted, ProgressCombined, SyncProgress{
		Current:   report.Summary.TotalItems,
		Processed: report.Summary.TotalProcessed,
		Total:     report.Summary.TotalItems,
	}))
	return report, nil
}

func (s *SyncService) progress(phase, typ string, p SyncProgress) StreamProgress {
	pct := 0
	if phase == PhaseCompleted {
		pct = 100
	} else if p.Total > 0 {
		pct = p.Current * 100 / p.Total
	}
	return StreamProgress{
		Phase:      phase,
		Type:       typ,
		Current:    p.Current,
		Processed:  p.Processed,
		Total:      p.Total,
		Percentage: pct,
		Timestamp:  s.now().UTC().Format(time.RFC3339),
	}
}
