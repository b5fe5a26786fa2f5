package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/pkg/metrics"
)

// ==================== 同步参数 ====================

// 同步默认值
const (
	DefaultSyncDays      = 7
	DefaultSyncPageSize  = 50
	DefaultSyncBatchSize = 20
	DefaultParallelism   = 5
)

// 时间窗口字段
const (
	TimeRangeCreate = "create_time"
	TimeRangeUpdate = "update_time"
)

// SyncProgress 同步进度，Total 会随分页增长
type SyncProgress struct {
	Current   int // 已处理（含失败）
	Processed int // 成功
	Total     int
}

// ProgressFunc 进度回调，每个批次结束后同步调用
type ProgressFunc func(SyncProgress)

// SyncOptions 同步选项
type SyncOptions struct {
	TimeFrom       time.Time
	TimeTo         time.Time
	TimeRangeField string
	PageSize       int
	OnProgress     ProgressFunc
}

// SyncResult 同步结果
type SyncResult struct {
	Success   bool     `json:"success"`
	Total     int      `json:"total"`
	Processed int      `json:"processed"`
	Failed    []string `json:"failed,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// SyncConfig 管道参数
type SyncConfig struct {
	DefaultDays int
	PageSize    int
	BatchSize   int
	Parallelism int
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.DefaultDays <= 0 {
		c.DefaultDays = DefaultSyncDays
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultSyncPageSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultSyncBatchSize
	}
	if c.Parallelism <= 0 {
		c.Parallelism = DefaultParallelism
	}
	return c
}

// window 补齐时间窗口
func (c SyncConfig) window(opts SyncOptions, now time.Time) (from, to int64, field string) {
	to = now.Unix()
	if !opts.TimeTo.IsZero() {
		to = opts.TimeTo.Unix()
	}
	from = now.AddDate(0, 0, -c.DefaultDays).Unix()
	if !opts.TimeFrom.IsZero() {
		from = opts.TimeFrom.Unix()
	}
	field = opts.TimeRangeField
	if field == "" {
		field = TimeRangeCreate
	}
	return from, to, field
}

// NormalizeSns 去空白、去重，保持原顺序
func NormalizeSns(sns []string) []string {
	trimmed := lo.Map(sns, func(sn string, _ int) string { return strings.TrimSpace(sn) })
	return lo.Uniq(lo.Compact(trimmed))
}

// ==================== 批处理 ====================

// batchTracker 汇总一次同步的计数
type batchTracker struct {
	entity     string
	onProgress ProgressFunc
	result     SyncResult
}

func newBatchTracker(entity string, onProgress ProgressFunc) *batchTracker {
	return &batchTracker{entity: entity, onProgress: onProgress, result: SyncResult{Success: true}}
}

func (t *batchTracker) grow(n int) {
	t.result.Total += n
}

// done 记录一个批次的结果并上报进度
func (t *batchTracker) done(ok int, failed []string) {
	t.result.Processed += ok
	t.result.Failed = append(t.result.Failed, failed...)
	metrics.SyncItems.WithLabelValues(t.entity, "ok").Add(float64(ok))
	metrics.SyncItems.WithLabelValues(t.entity, "failed").Add(float64(len(failed)))
	if t.onProgress != nil {
		t.onProgress(SyncProgress{
			Current:   t.result.Processed + len(t.result.Failed),
			Processed: t.result.Processed,
			Total:     t.result.Total,
		})
	}
}

// saveAll 并发保存一个批次内的条目，单条失败不影响其他条目
func saveAll[T any](ctx context.Context, parallelism int, log *zap.Logger, items []T, key func(T) string, save func(context.Context, T) error) (int, []string) {
	var (
		mu     sync.Mutex
		ok     int
		failed []string
	)
	p := pool.New().WithMaxGoroutines(parallelism)
	for _, item := range items {
		p.Go(func() {
			err := save(ctx, item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("保存失败", zap.String("sn", key(item)), zap.Error(err))
				failed = append(failed, key(item))
				return
			}
			ok++
		})
	}
	p.Wait()
	return ok, failed
}

// missingSns 批次中详情未返回的编号
func missingSns(requested []string, got map[string]bool) []string {
	return lo.Filter(requested, func(sn string, _ int) bool { return !got[sn] })
}
