package webhook

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"shopee_ops_v1_202610/pkg/metrics"
)

// 默认参数
const (
	DefaultWorkers        = 8
	DefaultQueueSize      = 256
	DefaultHandlerTimeout = 5 * time.Minute
)

var (
	// ErrQueueFull 队列已满，投递被丢弃
	ErrQueueFull = errors.New("推送队列已满")
	// ErrDispatcherStopped 分发器已停止
	ErrDispatcherStopped = errors.New("推送分发器已停止")
)

// Handler 投递处理者
type Handler interface {
	Handle(ctx context.Context, d *Delivery) error
}

// ==================== Dispatcher ====================

// Dispatcher 按 ShardKey 分片的后台队列
// 同一订单的投递由同一个 worker 顺序处理；worker 内 panic 只记日志
type Dispatcher struct {
	handler Handler
	shards  []chan *Delivery
	timeout time.Duration
	log     *zap.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher 创建分发器
func NewDispatcher(handler Handler, workers, queueSize int, log *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	shards := make([]chan *Delivery, workers)
	for i := range shards {
		shards[i] = make(chan *Delivery, queueSize)
	}
	return &Dispatcher{
		handler: handler,
		shards:  shards,
		timeout: DefaultHandlerTimeout,
		log:     log.Named("Dispatcher"),
	}
}

// Start 启动 worker，ctx 作为每次处理的父 context
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.shards {
		d.wg.Add(1)
		go d.worker(ctx, i, ch)
	}
	d.log.Info("推送分发器已启动", zap.Int("workers", len(d.shards)))
}

// Submit 入队，不等待处理
func (d *Dispatcher) Submit(delivery *Delivery) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	ch := d.shards[shardOf(delivery.ShardKey(), len(d.shards))]
	select {
	case ch <- delivery:
		metrics.WebhookQueueDepth.Inc()
		return nil
	default:
		metrics.WebhookEvents.WithLabelValues(delivery.Kind.String(), "dropped").Inc()
		d.log.Error("推送队列已满，丢弃投递",
			zap.String("delivery_id", delivery.ID),
			zap.String("event_kind", delivery.Kind.String()),
			zap.Int64("shop_id", delivery.Payload.ShopID))
		return ErrQueueFull
	}
}

// Stop 停止接收并等待队列排空
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.shards {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.log.Info("推送分发器已停止")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int, ch <-chan *Delivery) {
	defer d.wg.Done()
	for delivery := range ch {
		metrics.WebhookQueueDepth.Dec()
		d.process(ctx, id, delivery)
	}
}

// process 单次处理的错误边界
func (d *Dispatcher) process(ctx context.Context, id int, delivery *Delivery) {
	defer func() {
		if p := recover(); p != nil {
			metrics.WebhookEvents.WithLabelValues(delivery.Kind.String(), "panic").Inc()
			d.log.Error("推送处理 panic",
				zap.Int("worker", id),
				zap.String("delivery_id", delivery.ID),
				zap.Any("panic", p),
				zap.Stack("stack"))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	// 错误已由 Handler 记录
	_ = d.handler.Handle(ctx, delivery)
}
