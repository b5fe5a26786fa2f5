package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultBuffer 每个订阅者的缓冲
const DefaultBuffer = 32

// Subscription 一个 SSE 连接的订阅
type Subscription struct {
	UserID string
	C      <-chan Event

	ch     chan Event
	closed atomic.Bool
}

// Hub 进程内按用户分组的订阅中心
// 订阅者消费过慢时丢弃事件，不阻塞推送方
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	log    *zap.Logger
}

var _ Notifier = (*Hub)(nil)

// NewHub 创建订阅中心
func NewHub(buffer int, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		log:    log.Named("Hub"),
	}
}

// Subscribe 订阅用户事件，返回取消函数
func (h *Hub) Subscribe(userID string) (*Subscription, func()) {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{UserID: userID, C: ch, ch: ch}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	return sub, func() { h.unsubscribe(sub) }
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.UserID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.UserID)
		}
	}
	if sub.closed.CompareAndSwap(false, true) {
		close(sub.ch)
	}
}

// Notify 投递给用户的全部订阅者
func (h *Hub) Notify(_ context.Context, userID string, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[userID] {
		select {
		case sub.ch <- ev:
		default:
			h.log.Warn("订阅者积压，丢弃事件",
				zap.String("user_id", userID),
				zap.String("event_id", ev.ID),
				zap.String("type", ev.Type))
		}
	}
	return nil
}

// Count 用户当前订阅数
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Close 关闭全部订阅
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.subs {
		for sub := range set {
			if sub.closed.CompareAndSwap(false, true) {
				close(sub.ch)
			}
		}
		delete(h.subs, userID)
	}
}
