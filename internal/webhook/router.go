package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/notify"
	"shopee_ops_v1_202610/pkg/metrics"
	"shopee_ops_v1_202610/pkg/shopee"
)

// ==================== 依赖接口 ====================

// OrderStore 订单落库
type OrderStore interface {
	RefreshOrder(ctx context.Context, shopID int64, orderSn string) (*shopee.OrderDetail, error)
	SaveEscrowDetail(ctx context.Context, shopID int64, orderSn string) error
	UpdateOrderStatusOnly(ctx context.Context, shopID int64, orderSn, status string, updateTime int64) error
	UpdateTrackingAndDocument(ctx context.Context, shopID int64, orderSn, trackingNumber, packageNumber string) error
	MarkDocumentReady(ctx context.Context, shopID int64, orderSn string) error
	GetOrder(ctx context.Context, shopID int64, orderSn string) (*model.Order, error)
}

// Automation 特权自动化
type Automation interface {
	HandleAutoShip(ctx context.Context, shopID int64, orderSn string) bool
	HandleAutoChatCancel(ctx context.Context, shopID int64, orderSn string, buyerID int64, buyerUsername string) bool
	HandleAutoChatReturn(ctx context.Context, shopID int64, orderSn string, buyerID int64, buyerUsername string) bool
}

// ShopDirectory 店铺所属用户与名称
type ShopDirectory interface {
	ResolveUserID(ctx context.Context, shopID int64) (string, error)
	ShopName(ctx context.Context, shopID int64) (string, error)
}

// ShopEvents 店铺级通知
type ShopEvents interface {
	HandleUpdate(ctx context.Context, shopID int64, data json.RawMessage) error
	HandleViolation(ctx context.Context, shopID int64, data json.RawMessage) error
	HandlePenalty(ctx context.Context, shopID int64, data json.RawMessage) error
}

// Deps 路由依赖
type Deps struct {
	Orders     OrderStore
	Automation Automation
	Shops      ShopDirectory
	ShopEvents ShopEvents
	Notifier   notify.Notifier
}

// ==================== Router ====================

// Router 按事件类型分发，处理失败只记日志
type Router struct {
	deps Deps
	log  *zap.Logger

	// 自动化在后台执行，不占用推送队列
	bgCtx context.Context
	bg    sync.WaitGroup
}

// NewRouter 创建路由；bgCtx 结束时后台自动化随之取消
func NewRouter(bgCtx context.Context, deps Deps, log *zap.Logger) *Router {
	return &Router{
		deps:  deps,
		log:   log.Named("Webhook"),
		bgCtx: bgCtx,
	}
}

// Handle 处理一次投递
func (r *Router) Handle(ctx context.Context, d *Delivery) error {
	log := r.log.With(
		zap.String("delivery_id", d.ID),
		zap.String("event_kind", d.Kind.String()),
		zap.Int("code", d.Payload.Code),
		zap.Int64("shop_id", d.Payload.ShopID))

	var err error
	switch d.Kind {
	case EventChat:
		err = r.handleChat(ctx, d)
	case EventOrder:
		err = r.handleOrder(ctx, d, log)
	case EventTracking:
		err = r.handleTracking(ctx, d)
	case EventDocument:
		err = r.handleDocument(ctx, d)
	case EventUpdate:
		err = r.deps.ShopEvents.HandleUpdate(ctx, d.Payload.ShopID, d.Payload.Data)
	case EventPenalty:
		err = r.deps.ShopEvents.HandlePenalty(ctx, d.Payload.ShopID, d.Payload.Data)
	case EventViolation:
		err = r.deps.ShopEvents.HandleViolation(ctx, d.Payload.ShopID, d.Payload.Data)
	case EventUnhandled:
		log.Warn("未处理的推送类型", zap.ByteString("data", d.Payload.Data))
		metrics.WebhookEvents.WithLabelValues(d.Kind.String(), "unhandled").Inc()
		return nil
	}

	if err != nil {
		log.Error("推送处理失败", zap.Error(err))
		metrics.WebhookEvents.WithLabelValues(d.Kind.String(), "failed").Inc()
		return err
	}
	log.Debug("推送处理完成")
	metrics.WebhookEvents.WithLabelValues(d.Kind.String(), "ok").Inc()
	return nil
}

// Wait 等待后台自动化结束
func (r *Router) Wait() {
	r.bg.Wait()
}

// background 后台执行，panic 只记日志
func (r *Router) background(name string, fn func(ctx context.Context)) {
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.log.Error("后台任务异常", zap.String("task", name), zap.Any("panic", p), zap.Stack("stack"))
			}
		}()
		fn(r.bgCtx)
	}()
}

// ==================== 其他事件 ====================

func (r *Router) handleTracking(ctx context.Context, d *Delivery) error {
	var data TrackingData
	if err := d.Decode(&data); err != nil {
		return err
	}
	return r.deps.Orders.UpdateTrackingAndDocument(ctx, d.Payload.ShopID, data.OrderSn, data.TrackingNo, data.PackageNumber)
}

func (r *Router) handleDocument(ctx context.Context, d *Delivery) error {
	var data DocumentData
	if err := d.Decode(&data); err != nil {
		return err
	}
	return r.deps.Orders.MarkDocumentReady(ctx, d.Payload.ShopID, data.OrderSn)
}

// handleChat 新消息转发给店铺所属用户的在线连接
func (r *Router) handleChat(ctx context.Context, d *Delivery) error {
	var data ChatData
	if err := d.Decode(&data); err != nil {
		return err
	}
	if data.Type != "message" {
		return nil
	}
	shopID := d.Payload.ShopID
	userID, err := r.deps.Shops.ResolveUserID(ctx, shopID)
	if err != nil {
		return fmt.Errorf("无法确定店铺所属用户: %w", err)
	}
	shopName, _ := r.deps.Shops.ShopName(ctx, shopID)

	ev, err := notify.NewEvent(notify.EventChat, shopID, map[string]any{
		"type":      "new_message",
		"shop_name": shopName,
		"content":   data.Content,
	})
	if err != nil {
		return err
	}
	return r.deps.Notifier.Notify(ctx, userID, ev)
}
