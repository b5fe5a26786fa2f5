package webhook

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/notify"
	"shopee_ops_v1_202610/pkg/shopee"
)

// ErrEmptyOrderSn 推送缺少订单号
var ErrEmptyOrderSn = errors.New("推送缺少 ordersn")

// handleOrder 订单状态推送
func (r *Router) handleOrder(ctx context.Context, d *Delivery, log *zap.Logger) error {
	var data OrderData
	if err := d.Decode(&data); err != nil {
		return err
	}
	if data.OrderSn == "" {
		return ErrEmptyOrderSn
	}
	shopID := d.Payload.ShopID
	log = log.With(zap.String("order_sn", data.OrderSn), zap.String("status", data.Status))

	if data.Status == model.OrderStatusToReturn {
		return r.handleToReturn(ctx, shopID, data, log)
	}

	// 店铺名与订单刷新并行，两者都完成后再继续
	var (
		shopName string
		detail   *shopee.OrderDetail
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, err := r.deps.Shops.ShopName(gctx, shopID)
		if err != nil {
			log.Debug("店铺名称获取失败", zap.Error(err))
		}
		shopName = name
		return nil
	})
	g.Go(func() error {
		var err error
		detail, err = r.deps.Orders.RefreshOrder(gctx, shopID, data.OrderSn)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if model.EscrowStatuses[data.Status] {
		if err := r.deps.Orders.SaveEscrowDetail(ctx, shopID, data.OrderSn); err != nil {
			log.Warn("结算明细保存失败", zap.Error(err))
		}
	}

	switch data.Status {
	case model.OrderStatusReadyToShip:
		r.notifyNewOrder(ctx, shopID, shopName, detail, log)
		r.background("auto_ship", func(ctx context.Context) {
			r.deps.Automation.HandleAutoShip(ctx, shopID, data.OrderSn)
		})
	case model.OrderStatusInCancel:
		if detail.BuyerUserID == 0 || detail.BuyerUsername == "" {
			log.Info("订单缺少买家信息，跳过取消自动聊天")
			return nil
		}
		buyerID, buyerName := detail.BuyerUserID, detail.BuyerUsername
		r.background("auto_chat_cancel", func(ctx context.Context) {
			r.deps.Automation.HandleAutoChatCancel(ctx, shopID, data.OrderSn, buyerID, buyerName)
		})
	}
	return nil
}

// handleToReturn 退货只更新状态，买家信息取本地订单
func (r *Router) handleToReturn(ctx context.Context, shopID int64, data OrderData, log *zap.Logger) error {
	if err := r.deps.Orders.UpdateOrderStatusOnly(ctx, shopID, data.OrderSn, data.Status, data.UpdateTime); err != nil {
		return err
	}

	order, err := r.deps.Orders.GetOrder(ctx, shopID, data.OrderSn)
	if err != nil || order.BuyerUserID == 0 || order.BuyerUsername == "" {
		log.Debug("本地订单缺少买家信息，跳过退货自动聊天", zap.Error(err))
		return nil
	}
	buyerID, buyerName := order.BuyerUserID, order.BuyerUsername
	r.background("auto_chat_return", func(ctx context.Context) {
		r.deps.Automation.HandleAutoChatReturn(ctx, shopID, data.OrderSn, buyerID, buyerName)
	})
	return nil
}

// notifyNewOrder 待发货订单通知，失败只记日志
func (r *Router) notifyNewOrder(ctx context.Context, shopID int64, shopName string, detail *shopee.OrderDetail, log *zap.Logger) {
	userID, err := r.deps.Shops.ResolveUserID(ctx, shopID)
	if err != nil {
		log.Warn("无法确定店铺所属用户，跳过新订单通知", zap.Error(err))
		return
	}
	ev, err := notify.NewEvent(notify.EventNewOrder, shopID, map[string]any{
		"order_sn":     detail.OrderSn,
		"status":       detail.OrderStatus,
		"buyer_name":   detail.BuyerUsername,
		"total_amount": detail.TotalAmount,
		"shop_name":    shopName,
	})
	if err != nil {
		log.Warn("新订单通知编码失败", zap.Error(err))
		return
	}
	ev.OrderSn = detail.OrderSn
	if err := r.deps.Notifier.Notify(ctx, userID, ev); err != nil {
		log.Warn("新订单通知发送失败", zap.Error(err))
	}
}
