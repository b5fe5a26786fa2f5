package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/pkg/metrics"
	"shopee_ops_v1_202610/pkg/retry"
	"shopee_ops_v1_202610/pkg/shopee"
)

// DefaultChatTemplate 未配置模板时的默认文案
const DefaultChatTemplate = "Halo ${buyerUsername},\n\n" +
	"Mohon maaf, pesanan dengan nomor ${orderSn} sudah kami kemas, jika kakak ingin mengubah warna atau ukuran, " +
	"silakan tulis permintaan kakak di sini.\n\nDitunggu ya kak responnya."

// chatKind 自动聊天触发类型
type chatKind string

const (
	chatCancel chatKind = "cancel"
	chatReturn chatKind = "return"
)

// SettingsReader 特权判定所需的设置读取
type SettingsReader interface {
	ResolveUserID(ctx context.Context, shopID int64) (string, error)
	GetSnapshot(ctx context.Context, userID string) (*model.SettingsSnapshot, error)
}

// ==================== PremiumService ====================

// PremiumService 特权套餐门禁与自动发货 / 自动聊天
// 任一条件不满足都按未开通处理，不产生副作用
type PremiumService struct {
	settings SettingsReader
	api      shopee.API
	tokens   TokenProvider
	log      *zap.Logger

	sleep     func(ctx context.Context, d time.Duration) error
	chatGap   time.Duration
	retryUnit time.Duration
}

// NewPremiumService 创建特权服务
func NewPremiumService(settings SettingsReader, api shopee.API, tokens TokenProvider, log *zap.Logger) *PremiumService {
	return &PremiumService{
		settings:  settings,
		api:       api,
		tokens:    tokens,
		log:       log.Named("Premium"),
		sleep:     sleepCtx,
		chatGap:   time.Second,
		retryUnit: time.Second,
	}
}

// SetSleeper 替换等待函数
func (s *PremiumService) SetSleeper(fn func(ctx context.Context, d time.Duration) error) {
	s.sleep = fn
}

// SetRetryUnit 调整退避基准
func (s *PremiumService) SetRetryUnit(d time.Duration) {
	s.retryUnit = d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ==================== 门禁 ====================

// IsPremiumShop 店铺所属用户是否为特权套餐
func (s *PremiumService) IsPremiumShop(ctx context.Context, shopID int64) bool {
	snap, err := s.premiumSnapshot(ctx, shopID)
	return err == nil && snap != nil
}

// premiumSnapshot 返回特权用户的设置快照，非特权返回 nil
func (s *PremiumService) premiumSnapshot(ctx context.Context, shopID int64) (*model.SettingsSnapshot, error) {
	userID, err := s.settings.ResolveUserID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	snap, err := s.settings.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !snap.IsPremium() {
		return nil, nil
	}
	return snap, nil
}

// ==================== 自动发货 ====================

// HandleAutoShip 等待 auto_ship_interval 秒后发货，返回是否已发货
func (s *PremiumService) HandleAutoShip(ctx context.Context, shopID int64, orderSn string) bool {
	log := s.log.With(zap.Int64("shop_id", shopID), zap.String("order_sn", orderSn))

	snap, err := s.premiumSnapshot(ctx, shopID)
	if err != nil || snap == nil {
		log.Debug("非特权店铺，跳过自动发货", zap.Error(err))
		metrics.AutomationRuns.WithLabelValues("auto_ship", "skipped").Inc()
		return false
	}
	shop, ok := snap.Shop(shopID)
	if !ok || !shop.StatusShip {
		log.Debug("店铺未开启自动发货")
		metrics.AutomationRuns.WithLabelValues("auto_ship", "skipped").Inc()
		return false
	}

	if err := s.sleep(ctx, time.Duration(snap.AutoShipInterval)*time.Second); err != nil {
		log.Warn("自动发货等待被中断", zap.Error(err))
		metrics.AutomationRuns.WithLabelValues("auto_ship", "failed").Inc()
		return false
	}

	err = retry.Do(ctx, 3, 2*s.retryUnit, func(ctx context.Context) error {
		return s.shipOrder(ctx, shopID, orderSn)
	})
	if err != nil {
		log.Error("自动发货失败", zap.Error(err))
		metrics.AutomationRuns.WithLabelValues("auto_ship", "failed").Inc()
		return false
	}
	log.Info("自动发货成功")
	metrics.AutomationRuns.WithLabelValues("auto_ship", "ok").Inc()
	return true
}

// shipOrder 优先自送网点，否则上门揽收取第一个地址与时段
func (s *PremiumService) shipOrder(ctx context.Context, shopID int64, orderSn string) error {
	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		return fmt.Errorf("获取访问令牌失败: %w", err)
	}
	param, err := s.api.GetShippingParameter(ctx, shopID, token, orderSn)
	if err != nil {
		return err
	}
	req, err := BuildShipRequest(orderSn, param)
	if err != nil {
		return err
	}
	return s.api.ShipOrder(ctx, shopID, token, req)
}

// BuildShipRequest 根据物流参数组装发货请求
func BuildShipRequest(orderSn string, param *shopee.ShippingParameter) (shopee.ShipOrderRequest, error) {
	req := shopee.ShipOrderRequest{OrderSn: orderSn}
	if param == nil {
		return req, shopee.ErrNoShipMethod
	}
	if param.Dropoff != nil || len(param.InfoNeeded.Dropoff) > 0 {
		req.Dropoff = &shopee.DropoffInfo{}
		if param.Dropoff != nil && len(param.Dropoff.BranchList) > 0 {
			req.Dropoff.BranchID = param.Dropoff.BranchList[0].BranchID
		}
		return req, nil
	}
	if param.Pickup != nil && len(param.Pickup.AddressList) > 0 {
		addr := param.Pickup.AddressList[0]
		req.Pickup = &shopee.PickupInfo{AddressID: addr.AddressID}
		if len(addr.TimeSlotList) > 0 {
			req.Pickup.PickupTimeID = addr.TimeSlotList[0].PickupTimeID
		}
		return req, nil
	}
	return req, shopee.ErrNoShipMethod
}

// ==================== 自动聊天 ====================

// HandleAutoChatCancel 买家申请取消时自动发消息
func (s *PremiumService) HandleAutoChatCancel(ctx context.Context, shopID int64, orderSn string, buyerID int64, buyerUsername string) bool {
	return s.handleAutoChat(ctx, chatCancel, shopID, orderSn, buyerID, buyerUsername)
}

// HandleAutoChatReturn 订单退货时自动发消息
func (s *PremiumService) HandleAutoChatReturn(ctx context.Context, shopID int64, orderSn string, buyerID int64, buyerUsername string) bool {
	return s.handleAutoChat(ctx, chatReturn, shopID, orderSn, buyerID, buyerUsername)
}

func (s *PremiumService) handleAutoChat(ctx context.Context, kind chatKind, shopID int64, orderSn string, buyerID int64, buyerUsername string) bool {
	action := "auto_chat_" + string(kind)
	log := s.log.With(zap.Int64("shop_id", shopID), zap.String("order_sn", orderSn), zap.String("kind", string(kind)))

	if buyerID == 0 || buyerUsername == "" {
		log.Info("缺少买家信息，跳过自动聊天")
		metrics.AutomationRuns.WithLabelValues(action, "skipped").Inc()
		return false
	}

	snap, err := s.premiumSnapshot(ctx, shopID)
	if err != nil || snap == nil {
		log.Debug("非特权店铺，跳过自动聊天", zap.Error(err))
		metrics.AutomationRuns.WithLabelValues(action, "skipped").Inc()
		return false
	}

	template, enabled := snap.InCancelMsg, snap.InCancelStatus
	if kind == chatReturn {
		template, enabled = snap.InReturnMsg, snap.InReturnStatus
	}
	shop, ok := snap.Shop(shopID)
	if !enabled || !ok || !shop.StatusChat {
		log.Debug("自动聊天未开启")
		metrics.AutomationRuns.WithLabelValues(action, "skipped").Inc()
		return false
	}

	if err := s.sendChat(ctx, shopID, orderSn, buyerID, RenderChatTemplate(template, buyerUsername, orderSn)); err != nil {
		log.Error("自动聊天发送失败", zap.Error(err))
		metrics.AutomationRuns.WithLabelValues(action, "failed").Inc()
		return false
	}
	log.Info("自动聊天已发送")
	metrics.AutomationRuns.WithLabelValues(action, "ok").Inc()
	return true
}

// sendChat 先发订单卡片，间隔片刻再发文本
func (s *PremiumService) sendChat(ctx context.Context, shopID int64, orderSn string, buyerID int64, text string) error {
	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		return fmt.Errorf("获取访问令牌失败: %w", err)
	}
	if _, err := s.api.SendMessage(ctx, shopID, token, shopee.SendMessageRequest{
		ToID:        buyerID,
		MessageType: shopee.MessageTypeOrder,
		Content:     shopee.MessageContent{OrderSn: orderSn},
	}); err != nil {
		return fmt.Errorf("发送订单消息失败: %w", err)
	}
	if err := s.sleep(ctx, s.chatGap); err != nil {
		return err
	}
	if _, err := s.api.SendMessage(ctx, shopID, token, shopee.SendMessageRequest{
		ToID:        buyerID,
		MessageType: shopee.MessageTypeText,
		Content:     shopee.MessageContent{Text: text},
	}); err != nil {
		return fmt.Errorf("发送文本消息失败: %w", err)
	}
	return nil
}

// RenderChatTemplate 替换 ${buyerUsername} 与 ${orderSn}，模板为空时用默认文案
func RenderChatTemplate(template, buyerUsername, orderSn string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultChatTemplate
	}
	return strings.NewReplacer(
		"${buyerUsername}", buyerUsername,
		"${orderSn}", orderSn,
	).Replace(template)
}
