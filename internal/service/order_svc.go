package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/repository"
	"shopee_ops_v1_202610/pkg/retry"
	"shopee_ops_v1_202610/pkg/shopee"
)

// ErrEmptyOrderSn 订单号为空
var ErrEmptyOrderSn = errors.New("订单号不能为空")

// ==================== OrderService ====================

// OrderService 订单落库与面单状态维护
// 订单、商品、物流各自独立 upsert，不包在同一事务里，中途失败由下次同步补齐
type OrderService struct {
	orderRepo repository.OrderRepository
	api       shopee.API
	tokens    TokenProvider
	log       *zap.Logger

	// 退避基准，各调用点按倍数使用
	retryUnit time.Duration
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, api shopee.API, tokens TokenProvider, log *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		api:       api,
		tokens:    tokens,
		log:       log.Named("Order"),
		retryUnit: time.Second,
	}
}

// SetRetryUnit 调整退避基准
func (s *OrderService) SetRetryUnit(d time.Duration) {
	s.retryUnit = d
}

// ==================== 订单明细 ====================

// SaveOrderDetail 写入订单、商品、物流，每张表单独重试
func (s *OrderService) SaveOrderDetail(ctx context.Context, shopID int64, detail *shopee.OrderDetail) error {
	if detail == nil || detail.OrderSn == "" {
		return ErrEmptyOrderSn
	}

	if err := retry.Do(ctx, 5, s.retryUnit, func(ctx context.Context) error {
		return s.orderRepo.UpsertOrder(ctx, ToOrderModel(detail, shopID))
	}); err != nil {
		return err
	}

	if items := ToOrderItemModels(detail); len(items) > 0 {
		if err := retry.Do(ctx, 5, s.retryUnit, func(ctx context.Context) error {
			return s.orderRepo.UpsertItems(ctx, items)
		}); err != nil {
			return err
		}
	}

	if logistics := ToLogisticModels(detail, shopID); len(logistics) > 0 {
		if err := retry.Do(ctx, 5, s.retryUnit, func(ctx context.Context) error {
			return s.orderRepo.UpsertLogistics(ctx, logistics)
		}); err != nil {
			return err
		}
	}
	return nil
}

// RefreshOrder 拉取订单详情并落库，返回最新详情
func (s *OrderService) RefreshOrder(ctx context.Context, shopID int64, orderSn string) (*shopee.OrderDetail, error) {
	if orderSn == "" {
		return nil, ErrEmptyOrderSn
	}
	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("获取访问令牌失败: %w", err)
	}

	detail, err := retry.WithRetry(ctx, 3, s.retryUnit, func(ctx context.Context) (*shopee.OrderDetail, error) {
		list, err := s.api.GetOrderDetail(ctx, shopID, token, []string{orderSn})
		if err != nil {
			return nil, err
		}
		for i := range list {
			if list[i].OrderSn == orderSn {
				return &list[i], nil
			}
		}
		return nil, fmt.Errorf("订单 %s 详情为空", orderSn)
	})
	if err != nil {
		return nil, fmt.Errorf("获取订单详情失败: %w", err)
	}

	if err := retry.Do(ctx, 5, 2*s.retryUnit, func(ctx context.Context) error {
		return s.SaveOrderDetail(ctx, shopID, detail)
	}); err != nil {
		return detail, fmt.Errorf("保存订单失败: %w", err)
	}
	return detail, nil
}

// UpdateOrderStatusOnly 只更新状态与更新时间，不拉取详情
func (s *OrderService) UpdateOrderStatusOnly(ctx context.Context, shopID int64, orderSn, status string, updateTime int64) error {
	if orderSn == "" {
		return ErrEmptyOrderSn
	}
	return retry.Do(ctx, 3, s.retryUnit, func(ctx context.Context) error {
		rows, err := s.orderRepo.UpdateStatusOnly(ctx, shopID, orderSn, status, updateTime)
		if err != nil {
			return err
		}
		if rows == 0 {
			s.log.Debug("状态更新未命中订单", zap.Int64("shop_id", shopID), zap.String("order_sn", orderSn))
		}
		return nil
	})
}

// GetOrder 读取本地订单
func (s *OrderService) GetOrder(ctx context.Context, shopID int64, orderSn string) (*model.Order, error) {
	return s.orderRepo.GetByOrderSn(ctx, shopID, orderSn)
}

// ==================== 结算 ====================

// SaveEscrowDetail 拉取并保存结算明细
func (s *OrderService) SaveEscrowDetail(ctx context.Context, shopID int64, orderSn string) error {
	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		return fmt.Errorf("获取访问令牌失败: %w", err)
	}
	escrow, err := retry.WithRetry(ctx, 3, s.retryUnit, func(ctx context.Context) (*shopee.EscrowDetail, error) {
		return s.api.GetEscrowDetail(ctx, shopID, token, orderSn)
	})
	if err != nil {
		return fmt.Errorf("获取结算明细失败: %w", err)
	}
	row, err := ToEscrowModel(escrow, shopID)
	if err != nil {
		return err
	}
	return retry.Do(ctx, 3, s.retryUnit, func(ctx context.Context) error {
		return s.orderRepo.UpsertEscrow(ctx, row)
	})
}

// ==================== 物流 / 面单 ====================

// UpdateTrackingAndDocument 写入运单号；订单处于 PROCESSED 时顺带生成面单
// 面单生成失败只记为 FAILED，不影响运单号写入
func (s *OrderService) UpdateTrackingAndDocument(ctx context.Context, shopID int64, orderSn, trackingNumber, packageNumber string) error {
	if orderSn == "" {
		return ErrEmptyOrderSn
	}

	status, err := s.orderRepo.GetStatus(ctx, shopID, orderSn)
	if err != nil && !errors.Is(err, repository.ErrOrderNotFound) {
		return err
	}

	if status != model.OrderStatusProcessed {
		return retry.Do(ctx, 3, s.retryUnit, func(ctx context.Context) error {
			_, err := s.orderRepo.UpdateTrackingNumber(ctx, shopID, orderSn, trackingNumber)
			return err
		})
	}

	docStatus := s.createDocument(ctx, shopID, orderSn, trackingNumber, packageNumber)
	return retry.Do(ctx, 3, s.retryUnit, func(ctx context.Context) error {
		_, err := s.orderRepo.UpdateTrackingAndDocument(ctx, shopID, orderSn, trackingNumber, docStatus)
		return err
	})
}

// createDocument 生成热敏面单，返回 READY 或 FAILED
func (s *OrderService) createDocument(ctx context.Context, shopID int64, orderSn, trackingNumber, packageNumber string) string {
	token, err := s.tokens.GetValidAccessToken(ctx, shopID)
	if err != nil {
		s.log.Warn("生成面单前获取令牌失败", zap.String("order_sn", orderSn), zap.Error(err))
		return model.DocumentStatusFailed
	}
	results, err := s.api.CreateShippingDocument(ctx, shopID, token, []shopee.ShippingDocumentOrder{{
		OrderSn:        orderSn,
		PackageNumber:  packageNumber,
		TrackingNumber: trackingNumber,
	}}, shopee.DocumentTypeThermal)
	if err != nil {
		s.log.Warn("生成面单失败", zap.String("order_sn", orderSn), zap.Error(err))
		return model.DocumentStatusFailed
	}
	for _, r := range results {
		if r.OrderSn == orderSn && r.FailError != "" {
			s.log.Warn("生成面单失败",
				zap.String("order_sn", orderSn),
				zap.String("fail_error", r.FailError),
				zap.String("fail_message", r.FailMessage))
			return model.DocumentStatusFailed
		}
	}
	return model.DocumentStatusReady
}

// MarkDocumentReady 面单已就绪
func (s *OrderService) MarkDocumentReady(ctx context.Context, shopID int64, orderSn string) error {
	if orderSn == "" {
		return ErrEmptyOrderSn
	}
	return retry.Do(ctx, 3, s.retryUnit, func(ctx context.Context) error {
		_, err := s.orderRepo.UpdateDocumentStatus(ctx, shopID, orderSn, model.DocumentStatusReady)
		return err
	})
}
