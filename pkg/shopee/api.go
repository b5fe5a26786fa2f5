package shopee

import (
	"context"
)

//go:generate mockgen -source=api.go -destination=mock_api.go -package=shopee

// API 业务层依赖的 Shopee 接口集合
type API interface {
	// 订单
	GetOrderList(ctx context.Context, shopID int64, accessToken string, opts ListOptions) (*OrderListResult, error)
	GetOrderDetail(ctx context.Context, shopID int64, accessToken string, orderSns []string) ([]OrderDetail, error)
	GetEscrowDetail(ctx context.Context, shopID int64, accessToken string, orderSn string) (*EscrowDetail, error)

	// 物流
	GetTrackingNumber(ctx context.Context, shopID int64, accessToken string, orderSn, packageNumber string) (*TrackingInfo, error)
	CreateShippingDocument(ctx context.Context, shopID int64, accessToken string, orders []ShippingDocumentOrder, documentType string) ([]DocumentResult, error)
	GetShippingParameter(ctx context.Context, shopID int64, accessToken string, orderSn string) (*ShippingParameter, error)
	ShipOrder(ctx context.Context, shopID int64, accessToken string, req ShipOrderRequest) error

	// 预约单
	GetBookingList(ctx context.Context, shopID int64, accessToken string, opts ListOptions) (*BookingListResult, error)
	GetBookingDetail(ctx context.Context, shopID int64, accessToken string, bookingSns []string) ([]BookingDetail, error)
	GetBookingTrackingNumber(ctx context.Context, shopID int64, accessToken string, bookingSn string) (*TrackingInfo, error)

	// 聊天
	SendMessage(ctx context.Context, shopID int64, accessToken string, req SendMessageRequest) (*SendMessageResult, error)

	// 授权 / 店铺
	RefreshAccessToken(ctx context.Context, shopID int64, refreshToken string) (*TokenResult, error)
	GetShopInfo(ctx context.Context, shopID int64, accessToken string) (*ShopInfo, error)
}
