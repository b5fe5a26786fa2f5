package shopee

import (
	"context"
	"errors"
)

// DocumentTypeThermal 热敏面单
const DocumentTypeThermal = "THERMAL_AIR_WAYBILL"

// ErrNoShipMethod 没有可用的发货方式
var ErrNoShipMethod = errors.New("必须提供 pickup 或 dropoff 信息")

// GetTrackingNumber 订单运单号
func (c *Client) GetTrackingNumber(ctx context.Context, shopID int64, accessToken string, orderSn, packageNumber string) (*TrackingInfo, error) {
	q := map[string]string{"order_sn": orderSn}
	if packageNumber != "" {
		q["package_number"] = packageNumber
	}
	var out TrackingInfo
	if err := c.get(ctx, "/api/v2/logistics/get_tracking_number", shopID, accessToken, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateShippingDocument 生成面单
// 整体成功但单项失败时，失败信息在 DocumentResult.FailError 中
func (c *Client) CreateShippingDocument(ctx context.Context, shopID int64, accessToken string, orders []ShippingDocumentOrder, documentType string) ([]DocumentResult, error) {
	if documentType == "" {
		documentType = DocumentTypeThermal
	}
	body := map[string]any{
		"order_list":             orders,
		"shipping_document_type": documentType,
	}
	var out createDocumentResult
	if err := c.post(ctx, "/api/v2/logistics/create_shipping_document", shopID, accessToken, body, &out); err != nil {
		return nil, err
	}
	return out.ResultList, nil
}

// GetShippingParameter 发货参数
func (c *Client) GetShippingParameter(ctx context.Context, shopID int64, accessToken string, orderSn string) (*ShippingParameter, error) {
	var out ShippingParameter
	q := map[string]string{"order_sn": orderSn}
	if err := c.get(ctx, "/api/v2/logistics/get_shipping_parameter", shopID, accessToken, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ShipOrder 发货（上门揽收或自送网点）
func (c *Client) ShipOrder(ctx context.Context, shopID int64, accessToken string, req ShipOrderRequest) error {
	if req.Pickup == nil && req.Dropoff == nil {
		return ErrNoShipMethod
	}
	return c.post(ctx, "/api/v2/logistics/ship_order", shopID, accessToken, req, nil)
}
