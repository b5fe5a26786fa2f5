package shopee

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// ErrEmptySnList 编号列表为空
var ErrEmptySnList = errors.New("编号列表不能为空")

// listQuery 列表查询参数
func listQuery(opts ListOptions, defaultPageSize int) map[string]string {
	if opts.TimeRangeField == "" {
		opts.TimeRangeField = "create_time"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	q := map[string]string{
		"time_range_field": opts.TimeRangeField,
		"time_from":        strconv.FormatInt(opts.TimeFrom, 10),
		"time_to":          strconv.FormatInt(opts.TimeTo, 10),
		"page_size":        strconv.Itoa(opts.PageSize),
		"cursor":           opts.Cursor,
	}
	return q
}

// trimSns 去除空白并校验
func trimSns(sns []string) ([]string, error) {
	if len(sns) == 0 {
		return nil, ErrEmptySnList
	}
	out := make([]string, 0, len(sns))
	for _, sn := range sns {
		sn = strings.TrimSpace(sn)
		if sn == "" {
			return nil, ErrEmptySnList
		}
		out = append(out, sn)
	}
	return out, nil
}

// GetOrderList 订单列表（游标分页）
func (c *Client) GetOrderList(ctx context.Context, shopID int64, accessToken string, opts ListOptions) (*OrderListResult, error) {
	q := listQuery(opts, 20)
	if opts.Status != "" && opts.Status != "ALL" {
		q["order_status"] = opts.Status
	}
	q["response_optional_fields"] = "order_status"

	var out OrderListResult
	if err := c.get(ctx, "/api/v2/order/get_order_list", shopID, accessToken, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrderDetail 批量订单详情（单次最多 50 个）
func (c *Client) GetOrderDetail(ctx context.Context, shopID int64, accessToken string, orderSns []string) ([]OrderDetail, error) {
	sns, err := trimSns(orderSns)
	if err != nil {
		return nil, err
	}

	q := map[string]string{
		"order_sn_list":            strings.Join(sns, ","),
		"response_optional_fields": OrderDetailOptionalFields,
	}
	var out orderDetailResult
	if err := c.get(ctx, "/api/v2/order/get_order_detail", shopID, accessToken, q, &out); err != nil {
		return nil, err
	}
	return out.OrderList, nil
}

// GetEscrowDetail 订单结算明细
func (c *Client) GetEscrowDetail(ctx context.Context, shopID int64, accessToken string, orderSn string) (*EscrowDetail, error) {
	var out EscrowDetail
	q := map[string]string{"order_sn": orderSn}
	if err := c.get(ctx, "/api/v2/payment/get_escrow_detail", shopID, accessToken, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
