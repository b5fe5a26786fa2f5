package shopee

import (
	"context"
	"fmt"
	"strings"
)

// GetBookingList 预约单列表（游标分页）
func (c *Client) GetBookingList(ctx context.Context, shopID int64, accessToken string, opts ListOptions) (*BookingListResult, error) {
	if opts.PageSize < 0 || opts.PageSize > 100 {
		return nil, fmt.Errorf("page_size 必须在 1 到 100 之间: %d", opts.PageSize)
	}
	q := listQuery(opts, 50)
	if opts.Status != "" && opts.Status != "ALL" {
		q["booking_status"] = opts.Status
	}

	var out BookingListResult
	if err := c.get(ctx, "/api/v2/order/get_booking_list", shopID, accessToken, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBookingDetail 批量预约单详情
func (c *Client) GetBookingDetail(ctx context.Context, shopID int64, accessToken string, bookingSns []string) ([]BookingDetail, error) {
	sns, err := trimSns(bookingSns)
	if err != nil {
		return nil, err
	}

	q := map[string]string{
		"booking_sn_list":          strings.Join(sns, ","),
		"response_optional_fields": BookingDetailOptionalFields,
	}
	var out bookingDetailResult
	if err := c.get(ctx, "/api/v2/order/get_booking_detail", shopID, accessToken, q, &out); err != nil {
		return nil, err
	}
	return out.BookingList, nil
}

// GetBookingTrackingNumber 预约单运单号
func (c *Client) GetBookingTrackingNumber(ctx context.Context, shopID int64, accessToken string, bookingSn string) (*TrackingInfo, error) {
	var out TrackingInfo
	q := map[string]string{"booking_sn": bookingSn}
	if err := c.get(ctx, "/api/v2/logistics/get_booking_tracking_number", shopID, accessToken, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
