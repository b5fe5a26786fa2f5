package shopee

import (
	"context"
	"fmt"
)

// RefreshAccessToken 刷新店铺令牌
// 该接口响应字段在顶层，签名不含 access_token / shop_id
func (c *Client) RefreshAccessToken(ctx context.Context, shopID int64, refreshToken string) (*TokenResult, error) {
	const path = "/api/v2/auth/access_token/get"

	body := map[string]any{
		"refresh_token": refreshToken,
		"shop_id":       shopID,
		"partner_id":    c.partnerID,
	}

	var out TokenResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.commonParams(path, "", 0)).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("刷新令牌请求失败: %w", err)
	}
	if out.Error != "" {
		return nil, &APIError{Path: path, Code: out.Error, Message: out.Message, RequestID: out.RequestID}
	}
	if resp.IsError() {
		return nil, fmt.Errorf("刷新令牌返回 HTTP %d", resp.StatusCode())
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return nil, fmt.Errorf("刷新令牌响应缺少 access_token 或 refresh_token (shop_id=%d)", shopID)
	}
	return &out, nil
}

// GetShopInfo 店铺信息
func (c *Client) GetShopInfo(ctx context.Context, shopID int64, accessToken string) (*ShopInfo, error) {
	const path = "/api/v2/shop/get_shop_info"

	if err := c.limiter(shopID).Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待限流失败: %w", err)
	}

	var out ShopInfo
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.commonParams(path, accessToken, shopID)).
		SetResult(&out).
		SetError(&out).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("获取店铺 %d 信息失败: %w", shopID, err)
	}
	if out.Error != "" {
		return nil, &APIError{Path: path, Code: out.Error, Message: out.Message, RequestID: out.RequestID}
	}
	if resp.IsError() {
		return nil, fmt.Errorf("获取店铺信息返回 HTTP %d", resp.StatusCode())
	}
	return &out, nil
}
