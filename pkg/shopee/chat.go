package shopee

import (
	"context"
	"errors"
	"strings"
)

// SendMessage 发送卖家聊天消息
func (c *Client) SendMessage(ctx context.Context, shopID int64, accessToken string, req SendMessageRequest) (*SendMessageResult, error) {
	switch req.MessageType {
	case MessageTypeText:
		if strings.TrimSpace(req.Content.Text) == "" {
			return nil, errors.New("文本消息内容不能为空")
		}
	case MessageTypeOrder:
		if strings.TrimSpace(req.Content.OrderSn) == "" {
			return nil, errors.New("订单消息缺少 order_sn")
		}
	default:
		return nil, errors.New("不支持的消息类型: " + req.MessageType)
	}

	var out SendMessageResult
	if err := c.post(ctx, "/api/v2/sellerchat/send_message", shopID, accessToken, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
