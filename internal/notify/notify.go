package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// 事件类型
const (
	EventNewOrder     = "new_order"
	EventChat         = "chat"
	EventNotification = "notification"
)

// Event 推送给店铺所属用户的事件
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	ShopID    int64           `json:"shop_id"`
	OrderSn   string          `json:"order_sn,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent 生成带 ID 的事件
func NewEvent(typ string, shopID int64, data any) (Event, error) {
	ev := Event{
		ID:        uuid.NewString(),
		Type:      typ,
		ShopID:    shopID,
		CreatedAt: time.Now().UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return ev, err
		}
		ev.Data = raw
	}
	return ev, nil
}

// Notifier 事件投递
type Notifier interface {
	Notify(ctx context.Context, userID string, ev Event) error
}

// Multi 依次投递到多个通道，汇总错误
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, userID string, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, userID, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
