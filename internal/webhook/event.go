package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventKind 推送事件类型
type EventKind int

const (
	EventUnhandled EventKind = iota
	EventChat
	EventOrder
	EventTracking
	EventDocument
	EventUpdate
	EventPenalty
	EventViolation
)

// Shopee 推送 code
const (
	CodeOrder     = 3
	CodeTracking  = 4
	CodeUpdate    = 5
	CodeChat      = 10
	CodeDocument  = 15
	CodeViolation = 16
	CodePenalty   = 28
)

var kindByCode = map[int]EventKind{
	CodeChat:      EventChat,
	CodeOrder:     EventOrder,
	CodeTracking:  EventTracking,
	CodeDocument:  EventDocument,
	CodeUpdate:    EventUpdate,
	CodePenalty:   EventPenalty,
	CodeViolation: EventViolation,
}

// KindOf 未知 code 归为 EventUnhandled
func KindOf(code int) EventKind {
	if k, ok := kindByCode[code]; ok {
		return k
	}
	return EventUnhandled
}

func (k EventKind) String() string {
	switch k {
	case EventChat:
		return "chat"
	case EventOrder:
		return "order"
	case EventTracking:
		return "tracking"
	case EventDocument:
		return "document"
	case EventUpdate:
		return "update"
	case EventPenalty:
		return "penalty"
	case EventViolation:
		return "violation"
	default:
		return "unhandled"
	}
}

// ==================== 推送内容 ====================

// ErrInvalidPayload 推送内容无法解析
var ErrInvalidPayload = errors.New("推送内容无效")

// Payload 推送报文
type Payload struct {
	Code      int             `json:"code"`
	ShopID    int64           `json:"shop_id"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Delivery 一次推送投递
type Delivery struct {
	ID         string
	Kind       EventKind
	Payload    Payload
	ReceivedAt time.Time
}

// Parse 解析原始报文
func Parse(raw []byte) (*Delivery, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &Delivery{
		ID:         uuid.NewString(),
		Kind:       KindOf(p.Code),
		Payload:    p,
		ReceivedAt: time.Now(),
	}, nil
}

// OrderData code 3
type OrderData struct {
	OrderSn    string `json:"ordersn"`
	Status     string `json:"status"`
	UpdateTime int64  `json:"update_time"`
}

// TrackingData code 4
type TrackingData struct {
	OrderSn       string `json:"ordersn"`
	TrackingNo    string `json:"tracking_no"`
	PackageNumber string `json:"package_number"`
}

// DocumentData code 15
type DocumentData struct {
	OrderSn       string `json:"ordersn"`
	PackageNumber string `json:"package_number"`
	Status        string `json:"status"`
}

// ChatData code 10
type ChatData struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Decode 解析 data 字段
func (d *Delivery) Decode(v any) error {
	if len(d.Payload.Data) == 0 {
		return fmt.Errorf("%w: data 为空", ErrInvalidPayload)
	}
	if err := json.Unmarshal(d.Payload.Data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// OrderSn 订单类事件的订单号
func (d *Delivery) OrderSn() string {
	switch d.Kind {
	case EventOrder, EventTracking, EventDocument:
		var v struct {
			OrderSn string `json:"ordersn"`
		}
		if json.Unmarshal(d.Payload.Data, &v) == nil {
			return v.OrderSn
		}
	}
	return ""
}

// ShardKey 同一订单的推送落在同一队列，其余按店铺
func (d *Delivery) ShardKey() string {
	if sn := d.OrderSn(); sn != "" {
		return sn
	}
	return strconv.FormatInt(d.Payload.ShopID, 10)
}

func shardOf(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
