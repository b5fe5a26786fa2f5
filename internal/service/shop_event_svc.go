package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/notify"
	"shopee_ops_v1_202610/internal/repository"
)

// OwnerResolver 店铺所属用户查询
type OwnerResolver interface {
	ResolveUserID(ctx context.Context, shopID int64) (string, error)
}

// ShopEventService 店铺级通知（更新 / 违规 / 处罚）：落库并推送给所属用户
type ShopEventService struct {
	notificationRepo repository.NotificationRepository
	owners           OwnerResolver
	notifier         notify.Notifier
	log              *zap.Logger
}

// NewShopEventService 创建店铺事件服务
func NewShopEventService(
	notificationRepo repository.NotificationRepository,
	owners OwnerResolver,
	notifier notify.Notifier,
	log *zap.Logger,
) *ShopEventService {
	return &ShopEventService{
		notificationRepo: notificationRepo,
		owners:           owners,
		notifier:         notifier,
		log:              log.Named("ShopEvent"),
	}
}

// HandleUpdate 店铺更新：actions 取 data.actions，data 本身是数组时取 data
func (s *ShopEventService) HandleUpdate(ctx context.Context, shopID int64, data json.RawMessage) error {
	var actions json.RawMessage
	var obj struct {
		Actions json.RawMessage `json:"actions"`
	}
	var arr []json.RawMessage
	switch {
	case json.Unmarshal(data, &arr) == nil && arr != nil:
		actions = data
	case json.Unmarshal(data, &obj) == nil && len(obj.Actions) > 0:
		actions = obj.Actions
	default:
		actions = json.RawMessage("[]")
	}
	payload := map[string]json.RawMessage{"actions": actions}
	return s.record(ctx, shopID, model.NotificationShopUpdate, payload)
}

// violationDetail 违规明细
type violationDetail struct {
	ViolationType     string          `json:"violation_type"`
	ViolationReason   string          `json:"violation_reason"`
	Suggestion        string          `json:"suggestion"`
	FixDeadlineTime   int64           `json:"fix_deadline_time"`
	SuggestedCategory json.RawMessage `json:"suggested_category,omitempty"`
}

// violationData 商品违规推送内容
type violationData struct {
	ItemID            int64             `json:"item_id"`
	ItemName          string            `json:"item_name"`
	ItemStatus        string            `json:"item_status"`
	Deboost           bool              `json:"deboost"`
	ItemStatusDetails []violationDetail `json:"item_status_details"`
	DeboostedDetails  []violationDetail `json:"deboosted_details"`
}

// ViolationAction 根据商品状态归类违规动作
func ViolationAction(itemStatus string, deboost bool) string {
	switch {
	case itemStatus == "BANNED":
		return "ITEM_BANNED"
	case itemStatus == "SHOPEE_DELETE":
		return "ITEM_DELETED"
	case deboost:
		return "ITEM_DEBOOSTED"
	default:
		return "ITEM_VIOLATION"
	}
}

// HandleViolation 违规通知；带 item_id 的归为商品违规，其余原样保存
func (s *ShopEventService) HandleViolation(ctx context.Context, shopID int64, data json.RawMessage) error {
	var v violationData
	if err := json.Unmarshal(data, &v); err != nil || v.ItemID == 0 {
		return s.record(ctx, shopID, model.NotificationViolation, data)
	}

	details := v.ItemStatusDetails
	if v.Deboost {
		details = v.DeboostedDetails
	}
	violations := make([]map[string]any, 0, len(details))
	for _, d := range details {
		violations = append(violations, map[string]any{
			"type":               d.ViolationType,
			"reason":             d.ViolationReason,
			"suggestion":         d.Suggestion,
			"deadline":           d.FixDeadlineTime,
			"suggested_category": d.SuggestedCategory,
		})
	}
	return s.record(ctx, shopID, model.NotificationItemViolation, map[string]any{
		"action": ViolationAction(v.ItemStatus, v.Deboost),
		"details": map[string]any{
			"item_id":    v.ItemID,
			"item_name":  v.ItemName,
			"status":     v.ItemStatus,
			"violations": violations,
		},
		"raw": data,
	})
}

// HandlePenalty 店铺处罚，原样保存
func (s *ShopEventService) HandlePenalty(ctx context.Context, shopID int64, data json.RawMessage) error {
	return s.record(ctx, shopID, model.NotificationShopPenalty, data)
}

// record 落库后推送，推送失败只记日志
func (s *ShopEventService) record(ctx context.Context, shopID int64, typ string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("通知内容编码失败: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}

	row := &model.ShopeeNotification{
		ShopID:           shopID,
		NotificationType: typ,
		Data:             datatypes.JSON(raw),
	}
	if err := s.notificationRepo.Create(ctx, row); err != nil {
		return err
	}

	userID, err := s.owners.ResolveUserID(ctx, shopID)
	if err != nil {
		s.log.Warn("无法确定店铺所属用户，跳过推送", zap.Int64("shop_id", shopID), zap.Error(err))
		return nil
	}
	ev, err := notify.NewEvent(notify.EventNotification, shopID, map[string]any{
		"id":                row.ID,
		"notification_type": typ,
		"data":              json.RawMessage(raw),
	})
	if err != nil {
		return err
	}
	if err := s.notifier.Notify(ctx, userID, ev); err != nil {
		s.log.Warn("通知推送失败", zap.Int64("shop_id", shopID), zap.String("type", typ), zap.Error(err))
		return nil
	}
	if err := s.notificationRepo.MarkProcessed(ctx, row.ID); err != nil {
		s.log.Warn("更新通知状态失败", zap.Int64("id", row.ID), zap.Error(err))
	}
	return nil
}
