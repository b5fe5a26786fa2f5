package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/middleware"
	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/notify"
	"shopee_ops_v1_202610/internal/repository"
)

// DefaultHeartbeat SSE 心跳间隔
const DefaultHeartbeat = 30 * time.Second

// Subscriber 事件订阅
type Subscriber interface {
	Subscribe(userID string) (*notify.Subscription, func())
}

// NotificationController 通知控制器
type NotificationController struct {
	hub              Subscriber
	shopRepo         repository.ShopRepository
	notificationRepo repository.NotificationRepository
	heartbeat        time.Duration
	log              *zap.Logger
}

// NewNotificationController 创建通知控制器
func NewNotificationController(hub Subscriber, shopRepo repository.ShopRepository, notificationRepo repository.NotificationRepository, log *zap.Logger) *NotificationController {
	return &NotificationController{
		hub:              hub,
		shopRepo:         shopRepo,
		notificationRepo: notificationRepo,
		heartbeat:        DefaultHeartbeat,
		log:              log.Named("NotificationCtl"),
	}
}

// currentUser 未开启认证时允许用 user_id 参数
func currentUser(ctx *gin.Context) string {
	if id := middleware.GetUserID(ctx); id != "" {
		return id
	}
	return ctx.Query("user_id")
}

// Stream SSE 推送
// @Summary 实时通知（SSE）
// @Tags Notification
// @Produce text/event-stream
// @Router /api/notifications/sse [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	userID := currentUser(ctx)
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "未提供用户信息"})
		return
	}

	sub, cancel := c.hub.Subscribe(userID)
	defer cancel()

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	writeEvent(ctx.Writer, gin.H{
		"type":      "connection_established",
		"timestamp": time.Now().UnixMilli(),
	})
	ctx.Writer.Flush()

	reqCtx := ctx.Request.Context()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-reqCtx.Done():
			return false
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			writeEvent(w, ev)
			return true
		case <-ticker.C:
			writeEvent(w, gin.H{"type": "heartbeat", "timestamp": time.Now().UnixMilli()})
			return true
		}
	})
	c.log.Debug("SSE 连接关闭", zap.String("user_id", userID))
}

// writeEvent 写一条 SSE 消息
func writeEvent(w io.Writer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "id: %d\nretry: 10000\ndata: %s\n\n", time.Now().UnixNano(), data)
}

// List 用户名下店铺的最近通知
// @Summary 最近通知
// @Tags Notification
// @Param limit query int false "条数，默认 20"
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID := currentUser(ctx)
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "未提供用户信息"})
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	list, err := c.listForUser(ctx.Request.Context(), userID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "success",
		"data":    list,
	})
}

func (c *NotificationController) listForUser(ctx context.Context, userID string, limit int) ([]model.ShopeeNotification, error) {
	shops, err := c.shopRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	shopIDs := lo.Map(shops, func(s model.ShopeeToken, _ int) int64 { return s.ShopID })
	list, err := c.notificationRepo.ListRecent(ctx, shopIDs, limit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.ShopeeNotification{}
	}
	return list, nil
}
