package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/webhook"
)

// DeliverySubmitter 推送入队
type DeliverySubmitter interface {
	Submit(d *webhook.Delivery) error
}

// WebhookController Shopee 推送入口
type WebhookController struct {
	dispatcher DeliverySubmitter
	log        *zap.Logger
}

// NewWebhookController 创建推送控制器
func NewWebhookController(dispatcher DeliverySubmitter, log *zap.Logger) *WebhookController {
	return &WebhookController{dispatcher: dispatcher, log: log.Named("WebhookCtl")}
}

// Receive 接收推送
// @Summary Shopee 推送回调
// @Description 立即返回 200，推送在后台处理
// @Tags Webhook
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/webhook [post]
func (c *WebhookController) Receive(ctx *gin.Context) {
	raw, err := ctx.GetRawData()
	if err != nil {
		c.log.Warn("读取推送内容失败", zap.Error(err))
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	delivery, err := webhook.Parse(raw)
	if err != nil {
		c.log.Warn("推送内容无法解析", zap.Error(err), zap.ByteString("body", raw))
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := c.dispatcher.Submit(delivery); err != nil {
		c.log.Error("推送入队失败", zap.String("delivery_id", delivery.ID), zap.Error(err))
	}
	ctx.JSON(http.StatusOK, gin.H{"received": true})
}
