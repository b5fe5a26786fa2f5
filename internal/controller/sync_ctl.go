package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/middleware"
	"shopee_ops_v1_202610/internal/service"
)

// SyncRunner 手动同步执行
type SyncRunner interface {
	Run(ctx context.Context, req service.SyncRequest, emit func(service.StreamProgress)) (*service.SyncReport, error)
}

// OwnerResolver 店铺所属用户
type OwnerResolver interface {
	ResolveUserID(ctx context.Context, shopID int64) (string, error)
}

// SyncController 手动同步控制器
type SyncController struct {
	runner   SyncRunner
	owners   OwnerResolver
	limiter  *middleware.SyncRateLimiter
	cooldown time.Duration
	log      *zap.Logger
}

// NewSyncController 创建同步控制器
func NewSyncController(runner SyncRunner, owners OwnerResolver, limiter *middleware.SyncRateLimiter, cooldown time.Duration, log *zap.Logger) *SyncController {
	return &SyncController{
		runner:   runner,
		owners:   owners,
		limiter:  limiter,
		cooldown: cooldown,
		log:      log.Named("SyncCtl"),
	}
}

// syncRequest 请求体
type syncRequest struct {
	ShopID          int64    `json:"shopId" binding:"required,gt=0"`
	OrderSns        []string `json:"orderSns"`
	BookingSns      []string `json:"bookingSns"`
	IncludeBookings bool     `json:"includeBookings"`
}

// ==================== Handler 实现 ====================

// Sync 手动同步，按行输出 JSON 进度
// @Summary 手动同步订单 / 预约单
// @Tags Sync
// @Accept json
// @Produce application/x-ndjson
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "参数错误"
// @Failure 429 {object} map[string]interface{} "冷却中"
// @Router /api/sync [post]
func (c *SyncController) Sync(ctx *gin.Context) {
	var req syncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "参数错误: " + err.Error()})
		return
	}

	owner, err := c.owners.ResolveUserID(ctx.Request.Context(), req.ShopID)
	if errors.Is(err, service.ErrShopOwnerNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "店铺不存在或未授权"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if userID := middleware.GetUserID(ctx); userID != "" && userID != owner {
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "error": "无权同步该店铺"})
		return
	}

	key := middleware.ShopSyncKey(req.ShopID, middleware.SyncTypeManual)
	if c.limiter != nil && c.cooldown > 0 {
		result := c.limiter.Check(key, c.cooldown)
		if !result.Allowed {
			middleware.AbortCooldown(ctx, result.RetryAfter)
			return
		}
	}

	ctx.Header("Content-Type", "application/x-ndjson")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)

	enc := json.NewEncoder(ctx.Writer)
	write := func(v any) {
		if err := enc.Encode(v); err != nil {
			c.log.Debug("进度写入失败", zap.Error(err))
			return
		}
		ctx.Writer.Flush()
	}

	report, err := c.runner.Run(ctx.Request.Context(), service.SyncRequest{
		ShopID:          req.ShopID,
		OrderSns:        req.OrderSns,
		BookingSns:      req.BookingSns,
		IncludeBookings: req.IncludeBookings,
	}, func(p service.StreamProgress) { write(p) })
	if err != nil {
		c.log.Error("手动同步失败", zap.Int64("shop_id", req.ShopID), zap.Error(err))
		if c.limiter != nil {
			c.limiter.Reset(key)
		}
		write(gin.H{"success": false, "error": err.Error(), "completed": true})
		return
	}
	write(gin.H{"completed": true, "success": true, "data": report})
}
