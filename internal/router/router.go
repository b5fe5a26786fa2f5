package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopee_ops_v1_202610/internal/controller"
	"shopee_ops_v1_202610/internal/middleware"
	"shopee_ops_v1_202610/pkg/metrics"
)

// Controllers 路由依赖的控制器
type Controllers struct {
	Webhook      *controller.WebhookController
	Sync         *controller.SyncController
	Notification *controller.NotificationController
}

// Options 路由参数
type Options struct {
	JWTSecret     string
	SSEConnLimit  int
	SSEConnWindow time.Duration
	HealthCheck   func() error
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl Controllers, opts Options) {
	// 1. 运维
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 2. API 路由组
	api := r.Group("/api")
	{
		// POST /api/webhook  Shopee 推送，无需认证
		api.POST("/webhook", ctl.Webhook.Receive)

		// /api/sync 手动同步
		sync := api.Group("/sync", middleware.SecurityHeaders())
		{
			sync.OPTIONS("", func(c *gin.Context) {})
			sync.POST("", middleware.SupabaseAuth(opts.JWTSecret), ctl.Sync.Sync)
		}

		// /api/notifications 通知
		notifications := api.Group("/notifications", middleware.SupabaseAuth(opts.JWTSecret))
		{
			notifications.GET("", ctl.Notification.List)
			notifications.GET("/sse",
				middleware.ConnLimit(opts.SSEConnLimit, opts.SSEConnWindow),
				ctl.Notification.Stream,
			)
		}
	}
}
