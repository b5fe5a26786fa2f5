package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopee_ops"

var (
	// WebhookEvents 推送事件计数，result: ok / failed / unhandled / dropped / panic
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Webhook deliveries by event kind and result.",
	}, []string{"kind", "result"})

	// WebhookQueueDepth 推送队列积压
	WebhookQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "webhook_queue_depth",
		Help:      "Webhook deliveries waiting for a worker.",
	})

	// RetryAttempts 重试计数，outcome: failed_attempt / recovered / exhausted
	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retry_attempts_total",
		Help:      "Retry wrapper outcomes.",
	}, []string{"outcome"})

	// SyncItems 同步结果，entity: order / booking，result: ok / failed
	SyncItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_items_total",
		Help:      "Orders and bookings processed by the sync pipelines.",
	}, []string{"entity", "result"})

	// ShopeeRequests Shopee API 调用
	ShopeeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shopee_requests_total",
		Help:      "Shopee Open API calls by path and outcome.",
	}, []string{"path", "outcome"})

	// AutomationRuns 自动化执行，action: auto_ship / auto_chat_cancel / auto_chat_return
	AutomationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "automation_runs_total",
		Help:      "Premium automation decisions.",
	}, []string{"action", "result"})
)

// Handler /metrics 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
