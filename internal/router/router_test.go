package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"shopee_ops_v1_202610/internal/controller"
	"shopee_ops_v1_202610/internal/middleware"
	"shopee_ops_v1_202610/internal/webhook"
)

type nopSubmitter struct{}

func (nopSubmitter) Submit(*webhook.Delivery) error { return nil }

func newEngine(opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	InitRoutes(r, Controllers{
		Webhook:      controller.NewWebhookController(nopSubmitter{}, zap.NewNop()),
		Sync:         controller.NewSyncController(nil, nil, middleware.NewSyncRateLimiter(), 0, zap.NewNop()),
		Notification: controller.NewNotificationController(nil, nil, nil, zap.NewNop()),
	}, opts)
	return r
}

func TestRoutes_SyncPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(Options{}).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/sync", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRoutes_SyncRequiresAuth(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(`{"shopId":1}`))
	newEngine(Options{JWTSecret: "secret"}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRoutes_Webhook(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{"code":3,"shop_id":1,"data":{}}`))
	newEngine(Options{JWTSecret: "secret"}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestRoutes_Health(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(Options{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newEngine(Options{HealthCheck: func() error { return errors.New("db down") }}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	newEngine(Options{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
