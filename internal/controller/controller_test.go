package controller

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_ops_v1_202610/internal/middleware"
	"shopee_ops_v1_202610/internal/model"
	"shopee_ops_v1_202610/internal/notify"
	"shopee_ops_v1_202610/internal/repository"
	"shopee_ops_v1_202610/internal/service"
	"shopee_ops_v1_202610/internal/webhook"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试替身 ====================

type fakeRunner struct {
	report *service.SyncReport
	err    error
	got    *service.SyncRequest
	steps  []service.StreamProgress
}

func (f *fakeRunner) Run(_ context.Context, req service.SyncRequest, emit func(service.StreamProgress)) (*service.SyncReport, error) {
	f.got = &req
	for _, p := range f.steps {
		emit(p)
	}
	return f.report, f.err
}

type fakeOwners struct {
	userID string
	err    error
}

func (f fakeOwners) ResolveUserID(context.Context, int64) (string, error) {
	return f.userID, f.err
}

type fakeSubmitter struct {
	mu  sync.Mutex
	got []*webhook.Delivery
	err error
}

func (f *fakeSubmitter) Submit(d *webhook.Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, d)
	return f.err
}

// withUser 模拟认证中间件写入的用户
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextKeyUserID, userID)
		}
		c.Next()
	}
}

func newSyncEngine(ctl *SyncController, userID string) *gin.Engine {
	r := gin.New()
	r.POST("/api/sync", withUser(userID), ctl.Sync)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ndjsonLines(t *testing.T, body []byte) []map[string]any {
	var lines []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	return lines
}

// ==================== 手动同步 ====================

func TestSync_StreamsProgressAndResult(t *testing.T) {
	runner := &fakeRunner{
		steps: []service.StreamProgress{
			{Phase: service.PhaseStarting, Type: service.ProgressCombined},
			{Phase: service.PhaseCompleted, Type: service.ProgressCombined, Percentage: 100},
		},
		report: &service.SyncReport{
			Orders:  &service.SyncResult{Success: true},
			Summary: service.SyncSummary{ShopID: 100},
		},
	}
	ctl := NewSyncController(runner, fakeOwners{userID: "u1"}, middleware.NewSyncRateLimiter(), time.Minute, zap.NewNop())

	w := postJSON(newSyncEngine(ctl, "u1"), "/api/sync", `{"shopId":100,"orderSns":["O1"],"includeBookings":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	lines := ndjsonLines(t, w.Body.Bytes())
	require.Len(t, lines, 3)
	assert.Equal(t, "starting", lines[0]["phase"])
	assert.Equal(t, "completed", lines[1]["phase"])

	final := lines[2]
	assert.Equal(t, true, final["completed"])
	assert.Equal(t, true, final["success"])
	data := final["data"].(map[string]any)
	orders := data["orders"].(map[string]any)
	assert.EqualValues(t, 0, orders["total"])
	assert.EqualValues(t, 0, orders["processed"])
	assert.Nil(t, data["bookings"])

	require.NotNil(t, runner.got)
	assert.Equal(t, int64(100), runner.got.ShopID)
	assert.Equal(t, []string{"O1"}, runner.got.OrderSns)
}

func TestSync_RunFailureEndsStream(t *testing.T) {
	runner := &fakeRunner{err: service.ErrTokenNotFound}
	ctl := NewSyncController(runner, fakeOwners{userID: "u1"}, nil, 0, zap.NewNop())

	w := postJSON(newSyncEngine(ctl, ""), "/api/sync", `{"shopId":100}`)
	require.Equal(t, http.StatusOK, w.Code)

	lines := ndjsonLines(t, w.Body.Bytes())
	require.Len(t, lines, 1)
	assert.Equal(t, false, lines[0]["success"])
	assert.Equal(t, true, lines[0]["completed"])
	assert.NotEmpty(t, lines[0]["error"])
}

func TestSync_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		owners fakeOwners
		user   string
		body   string
		status int
	}{
		{"缺少店铺", fakeOwners{userID: "u1"}, "u1", `{}`, http.StatusBadRequest},
		{"店铺编号非法", fakeOwners{userID: "u1"}, "u1", `{"shopId":-1}`, http.StatusBadRequest},
		{"请求体错误", fakeOwners{userID: "u1"}, "u1", `{"shopId":`, http.StatusBadRequest},
		{"店铺不存在", fakeOwners{err: service.ErrShopOwnerNotFound}, "u1", `{"shopId":100}`, http.StatusNotFound},
		{"查询失败", fakeOwners{err: errors.New("db down")}, "u1", `{"shopId":100}`, http.StatusInternalServerError},
		{"非店铺所有者", fakeOwners{userID: "u2"}, "u1", `{"shopId":100}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{report: &service.SyncReport{Orders: &service.SyncResult{}}}
			ctl := NewSyncController(runner, tc.owners, middleware.NewSyncRateLimiter(), time.Minute, zap.NewNop())

			w := postJSON(newSyncEngine(ctl, tc.user), "/api/sync", tc.body)
			assert.Equal(t, tc.status, w.Code)
			assert.Nil(t, runner.got)
		})
	}
}

func TestSync_Cooldown(t *testing.T) {
	runner := &fakeRunner{report: &service.SyncReport{Orders: &service.SyncResult{}}}
	ctl := NewSyncController(runner, fakeOwners{userID: "u1"}, middleware.NewSyncRateLimiter(), time.Minute, zap.NewNop())
	r := newSyncEngine(ctl, "u1")

	require.Equal(t, http.StatusOK, postJSON(r, "/api/sync", `{"shopId":100}`).Code)

	w := postJSON(r, "/api/sync", `{"shopId":100}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// 其他店铺不受影响
	assert.Equal(t, http.StatusOK, postJSON(r, "/api/sync", `{"shopId":200}`).Code)
}

func TestSync_FailureReleasesCooldown(t *testing.T) {
	runner := &fakeRunner{err: service.ErrTokenNotFound}
	ctl := NewSyncController(runner, fakeOwners{userID: "u1"}, middleware.NewSyncRateLimiter(), time.Minute, zap.NewNop())
	r := newSyncEngine(ctl, "u1")

	require.Equal(t, http.StatusOK, postJSON(r, "/api/sync", `{"shopId":100}`).Code)
	// 失败的同步不占用冷却窗口
	assert.Equal(t, http.StatusOK, postJSON(r, "/api/sync", `{"shopId":100}`).Code)
}

// ==================== 推送入口 ====================

func TestWebhook_AlwaysAcknowledges(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		submitErr error
		queued    int
	}{
		{"正常入队", `{"code":3,"shop_id":100,"data":{"ordersn":"O1","status":"READY_TO_SHIP"}}`, nil, 1},
		{"无法解析", `not json`, nil, 0},
		{"队列已满", `{"code":3,"shop_id":100,"data":{"ordersn":"O1"}}`, webhook.ErrQueueFull, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := &fakeSubmitter{err: tc.submitErr}
			r := gin.New()
			r.POST("/api/webhook", NewWebhookController(sub, zap.NewNop()).Receive)

			w := postJSON(r, "/api/webhook", tc.body)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"received":true}`, w.Body.String())
			assert.Len(t, sub.got, tc.queued)
		})
	}
}

func TestWebhook_ParsesDelivery(t *testing.T) {
	sub := &fakeSubmitter{}
	r := gin.New()
	r.POST("/api/webhook", NewWebhookController(sub, zap.NewNop()).Receive)

	postJSON(r, "/api/webhook", `{"code":4,"shop_id":100,"data":{"ordersn":"O1","tracking_no":"TRK"}}`)
	require.Len(t, sub.got, 1)
	assert.Equal(t, webhook.EventTracking, sub.got[0].Kind)
	assert.Equal(t, "O1", sub.got[0].ShardKey())
}

// ==================== 通知 ====================

func setupControllerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func TestNotification_List(t *testing.T) {
	db := setupControllerTestDB(t)
	require.NoError(t, db.Create(&model.ShopeeToken{ShopID: 100, UserID: "u1", IsActive: true}).Error)
	require.NoError(t, db.Create(&model.ShopeeToken{ShopID: 200, UserID: "u2", IsActive: true}).Error)
	require.NoError(t, db.Create(&model.ShopeeNotification{ShopID: 100, NotificationType: model.NotificationShopPenalty, Data: []byte(`{}`)}).Error)
	require.NoError(t, db.Create(&model.ShopeeNotification{ShopID: 200, NotificationType: model.NotificationShopPenalty, Data: []byte(`{}`)}).Error)

	ctl := NewNotificationController(nil, repository.NewShopRepository(db), repository.NewNotificationRepository(db), zap.NewNop())
	r := gin.New()
	r.GET("/api/notifications", withUser("u1"), ctl.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int                        `json:"code"`
		Data []model.ShopeeNotification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 200, body.Code)
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(100), body.Data[0].ShopID)
}

func TestNotification_ListEmptyAndUnauthorized(t *testing.T) {
	db := setupControllerTestDB(t)
	ctl := NewNotificationController(nil, repository.NewShopRepository(db), repository.NewNotificationRepository(db), zap.NewNop())

	r := gin.New()
	r.GET("/mine", withUser("nobody"), ctl.List)
	r.GET("/anon", ctl.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mine", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// fakeSubscriber 预置事件后关闭的订阅
type fakeSubscriber struct {
	events []notify.Event
	user   string
}

func (f *fakeSubscriber) Subscribe(userID string) (*notify.Subscription, func()) {
	f.user = userID
	ch := make(chan notify.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return &notify.Subscription{UserID: userID, C: ch}, func() {}
}

func TestNotification_Stream(t *testing.T) {
	ev, err := notify.NewEvent(notify.EventNotification, 100, map[string]string{"action": "ITEM_BANNED"})
	require.NoError(t, err)
	hub := &fakeSubscriber{events: []notify.Event{ev}}

	ctl := NewNotificationController(hub, nil, nil, zap.NewNop())
	r := gin.New()
	r.GET("/sse", withUser("u1"), ctl.Stream)

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sse")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// 订阅关闭后流结束
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payloads []map[string]any
	for _, line := range strings.Split(string(body), "\n") {
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(data), &m))
			payloads = append(payloads, m)
		}
	}
	require.Len(t, payloads, 2)
	assert.Equal(t, "connection_established", payloads[0]["type"])
	assert.Equal(t, ev.ID, payloads[1]["id"])
	assert.Equal(t, "u1", hub.user)
}
