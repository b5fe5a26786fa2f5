package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims UserClaims) string {
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(sub string) UserClaims {
	return UserClaims{
		Email: "a@b.c",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

// ==================== JWT ====================

func TestParseToken(t *testing.T) {
	claims, err := ParseToken(testSecret, signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("u1")))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)

	_, err = ParseToken("other", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("u1")))
	assert.Error(t, err)

	_, err = ParseToken(testSecret, signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("u1")))
	assert.Error(t, err)

	_, err = ParseToken(testSecret, signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("")))
	assert.Error(t, err)

	expired := validClaims("u1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = ParseToken(testSecret, signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired))
	assert.Error(t, err)
}

func newAuthEngine(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/me", SupabaseAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return r
}

func TestSupabaseAuth(t *testing.T) {
	r := newAuthEngine(testSecret)
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("u1"))

	cases := []struct {
		name   string
		header string
		query  string
		status int
		user   string
	}{
		{"请求头", "Bearer " + token, "", http.StatusOK, "u1"},
		{"查询参数", "", "?access_token=" + token, http.StatusOK, "u1"},
		{"缺少令牌", "", "", http.StatusUnauthorized, ""},
		{"格式错误", "Token " + token, "", http.StatusUnauthorized, ""},
		{"签名无效", "Bearer " + token + "x", "", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tc.user, body["user_id"])
			}
		})
	}
}

func TestSupabaseAuth_Disabled(t *testing.T) {
	w := httptest.NewRecorder()
	newAuthEngine("").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":""}`, w.Body.String())
}

// ==================== 同步冷却 ====================

func TestSyncRateLimiter(t *testing.T) {
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	l := NewSyncRateLimiter()
	l.now = func() time.Time { return now }
	key := ShopSyncKey(100, SyncTypeManual)
	assert.Equal(t, "shop:100:manual", key)

	assert.True(t, l.Check(key, time.Minute).Allowed)

	now = now.Add(20 * time.Second)
	res := l.Check(key, time.Minute)
	assert.False(t, res.Allowed)
	assert.Equal(t, 40*time.Second, res.RetryAfter)

	// 不同类型互不影响
	assert.True(t, l.Check(ShopSyncKey(100, SyncTypeScheduled), time.Minute).Allowed)

	now = now.Add(40 * time.Second)
	assert.True(t, l.Check(key, time.Minute).Allowed)

	l.Reset(key)
	assert.True(t, l.Check(key, time.Minute).Allowed)
}

func TestAbortCooldown(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { AbortCooldown(c, 90*time.Second) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "90", w.Header().Get("Retry-After"))
	var body struct {
		Success    bool   `json:"success"`
		Error      string `json:"error"`
		RetryAfter int    `json:"retry_after"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, 90, body.RetryAfter)
	assert.Equal(t, "同步冷却中，请 1 分 30 秒后重试", body.Error)
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "同步冷却中，请 1 秒后重试", formatRetryMessage(200*time.Millisecond))
	assert.Equal(t, "同步冷却中，请 45 秒后重试", formatRetryMessage(45*time.Second))
	assert.Equal(t, "同步冷却中，请 2 分钟后重试", formatRetryMessage(2*time.Minute))
}

// ==================== 其他 ====================

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.Any("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestConnLimit(t *testing.T) {
	r := gin.New()
	r.GET("/sse", ConnLimit(2, time.Hour), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sse", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// 其他 IP 单独计数
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sse", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSyncRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	l := NewSyncRateLimiter()
	l.now = func() time.Time { return now }

	l.Check("old", time.Minute)
	now = now.Add(2 * time.Hour)
	l.Check("fresh", time.Minute)

	assert.Equal(t, 1, l.Sweep(time.Hour))
	// 清理后的 key 立即可用，未清理的仍在冷却
	assert.True(t, l.Check("old", time.Minute).Allowed)
	assert.False(t, l.Check("fresh", time.Minute).Allowed)
}
