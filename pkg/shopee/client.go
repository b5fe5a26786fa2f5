package shopee

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shopee_ops_v1_202610/pkg/metrics"
)

// DefaultBaseURL Shopee Open API 生产地址
const DefaultBaseURL = "https://partner.shopeemobile.com"

// ==================== 错误 ====================

// APIError Shopee 返回的业务错误（HTTP 200 但 error 字段非空）
type APIError struct {
	Path      string
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopee %s: %s (%s) request_id=%s", e.Path, e.Code, e.Message, e.RequestID)
}

// ErrEmptyResponse 响应缺少 response 字段
var ErrEmptyResponse = errors.New("shopee 响应为空")

// ==================== 客户端 ====================

// Config 客户端配置
type Config struct {
	PartnerID  int64
	PartnerKey string
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // 每店铺每秒请求数
}

// Client Shopee Open API v2 客户端
type Client struct {
	partnerID  int64
	partnerKey string
	http       *resty.Client
	rateLimit  rate.Limit
	limiters   sync.Map // shopID -> *rate.Limiter
	now        func() time.Time
	log        *zap.Logger
}

var _ API = (*Client)(nil)

// NewClient 创建客户端
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		partnerID:  cfg.PartnerID,
		partnerKey: cfg.PartnerKey,
		http:       httpClient,
		rateLimit:  rate.Limit(cfg.RateLimit),
		now:        time.Now,
		log:        log.Named("Shopee"),
	}
}

// Close 释放空闲连接
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// Sign 生成签名
// 公共接口: partner_id + path + timestamp
// 店铺接口: partner_id + path + timestamp + access_token + shop_id
func Sign(partnerKey string, partnerID int64, path string, timestamp int64, accessToken string, shopID int64) string {
	base := strconv.FormatInt(partnerID, 10) + path + strconv.FormatInt(timestamp, 10)
	if accessToken != "" && shopID != 0 {
		base += accessToken + strconv.FormatInt(shopID, 10)
	}
	mac := hmac.New(sha256.New, []byte(partnerKey))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

// limiter 按店铺限速
func (c *Client) limiter(shopID int64) *rate.Limiter {
	if v, ok := c.limiters.Load(shopID); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(c.rateLimit, int(c.rateLimit)+1)
	actual, _ := c.limiters.LoadOrStore(shopID, l)
	return actual.(*rate.Limiter)
}

// commonParams 公共参数
func (c *Client) commonParams(path, accessToken string, shopID int64) map[string]string {
	ts := c.now().Unix()
	params := map[string]string{
		"partner_id": strconv.FormatInt(c.partnerID, 10),
		"timestamp":  strconv.FormatInt(ts, 10),
		"sign":       Sign(c.partnerKey, c.partnerID, path, ts, accessToken, shopID),
	}
	if shopID != 0 {
		params["shop_id"] = strconv.FormatInt(shopID, 10)
	}
	if accessToken != "" {
		params["access_token"] = accessToken
	}
	return params
}

// envelope 通用响应
type envelope struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Warning   any             `json:"warning,omitempty"`
	Response  json.RawMessage `json:"response"`
}

// call 发送请求并解码 response 字段到 out
// body 为 nil 时发送 GET，query 合并到公共参数之后（不覆盖签名参数）
func (c *Client) call(ctx context.Context, method, path string, shopID int64, accessToken string, query map[string]string, body, out any) error {
	if shopID != 0 {
		if err := c.limiter(shopID).Wait(ctx); err != nil {
			return fmt.Errorf("等待限流失败: %w", err)
		}
	}

	params := c.commonParams(path, accessToken, shopID)
	for k, v := range query {
		if _, exists := params[k]; !exists {
			params[k] = v
		}
	}

	var env envelope
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&env).
		SetError(&env)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		metrics.ShopeeRequests.WithLabelValues(path, "transport_error").Inc()
		return fmt.Errorf("请求 %s 失败: %w", path, err)
	}

	if env.Error != "" {
		metrics.ShopeeRequests.WithLabelValues(path, "api_error").Inc()
		return &APIError{Path: path, Code: env.Error, Message: env.Message, RequestID: env.RequestID}
	}
	if resp.IsError() {
		metrics.ShopeeRequests.WithLabelValues(path, "http_error").Inc()
		return fmt.Errorf("请求 %s 返回 HTTP %d", path, resp.StatusCode())
	}
	metrics.ShopeeRequests.WithLabelValues(path, "ok").Inc()

	if out == nil {
		return nil
	}
	if len(env.Response) == 0 || string(env.Response) == "null" {
		return fmt.Errorf("%s: %w", path, ErrEmptyResponse)
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("解析 %s 响应失败: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, shopID int64, accessToken string, query map[string]string, out any) error {
	return c.call(ctx, resty.MethodGet, path, shopID, accessToken, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, shopID int64, accessToken string, body, out any) error {
	return c.call(ctx, resty.MethodPost, path, shopID, accessToken, nil, body, out)
}
