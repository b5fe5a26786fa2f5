package shopee

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		PartnerID:  1001,
		PartnerKey: "test-key",
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		RateLimit:  100,
	}, zap.NewNop())
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestSign(t *testing.T) {
	public := Sign("key", 1001, "/api/v2/auth/access_token/get", 1700000000, "", 0)
	shop := Sign("key", 1001, "/api/v2/order/get_order_list", 1700000000, "tok", 100)

	assert.Len(t, public, 64)
	assert.NotEqual(t, public, shop)
	assert.Equal(t, shop, Sign("key", 1001, "/api/v2/order/get_order_list", 1700000000, "tok", 100))
}

func TestClient_GetOrderDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v2/order/get_order_detail", r.URL.Path)
		assert.Equal(t, "O1,O2", q.Get("order_sn_list"))
		assert.Equal(t, "100", q.Get("shop_id"))
		assert.Equal(t, "tok", q.Get("access_token"))
		assert.Equal(t, Sign("test-key", 1001, r.URL.Path, 1700000000, "tok", 100), q.Get("sign"))

		writeJSON(w, map[string]any{
			"request_id": "r1",
			"response": map[string]any{
				"order_list": []map[string]any{
					{"order_sn": "O1", "order_status": "READY_TO_SHIP", "buyer_user_id": 7, "total_amount": 150000.5},
					{"order_sn": "O2", "order_status": "SHIPPED"},
				},
			},
		})
	})

	orders, err := c.GetOrderDetail(context.Background(), 100, "tok", []string{" O1", "O2 "})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(7), orders[0].BuyerUserID)
	assert.Equal(t, "150000.5", orders[0].TotalAmount.String())
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"error":      "error_param",
			"message":    "order_sn invalid",
			"request_id": "r2",
		})
	})

	_, err := c.GetTrackingNumber(context.Background(), 100, "tok", "O1", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "error_param", apiErr.Code)
	assert.Equal(t, "r2", apiErr.RequestID)
}

func TestClient_EmptySnList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("不应发出请求")
	})

	_, err := c.GetBookingDetail(context.Background(), 100, "tok", []string{"  "})
	assert.ErrorIs(t, err, ErrEmptySnList)
}

func TestClient_ShipOrderRequiresMethod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("不应发出请求")
	})

	err := c.ShipOrder(context.Background(), 100, "tok", ShipOrderRequest{OrderSn: "O1"})
	assert.ErrorIs(t, err, ErrNoShipMethod)
}

func TestClient_SendMessage(t *testing.T) {
	var body SendMessageRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, map[string]any{"response": map[string]any{"message_id": "m1"}})
	})

	res, err := c.SendMessage(context.Background(), 100, "tok", SendMessageRequest{
		ToID:        7,
		MessageType: MessageTypeOrder,
		Content:     MessageContent{OrderSn: "O1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", res.MessageID)
	assert.Equal(t, "O1", body.Content.OrderSn)
	assert.Equal(t, int64(7), body.ToID)
}

func TestClient_RefreshAccessToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Empty(t, q.Get("access_token"))
		assert.Equal(t, Sign("test-key", 1001, r.URL.Path, 1700000000, "", 0), q.Get("sign"))
		writeJSON(w, map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"expire_in":     14400,
		})
	})

	res, err := c.RefreshAccessToken(context.Background(), 100, "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", res.AccessToken)
	assert.Equal(t, int64(14400), res.ExpireIn)
}

func TestClient_GetEscrowDetail_OptionalIncome(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"response": map[string]any{
				"order_sn": "O1",
				"order_income": map[string]any{
					"escrow_amount":  90000,
					"commission_fee": nil,
				},
			},
		})
	})

	res, err := c.GetEscrowDetail(context.Background(), 100, "tok", "O1")
	require.NoError(t, err)
	require.NotNil(t, res.OrderIncome)
	assert.True(t, res.OrderIncome.EscrowAmount.Valid)
	assert.False(t, res.OrderIncome.CommissionFee.Valid)
	assert.False(t, res.OrderIncome.ServiceFee.Valid)
}
