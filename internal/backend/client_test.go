package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

// Helper to create a Client pointed at a test server
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, zap.NewNop())
}

func TestListAddresses_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/addresses", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"addresses":[{"id":"a1","label":"Home","city":"Nairobi","isDefault":true},{"id":"a2","label":"Work"}]}`))
	})

	addresses, err := client.ListAddresses(WithToken(context.Background(), "tok-1"))

	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, "a1", addresses[0].ID)
	assert.True(t, addresses[0].IsDefault)
}

func TestListAddresses_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	addresses, err := client.ListAddresses(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, addresses)
	assert.Empty(t, addresses)
}

func TestListAddresses_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListAddresses(context.Background())

	ue, ok := apperrors.IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.Equal(t, ErrMsgLoadAddresses, ue.Message)
}

func TestPlaceOrder_SendsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req domain.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a1", req.DeliveryAddress)
		assert.Equal(t, domain.PaymentMpesa, req.PaymentMethod)
		assert.Len(t, req.Items, 1)
		assert.Equal(t, []string{"cheese"}, req.Items[0].Customizations)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"order":{"id":"o-9","status":"confirmed","total":45.47}}`))
	})

	order, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		RestaurantID:    "r1",
		Items:           []domain.OrderRequestItem{{ItemID: "pizza", Quantity: 2, Customizations: []string{"cheese"}}},
		DeliveryAddress: "a1",
		PaymentMethod:   domain.PaymentMpesa,
		Total:           domain.Money("45.47"),
	})

	require.NoError(t, err)
	assert.Equal(t, "o-9", order.ID)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
}

func TestPlaceOrder_ServerMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Restaurant is closed"}`, "Restaurant is closed"},
		{"error field", http.StatusUnprocessableEntity, `{"error":"Item unavailable"}`, "Item unavailable"},
		{"no body", http.StatusInternalServerError, ``, ErrMsgPlaceOrder},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, ErrMsgPlaceOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.PlaceOrder(context.Background(), domain.OrderRequest{})

			ue, ok := apperrors.IsUpstreamError(err)
			require.True(t, ok, "got %T", err)
			assert.Equal(t, tt.status, ue.StatusCode)
			assert.Equal(t, tt.message, ue.Message)
		})
	}
}

func TestPlaceOrder_MissingOrderInResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})

	_, err := client.PlaceOrder(context.Background(), domain.OrderRequest{})

	_, ok := apperrors.IsUpstreamError(err)
	assert.True(t, ok)
}

func TestPlaceOrder_Unreachable(t *testing.T) {
	client := NewClient(config.BackendConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())

	_, err := client.PlaceOrder(context.Background(), domain.OrderRequest{})

	ue, ok := apperrors.IsUpstreamError(err)
	require.True(t, ok)
	assert.Equal(t, 0, ue.StatusCode)
	assert.Equal(t, ErrMsgPlaceOrder, ue.Message)
}

func TestGetOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/orders/o-1" {
			w.Write([]byte(`{"order":{"id":"o-1","status":"preparing","estimatedDeliveryTime":"2026-10-19T12:30:00Z"}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Order not found"}`))
	})

	order, err := client.GetOrder(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPreparing, order.Status)
	assert.Equal(t, 12, order.EstimatedDeliveryTime.Hour())

	_, err = client.GetOrder(context.Background(), "missing")
	nfe, ok := apperrors.IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "Order not found", nfe.Message)
}

func TestGetMenuItem(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/menu/items/pizza", r.URL.Path)
		w.Write([]byte(`{"item":{"id":"pizza","restaurantId":"r1","name":"Margherita Pizza","price":18.99,"isAvailable":true,"customizations":[{"id":"cheese","name":"Extra cheese","price":1.5}]}}`))
	})

	item, err := client.GetMenuItem(context.Background(), "pizza")

	require.NoError(t, err)
	assert.Equal(t, "r1", item.RestaurantID)
	assert.Equal(t, "18.99", item.Price.String())
	require.Len(t, item.Customizations, 1)
	assert.Equal(t, "cheese", item.Customizations[0].ID)
}

func TestIsAuthenticated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		if r.Header.Get("Authorization") == "Bearer good" {
			w.Write([]byte(`{"user":{"id":"u1"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	ok, err := client.IsAuthenticated(WithToken(context.Background(), "good"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.IsAuthenticated(WithToken(context.Background(), "expired"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAuthenticated_NoTokenSkipsNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	ok, err := client.IsAuthenticated(context.Background())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestCurrentUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer wrapped":
			w.Write([]byte(`{"user":{"id":"u1","email":"wanjiku@example.com"}}`))
		case "Bearer bare":
			w.Write([]byte(`{"id":"u2","email":"otieno@example.com"}`))
		case "Bearer anonymous":
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	userID, err := client.CurrentUser(WithToken(context.Background(), "wrapped"))
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	userID, err = client.CurrentUser(WithToken(context.Background(), "bare"))
	require.NoError(t, err)
	assert.Equal(t, "u2", userID)

	userID, err = client.CurrentUser(WithToken(context.Background(), "expired"))
	require.NoError(t, err)
	assert.Empty(t, userID)

	userID, err = client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Empty(t, userID)

	_, err = client.CurrentUser(WithToken(context.Background(), "anonymous"))
	_, ok := apperrors.IsUpstreamError(err)
	assert.True(t, ok)
}

func TestIsAuthenticated_BackendDown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.IsAuthenticated(WithToken(context.Background(), "good"))

	assert.Error(t, err)
}
