package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"

	"go.uber.org/zap"
)

const (
	ErrMsgPlaceOrder     = "Failed to place order. Please try again."
	ErrMsgLoadAddresses  = "Failed to load addresses"
	ErrMsgLoadOrder      = "Failed to load order details"
	ErrMsgLoadMenuItem   = "Failed to load menu item"
	ErrMsgAuthentication = "Failed to verify session"
)

type tokenKey struct{}

// WithToken attaches the shopper's bearer token to ctx. Every backend call
// made with the returned context is authorised with it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type addressesResponse struct {
	Addresses []domain.Address `json:"addresses"`
}

type orderResponse struct {
	Order *domain.Order `json:"order"`
}

type menuItemResponse struct {
	Item *domain.MenuItem `json:"item"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var resp addressesResponse
	if err := c.do(ctx, http.MethodGet, "/api/user/addresses", nil, &resp, ErrMsgLoadAddresses); err != nil {
		return nil, err
	}
	if resp.Addresses == nil {
		return []domain.Address{}, nil
	}
	return resp.Addresses, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &resp, ErrMsgPlaceOrder); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, apperrors.NewUpstreamError(http.StatusBadGateway, ErrMsgPlaceOrder, fmt.Errorf("response has no order"))
	}
	return resp.Order, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var resp orderResponse
	path := "/api/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, ErrMsgLoadOrder); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, apperrors.NewNotFoundError("order not found")
	}
	return resp.Order, nil
}

func (c *Client) GetMenuItem(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	var resp menuItemResponse
	path := "/api/menu/items/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, ErrMsgLoadMenuItem); err != nil {
		return nil, err
	}
	if resp.Item == nil {
		return nil, apperrors.NewNotFoundError("menu item not found")
	}
	return resp.Item, nil
}

// meResponse accepts both a bare user object and one wrapped in "user".
type meResponse struct {
	ID   string `json:"id"`
	User *struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (r meResponse) userID() string {
	if r.User != nil && r.User.ID != "" {
		return r.User.ID
	}
	return r.ID
}

// me calls the auth endpoint with the token in ctx. ok is false when there is
// no token or the backend rejects it.
func (c *Client) me(ctx context.Context) (resp meResponse, ok bool, err error) {
	if TokenFrom(ctx) == "" {
		return meResponse{}, false, nil
	}

	err = c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp, ErrMsgAuthentication)
	if err == nil {
		return resp, true, nil
	}
	if ue, isUpstream := apperrors.IsUpstreamError(err); isUpstream &&
		(ue.StatusCode == http.StatusUnauthorized || ue.StatusCode == http.StatusForbidden) {
		return meResponse{}, false, nil
	}
	return meResponse{}, false, err
}

// IsAuthenticated asks the auth endpoint whether the token in ctx is valid.
// A missing token is reported as unauthenticated without a network call.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	_, ok, err := c.me(ctx)
	return ok, err
}

// CurrentUser returns the id of the user the token in ctx belongs to, or ""
// for a guest.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	resp, ok, err := c.me(ctx)
	if err != nil || !ok {
		return "", err
	}
	if resp.userID() == "" {
		return "", apperrors.NewUpstreamError(http.StatusBadGateway, ErrMsgAuthentication, fmt.Errorf("auth response has no user id"))
	}
	return resp.userID(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, fallback string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return apperrors.NewUpstreamError(0, fallback, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamError(resp.StatusCode, fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
			return apperrors.NewNotFoundError(serverMessage(data, "resource not found"))
		}
		return apperrors.NewUpstreamError(resp.StatusCode, serverMessage(data, fallback), nil)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewUpstreamError(resp.StatusCode, fallback, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// serverMessage extracts message, then error, from an error body.
func serverMessage(data []byte, fallback string) string {
	var body errorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return fallback
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return fallback
}
