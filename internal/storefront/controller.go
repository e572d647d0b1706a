package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/backend"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

const (
	ShopperHeader = "X-Shopper-ID"

	ErrMsgSessionOwned = "shopper session belongs to another user"

	maxLineQuantity = 99
)

type SessionProvider interface {
	Get(ctx context.Context, shopperID string) (*Session, error)
}

type MenuResolver interface {
	ResolveSelection(ctx context.Context, itemID string, customizationIDs []string) (domain.MenuItem, []domain.Customization, error)
}

type OrderLookup interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

type Controller struct {
	sessions SessionProvider
	menu     MenuResolver
	orders   OrderLookup
	identity Identity
	logger   *zap.Logger
}

func NewController(sessions SessionProvider, menu MenuResolver, orders OrderLookup, identity Identity, logger *zap.Logger) *Controller {
	return &Controller{
		sessions: sessions,
		menu:     menu,
		orders:   orders,
		identity: identity,
		logger:   logger,
	}
}

// request is the per-call context every handler starts from.
type request struct {
	ctx     context.Context
	traceID string
	logger  *zap.Logger
	session *Session
}

func (c *Controller) begin(w http.ResponseWriter, r *http.Request) (*request, bool) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	shopperID := strings.TrimSpace(r.Header.Get(ShopperHeader))
	if shopperID == "" {
		logger.Warn("missing shopper id")
		c.writeValidationError(w, "shopper id is required", apperrors.ValidationDetail{
			Field:   ShopperHeader,
			Message: "header " + ShopperHeader + " is required",
		})
		return nil, false
	}
	logger = logger.With(zap.String("shopperId", shopperID))

	ctx := r.Context()
	if token := bearerToken(r); token != "" {
		ctx = backend.WithToken(ctx, token)
	}

	userID, err := c.identity.CurrentUser(ctx)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return nil, false
	}

	session, err := c.sessions.Get(ctx, shopperID)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return nil, false
	}
	if !session.Claim(userID) {
		logger.Warn("shopper session used by another user", zap.String("userId", userID))
		c.handleError(w, traceID, apperrors.NewForbiddenError(ErrMsgSessionOwned), logger)
		return nil, false
	}

	return &request{ctx: ctx, traceID: traceID, logger: logger, session: session}, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Cart

func (c *Controller) GetCart(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}
	c.writeJSON(w, http.StatusOK, dto.NewCartResponse(req.traceID, req.session.Cart.State()))
}

func (c *Controller) AddItem(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		req.logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateAddItemRequest(body); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	item, customizations, err := c.menu.ResolveSelection(req.ctx, body.ItemID, body.CustomizationIDs)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}

	quantity := body.Quantity
	if quantity == 0 {
		quantity = 1
	}

	state, err := req.session.Cart.AddItem(req.ctx, item, quantity, customizations, strings.TrimSpace(body.SpecialInstructions))
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}

	req.logger.Info("item added to cart", zap.String("itemId", item.ID), zap.Int("quantity", quantity))
	c.writeJSON(w, http.StatusOK, dto.NewCartResponse(req.traceID, c.repriced(req, state)))
}

func validateAddItemRequest(body dto.AddItemRequest) error {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(body.ItemID) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "itemId",
			Message: "itemId is required",
		})
	}

	if body.Quantity < 0 || body.Quantity > maxLineQuantity {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be between 1 and " + strconv.Itoa(maxLineQuantity),
		})
	}

	for idx, id := range body.CustomizationIDs {
		if strings.TrimSpace(id) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "customizationIds[" + strconv.Itoa(idx) + "]",
				Message: "customization id must not be empty",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (c *Controller) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		req.logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}
	if body.Quantity == nil {
		c.writeValidationError(w, "quantity is required", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity is required",
		})
		return
	}
	if *body.Quantity > maxLineQuantity {
		c.writeValidationError(w, "validation failed", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must not exceed " + strconv.Itoa(maxLineQuantity),
		})
		return
	}

	state, err := req.session.Cart.UpdateQuantity(req.ctx, chi.URLParam(r, "cartId"), *body.Quantity)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeJSON(w, http.StatusOK, dto.NewCartResponse(req.traceID, c.repriced(req, state)))
}

func (c *Controller) RemoveItem(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	state, err := req.session.Cart.RemoveItem(req.ctx, chi.URLParam(r, "cartId"))
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeJSON(w, http.StatusOK, dto.NewCartResponse(req.traceID, c.repriced(req, state)))
}

func (c *Controller) ClearCart(w http.ResponseWriter, r *http.Request) {
	c.cartCommand(w, r, (*cart.Store).Clear)
}

func (c *Controller) ToggleCart(w http.ResponseWriter, r *http.Request) {
	c.cartCommand(w, r, (*cart.Store).Toggle)
}

func (c *Controller) OpenCart(w http.ResponseWriter, r *http.Request) {
	c.cartCommand(w, r, (*cart.Store).Show)
}

func (c *Controller) CloseCart(w http.ResponseWriter, r *http.Request) {
	c.cartCommand(w, r, (*cart.Store).Hide)
}

func (c *Controller) cartCommand(w http.ResponseWriter, r *http.Request, cmd func(*cart.Store, context.Context) (domain.CartState, error)) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	state, err := cmd(req.session.Cart, req.ctx)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeJSON(w, http.StatusOK, dto.NewCartResponse(req.traceID, c.repriced(req, state)))
}

// repriced keeps an open checkout's delivery fee and tax in line with the
// cart after a change. A failure leaves the previous pricing in place.
func (c *Controller) repriced(req *request, state domain.CartState) domain.CartState {
	if err := req.session.Checkout.Reprice(req.ctx); err != nil {
		req.logger.Warn("failed to reprice open checkout", zap.Error(err))
		return state
	}
	return req.session.Cart.State()
}

// Checkout

func (c *Controller) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	session, err := req.session.Checkout.Open(req.ctx)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeCheckout(w, req, session)
}

func (c *Controller) GetCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	session, open := req.session.Checkout.Session()
	if !open {
		c.handleError(w, req.traceID, checkout.ErrNotOpen, req.logger)
		return
	}
	c.writeCheckout(w, req, session)
}

func (c *Controller) RetryAddresses(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	session, err := req.session.Checkout.RetryAddresses(req.ctx)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeCheckout(w, req, session)
}

func (c *Controller) SelectAddress(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.SelectAddressRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	session, err := req.session.Checkout.SelectAddress(body.AddressID)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeCheckout(w, req, session)
}

func (c *Controller) SelectPayment(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.SelectPaymentRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	session, err := req.session.Checkout.SelectPayment(domain.PaymentMethod(body.PaymentMethod))
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeCheckout(w, req, session)
}

func (c *Controller) SetNotes(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	var body dto.OrderNotesRequest
	if !c.decode(w, r, req, &body) {
		return
	}

	session, err := req.session.Checkout.SetNotes(body.OrderNotes)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeCheckout(w, req, session)
}

func (c *Controller) NextStep(w http.ResponseWriter, r *http.Request) {
	c.stepCommand(w, r, (*checkout.Flow).Next)
}

func (c *Controller) PreviousStep(w http.ResponseWriter, r *http.Request) {
	c.stepCommand(w, r, (*checkout.Flow).Back)
}

func (c *Controller) stepCommand(w http.ResponseWriter, r *http.Request, step func(*checkout.Flow) (domain.CheckoutSession, error)) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	session, err := step(req.session.Checkout)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}
	c.writeCheckout(w, req, session)
}

func (c *Controller) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	order, err := req.session.Checkout.Submit(req.ctx)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}

	req.logger.Info("order placed", zap.String("orderId", order.ID))
	c.writeJSON(w, http.StatusCreated, dto.OrderResponse{
		TraceID:   req.traceID,
		Order:     order,
		Timestamp: time.Now().UTC(),
	})
}

func (c *Controller) CloseCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	req.session.Checkout.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) GetOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := c.begin(w, r)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "orderId")
	if strings.TrimSpace(orderID) == "" {
		c.writeValidationError(w, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId is required",
		})
		return
	}

	order, err := c.orders.GetOrder(req.ctx, orderID)
	if err != nil {
		c.handleError(w, req.traceID, err, req.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.OrderResponse{
		TraceID:   req.traceID,
		Order:     order,
		Timestamp: time.Now().UTC(),
	})
}

func (c *Controller) decode(w http.ResponseWriter, r *http.Request, req *request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		req.logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

func (c *Controller) writeCheckout(w http.ResponseWriter, req *request, session domain.CheckoutSession) {
	c.writeJSON(w, http.StatusOK, dto.NewCheckoutResponse(req.traceID, session, req.session.Cart.State()))
}

func (c *Controller) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if le, ok := apperrors.IsLoginRequiredError(err); ok {
		c.writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			TraceID:     traceID,
			Status:      http.StatusUnauthorized,
			Message:     le.Error(),
			Code:        "LOGIN_REQUIRED",
			RedirectURL: le.RedirectURL,
			Timestamp:   time.Now().UTC(),
		})
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	switch {
	case errors.Is(err, checkout.ErrNotOpen):
		c.writeErrorResponse(w, traceID, http.StatusConflict, "CHECKOUT_NOT_OPEN", err.Error())
		return
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		c.writeErrorResponse(w, traceID, http.StatusConflict, "SUBMISSION_IN_PROGRESS", err.Error())
		return
	case errors.Is(err, checkout.ErrStaleSession):
		c.writeErrorResponse(w, traceID, http.StatusConflict, "STALE_SESSION", err.Error())
		return
	case errors.Is(err, cart.ErrStoreClosed):
		c.writeErrorResponse(w, traceID, http.StatusConflict, "CART_CLOSED", err.Error())
		return
	}

	if ue, ok := apperrors.IsUpstreamError(err); ok {
		logger.Warn("backend error", zap.Int("upstreamStatus", ue.StatusCode), zap.Error(err))
		c.writeErrorResponse(w, traceID, http.StatusBadGateway, "UPSTREAM_ERROR", ue.Message)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *Controller) writeErrorResponse(w http.ResponseWriter, traceID string, statusCode int, code string, message string) {
	c.writeJSON(w, statusCode, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
