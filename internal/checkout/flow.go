package checkout

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

var (
	ErrNotOpen              = errors.New("checkout is not open")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrStaleSession         = errors.New("checkout session is no longer active")
)

const (
	ErrMsgSubmitFailed     = "Failed to place order. Please try again."
	ErrMsgAddressesFailed  = "Failed to load addresses"
	ErrMsgEmptyCart        = "cart is empty"
	ErrMsgAddressRequired  = "select a delivery address"
	ErrMsgUnknownAddress   = "address is not one of the shopper's addresses"
	ErrMsgPaymentRequired  = "select a payment method"
	ErrMsgInvalidPayment   = "payment method must be one of card, cash, mpesa"
	ErrMsgReviewStepNeeded = "order can only be submitted from the review step"
)

// Flow drives one shopper's checkout: Address, Payment, Review, submit.
// Network calls run without holding mu; results are applied only if the
// session that started them is still the current one.
type Flow struct {
	mu        sync.Mutex
	session   *domain.CheckoutSession
	cart      Cart
	addresses AddressSource
	orders    OrderPlacer
	auth      Authenticator
	pricing   PricingPolicy
	loginURL  string
	logger    *zap.Logger
}

func NewFlow(
	cart Cart,
	addresses AddressSource,
	orders OrderPlacer,
	auth Authenticator,
	pricing PricingPolicy,
	loginURL string,
	logger *zap.Logger,
) *Flow {
	return &Flow{
		cart:      cart,
		addresses: addresses,
		orders:    orders,
		auth:      auth,
		pricing:   pricing,
		loginURL:  loginURL,
		logger:    logger,
	}
}

// Open starts a new session on the Address step, replacing any previous
// one. An address fetch failure is recorded on the session, not returned.
func (f *Flow) Open(ctx context.Context) (domain.CheckoutSession, error) {
	if err := f.requireAuthentication(ctx); err != nil {
		return domain.CheckoutSession{}, err
	}

	if err := f.applyPricing(ctx); err != nil {
		return domain.CheckoutSession{}, err
	}

	f.mu.Lock()
	f.session = &domain.CheckoutSession{
		ID:   uuid.NewString(),
		Step: domain.StepAddress,
	}
	sessionID := f.session.ID
	f.mu.Unlock()

	f.logger.Info("checkout opened", zap.String("sessionId", sessionID))
	return f.loadAddresses(ctx, sessionID)
}

// Reprice writes the pricing policy's delivery fee and tax to the cart while
// a session is open. It is called after every cart change.
func (f *Flow) Reprice(ctx context.Context) error {
	f.mu.Lock()
	open := f.session != nil
	f.mu.Unlock()

	if !open {
		return nil
	}
	return f.applyPricing(ctx)
}

func (f *Flow) applyPricing(ctx context.Context) error {
	current := f.cart.State()
	priced := f.pricing.Apply(current)

	if !priced.DeliveryFee.Equal(current.DeliveryFee) {
		if _, err := f.cart.SetDeliveryFee(ctx, priced.DeliveryFee); err != nil {
			return err
		}
	}
	if !priced.Tax.Equal(current.Tax) {
		if _, err := f.cart.SetTax(ctx, priced.Tax); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flow) RetryAddresses(ctx context.Context) (domain.CheckoutSession, error) {
	f.mu.Lock()
	if f.session == nil {
		f.mu.Unlock()
		return domain.CheckoutSession{}, ErrNotOpen
	}
	sessionID := f.session.ID
	f.mu.Unlock()

	return f.loadAddresses(ctx, sessionID)
}

func (f *Flow) loadAddresses(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	addresses, err := f.addresses.ListAddresses(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil || f.session.ID != sessionID {
		return domain.CheckoutSession{}, ErrStaleSession
	}

	if err != nil {
		f.logger.Warn("failed to load addresses", zap.String("sessionId", sessionID), zap.Error(err))
		f.session.Addresses = nil
		f.session.AddressError = ErrMsgAddressesFailed
		return f.snapshot(), nil
	}

	f.session.Addresses = addresses
	f.session.AddressError = ""
	if !f.session.HasAddress(f.session.SelectedAddressID) {
		f.session.SelectedAddressID = ""
		if def, ok := domain.DefaultAddress(addresses); ok {
			f.session.SelectedAddressID = def.ID
		}
	}
	return f.snapshot(), nil
}

func (f *Flow) SelectAddress(addressID string) (domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return domain.CheckoutSession{}, ErrNotOpen
	}
	if !f.session.HasAddress(addressID) {
		return f.snapshot(), apperrors.NewValidationError(ErrMsgUnknownAddress, apperrors.ValidationDetail{
			Field:   "addressId",
			Message: ErrMsgUnknownAddress,
		})
	}
	f.session.SelectedAddressID = addressID
	return f.snapshot(), nil
}

func (f *Flow) SelectPayment(method domain.PaymentMethod) (domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return domain.CheckoutSession{}, ErrNotOpen
	}
	if !method.Valid() {
		return f.snapshot(), apperrors.NewValidationError(ErrMsgInvalidPayment, apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: ErrMsgInvalidPayment,
		})
	}
	f.session.PaymentMethod = method
	return f.snapshot(), nil
}

func (f *Flow) SetNotes(notes string) (domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return domain.CheckoutSession{}, ErrNotOpen
	}
	f.session.OrderNotes = notes
	return f.snapshot(), nil
}

// Next advances one step when the current step's guard holds. On Review it
// is a no-op.
func (f *Flow) Next() (domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return domain.CheckoutSession{}, ErrNotOpen
	}

	switch f.session.Step {
	case domain.StepAddress:
		if err := f.addressGuard(); err != nil {
			return f.snapshot(), err
		}
		f.session.Step = domain.StepPayment
	case domain.StepPayment:
		if err := f.paymentGuard(); err != nil {
			return f.snapshot(), err
		}
		f.session.Step = domain.StepReview
	}
	return f.snapshot(), nil
}

func (f *Flow) Back() (domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return domain.CheckoutSession{}, ErrNotOpen
	}

	switch f.session.Step {
	case domain.StepPayment:
		f.session.Step = domain.StepAddress
	case domain.StepReview:
		f.session.Step = domain.StepPayment
	}
	return f.snapshot(), nil
}

// Submit places the order, priced from the cart as it stands. On success the
// ordered quantities leave the cart and the flow is closed; anything added
// while the request was in flight stays. On failure the cart is untouched and
// the session stays on Review with LastError set.
func (f *Flow) Submit(ctx context.Context) (*domain.Order, error) {
	f.mu.Lock()
	if f.session == nil {
		f.mu.Unlock()
		return nil, ErrNotOpen
	}
	if f.session.IsSubmitting {
		f.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	if f.session.Step != domain.StepReview {
		f.mu.Unlock()
		return nil, apperrors.NewValidationError(ErrMsgReviewStepNeeded, apperrors.ValidationDetail{
			Field:   "step",
			Message: ErrMsgReviewStepNeeded,
		})
	}
	if err := f.paymentGuard(); err != nil {
		f.mu.Unlock()
		return nil, err
	}

	ordered := f.pricing.Apply(f.cart.State())
	if ordered.IsEmpty() {
		f.mu.Unlock()
		return nil, apperrors.NewValidationError(ErrMsgEmptyCart, apperrors.ValidationDetail{
			Field:   "cart",
			Message: ErrMsgEmptyCart,
		})
	}
	req := buildOrderRequest(ordered, f.session)
	f.session.IsSubmitting = true
	f.session.LastError = ""
	sessionID := f.session.ID
	f.mu.Unlock()

	logger := f.logger.With(zap.String("sessionId", sessionID))

	if err := f.requireAuthentication(ctx); err != nil {
		f.mu.Lock()
		if f.session != nil && f.session.ID == sessionID {
			f.session.IsSubmitting = false
		}
		f.mu.Unlock()
		return nil, err
	}

	logger.Info("submitting order",
		zap.String("restaurantId", req.RestaurantID),
		zap.Int("itemCount", len(req.Items)),
		zap.Stringer("total", req.Total),
	)
	order, err := f.orders.PlaceOrder(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil || f.session.ID != sessionID {
		logger.Warn("discarding order response for closed checkout", zap.Bool("succeeded", err == nil))
		return nil, ErrStaleSession
	}

	f.session.IsSubmitting = false
	if err != nil {
		f.session.LastError = ErrMsgSubmitFailed
		if ue, ok := apperrors.IsUpstreamError(err); ok && ue.Message != "" {
			f.session.LastError = ue.Message
		}
		logger.Warn("order submission failed", zap.Error(err))
		return nil, err
	}

	if _, clearErr := f.cart.RemoveOrdered(ctx, ordered.Lines); clearErr != nil {
		logger.Error("order placed but cart could not be cleared", zap.String("orderId", order.ID), zap.Error(clearErr))
	}
	f.session = nil
	logger.Info("order placed", zap.String("orderId", order.ID))
	return order, nil
}

// Close discards the session. An in-flight submission keeps running but its
// result is ignored.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = nil
}

func (f *Flow) Session() (domain.CheckoutSession, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return domain.CheckoutSession{}, false
	}
	return f.snapshot(), true
}

// LoginURL is where an unauthenticated shopper is sent, carrying the intent
// to come back to checkout.
func (f *Flow) LoginURL() string {
	u, err := url.Parse(f.loginURL)
	if err != nil {
		return f.loginURL + "?redirect=checkout"
	}
	q := u.Query()
	q.Set("redirect", "checkout")
	u.RawQuery = q.Encode()
	return u.String()
}

func (f *Flow) requireAuthentication(ctx context.Context) error {
	ok, err := f.auth.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewLoginRequiredError(f.LoginURL())
	}
	return nil
}

func (f *Flow) addressGuard() error {
	if f.cart.State().IsEmpty() {
		return apperrors.NewValidationError(ErrMsgEmptyCart, apperrors.ValidationDetail{
			Field:   "cart",
			Message: ErrMsgEmptyCart,
		})
	}
	if f.session.SelectedAddressID == "" || !f.session.HasAddress(f.session.SelectedAddressID) {
		return apperrors.NewValidationError(ErrMsgAddressRequired, apperrors.ValidationDetail{
			Field:   "addressId",
			Message: ErrMsgAddressRequired,
		})
	}
	return nil
}

func (f *Flow) paymentGuard() error {
	if err := f.addressGuard(); err != nil {
		return err
	}
	if !f.session.PaymentMethod.Valid() {
		return apperrors.NewValidationError(ErrMsgPaymentRequired, apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: ErrMsgPaymentRequired,
		})
	}
	return nil
}

// snapshot copies the session so callers never share its slices.
func (f *Flow) snapshot() domain.CheckoutSession {
	out := *f.session
	if f.session.Addresses != nil {
		out.Addresses = append([]domain.Address(nil), f.session.Addresses...)
	}
	return out
}

func buildOrderRequest(state domain.CartState, session *domain.CheckoutSession) domain.OrderRequest {
	items := make([]domain.OrderRequestItem, len(state.Lines))
	for i, line := range state.Lines {
		customizations := make([]string, len(line.Customizations))
		for j, c := range line.Customizations {
			customizations[j] = c.ID
		}
		items[i] = domain.OrderRequestItem{
			ItemID:              line.ItemID,
			Quantity:            line.Quantity,
			Customizations:      customizations,
			SpecialInstructions: line.SpecialInstructions,
		}
	}

	return domain.OrderRequest{
		RestaurantID:    state.RestaurantID,
		Items:           items,
		DeliveryAddress: session.SelectedAddressID,
		PaymentMethod:   session.PaymentMethod,
		OrderNotes:      session.OrderNotes,
		Subtotal:        state.Subtotal(),
		DeliveryFee:     state.DeliveryFee,
		Tax:             state.Tax,
		Discount:        state.Discount,
		Total:           state.Total(),
	}
}
