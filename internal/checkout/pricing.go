package checkout

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// PricingPolicy derives the delivery fee and tax for a cart subtotal. A zero
// FreeDeliveryThreshold disables free delivery.
type PricingPolicy struct {
	DeliveryFee           decimal.Decimal
	TaxRate               decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

func (p PricingPolicy) DeliveryFeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if p.FreeDeliveryThreshold.IsPositive() && subtotal.GreaterThanOrEqual(p.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return p.DeliveryFee
}

// TaxFor is rounded to cents.
func (p PricingPolicy) TaxFor(subtotal decimal.Decimal) decimal.Decimal {
	return domain.RoundCents(subtotal.Mul(p.TaxRate))
}

// Apply returns state with the policy's delivery fee and tax. An empty cart
// is returned unchanged.
func (p PricingPolicy) Apply(state domain.CartState) domain.CartState {
	if state.IsEmpty() {
		return state
	}
	subtotal := state.Subtotal()
	state.DeliveryFee = p.DeliveryFeeFor(subtotal)
	state.Tax = p.TaxFor(subtotal)
	return state
}
