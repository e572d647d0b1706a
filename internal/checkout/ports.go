package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Cart is the slice of the cart store the flow reads and writes.
type Cart interface {
	State() domain.CartState
	RemoveOrdered(ctx context.Context, lines []domain.CartLine) (domain.CartState, error)
	SetDeliveryFee(ctx context.Context, fee decimal.Decimal) (domain.CartState, error)
	SetTax(ctx context.Context, tax decimal.Decimal) (domain.CartState, error)
}

type AddressSource interface {
	ListAddresses(ctx context.Context) ([]domain.Address, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
}

type Authenticator interface {
	IsAuthenticated(ctx context.Context) (bool, error)
}
