package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type CartLineDTO struct {
	CartID              string                 `json:"cartId"`
	ItemID              string                 `json:"itemId"`
	Name                string                 `json:"name"`
	UnitPrice           decimal.Decimal        `json:"unitPrice"`
	Quantity            int                    `json:"quantity"`
	Customizations      []domain.Customization `json:"customizations"`
	SpecialInstructions string                 `json:"specialInstructions,omitempty"`
	LineTotal           decimal.Decimal        `json:"lineTotal"`
}

// CartResponse carries the cart with its derived totals. RestaurantID is null
// for an empty cart.
type CartResponse struct {
	TraceID      string          `json:"traceId"`
	Lines        []CartLineDTO   `json:"lines"`
	RestaurantID *string         `json:"restaurantId"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	Tax          decimal.Decimal `json:"tax"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"itemCount"`
	IsOpen       bool            `json:"isOpen"`
	Timestamp    time.Time       `json:"timestamp"`
}

func NewCartResponse(traceID string, state domain.CartState) CartResponse {
	lines := make([]CartLineDTO, len(state.Lines))
	for i, l := range state.Lines {
		customizations := l.Customizations
		if customizations == nil {
			customizations = []domain.Customization{}
		}
		lines[i] = CartLineDTO{
			CartID:              l.CartID,
			ItemID:              l.ItemID,
			Name:                l.Name,
			UnitPrice:           l.UnitPrice,
			Quantity:            l.Quantity,
			Customizations:      customizations,
			SpecialInstructions: l.SpecialInstructions,
			LineTotal:           l.LineTotal(),
		}
	}

	var restaurantID *string
	if state.RestaurantID != "" {
		id := state.RestaurantID
		restaurantID = &id
	}

	return CartResponse{
		TraceID:      traceID,
		Lines:        lines,
		RestaurantID: restaurantID,
		Subtotal:     state.Subtotal(),
		DeliveryFee:  state.DeliveryFee,
		Tax:          state.Tax,
		Discount:     state.Discount,
		Total:        state.Total(),
		ItemCount:    state.ItemCount(),
		IsOpen:       state.IsOpen,
		Timestamp:    time.Now().UTC(),
	}
}
