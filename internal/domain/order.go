package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Address struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
	IsDefault     bool   `json:"isDefault"`
}

// DefaultAddress returns the first default-flagged address.
func DefaultAddress(addresses []Address) (Address, bool) {
	for _, a := range addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

type OrderItem struct {
	ItemID              string          `json:"itemId"`
	Name                string          `json:"name"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	Customizations      []Customization `json:"customizations,omitempty"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

// Order is owned by the backend and read-only here.
type Order struct {
	ID                    string          `json:"id"`
	RestaurantID          string          `json:"restaurantId,omitempty"`
	Items                 []OrderItem     `json:"items"`
	DeliveryAddress       Address         `json:"deliveryAddress"`
	PaymentMethod         string          `json:"paymentMethod"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	DeliveryFee           decimal.Decimal `json:"deliveryFee"`
	Tax                   decimal.Decimal `json:"tax"`
	Discount              decimal.Decimal `json:"discount"`
	Total                 decimal.Decimal `json:"total"`
	Status                string          `json:"status"`
	EstimatedDeliveryTime time.Time       `json:"estimatedDeliveryTime"`
}

const (
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusReady          = "ready"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

type OrderRequestItem struct {
	ItemID              string   `json:"itemId"`
	Quantity            int      `json:"quantity"`
	Customizations      []string `json:"customizations"`
	SpecialInstructions string   `json:"specialInstructions,omitempty"`
}

// OrderRequest is the order-placement payload sent to the backend.
type OrderRequest struct {
	RestaurantID    string             `json:"restaurantId"`
	Items           []OrderRequestItem `json:"items"`
	DeliveryAddress string             `json:"deliveryAddress"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	OrderNotes      string             `json:"orderNotes,omitempty"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	DeliveryFee     decimal.Decimal    `json:"deliveryFee"`
	Tax             decimal.Decimal    `json:"tax"`
	Discount        decimal.Decimal    `json:"discount"`
	Total           decimal.Decimal    `json:"total"`
}
