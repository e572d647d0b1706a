package dto

import (
	"time"

	"storefront/internal/domain"
)

type CheckoutResponse struct {
	TraceID           string           `json:"traceId"`
	SessionID         string           `json:"sessionId"`
	Step              string           `json:"step"`
	Addresses         []domain.Address `json:"addresses"`
	AddressError      string           `json:"addressError,omitempty"`
	SelectedAddressID string           `json:"selectedAddressId,omitempty"`
	PaymentMethod     string           `json:"paymentMethod,omitempty"`
	OrderNotes        string           `json:"orderNotes,omitempty"`
	IsSubmitting      bool             `json:"isSubmitting"`
	LastError         string           `json:"lastError,omitempty"`
	Cart              CartResponse     `json:"cart"`
	Timestamp         time.Time        `json:"timestamp"`
}

func NewCheckoutResponse(traceID string, session domain.CheckoutSession, state domain.CartState) CheckoutResponse {
	addresses := session.Addresses
	if addresses == nil {
		addresses = []domain.Address{}
	}
	return CheckoutResponse{
		TraceID:           traceID,
		SessionID:         session.ID,
		Step:              session.Step.String(),
		Addresses:         addresses,
		AddressError:      session.AddressError,
		SelectedAddressID: session.SelectedAddressID,
		PaymentMethod:     string(session.PaymentMethod),
		OrderNotes:        session.OrderNotes,
		IsSubmitting:      session.IsSubmitting,
		LastError:         session.LastError,
		Cart:              NewCartResponse(traceID, state),
		Timestamp:         time.Now().UTC(),
	}
}

type OrderResponse struct {
	TraceID   string        `json:"traceId"`
	Order     *domain.Order `json:"order"`
	Timestamp time.Time     `json:"timestamp"`
}

type ErrorResponse struct {
	TraceID     string    `json:"traceId"`
	Status      int       `json:"status"`
	Message     string    `json:"message"`
	Code        string    `json:"code"`
	RedirectURL string    `json:"redirectUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
