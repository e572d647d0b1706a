package dto

type AddItemRequest struct {
	ItemID              string   `json:"itemId"`
	Quantity            int      `json:"quantity"`
	CustomizationIDs    []string `json:"customizationIds"`
	SpecialInstructions string   `json:"specialInstructions"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type SelectAddressRequest struct {
	AddressID string `json:"addressId"`
}

type SelectPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type OrderNotesRequest struct {
	OrderNotes string `json:"orderNotes"`
}
