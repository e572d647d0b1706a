package domain

type CheckoutStep int

const (
	StepAddress CheckoutStep = iota
	StepPayment
	StepReview
)

func (s CheckoutStep) String() string {
	switch s {
	case StepAddress:
		return "ADDRESS"
	case StepPayment:
		return "PAYMENT"
	case StepReview:
		return "REVIEW"
	default:
		return "UNKNOWN"
	}
}

type PaymentMethod string

const (
	PaymentCard  PaymentMethod = "card"
	PaymentCash  PaymentMethod = "cash"
	PaymentMpesa PaymentMethod = "mpesa"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCard, PaymentCash, PaymentMpesa:
		return true
	}
	return false
}

// CheckoutSession lives from checkout open until close or successful
// submission. ID changes on every open.
type CheckoutSession struct {
	ID                string
	Step              CheckoutStep
	Addresses         []Address
	AddressError      string
	SelectedAddressID string
	PaymentMethod     PaymentMethod
	OrderNotes        string
	IsSubmitting      bool
	LastError         string
}

func (s CheckoutSession) HasAddress(id string) bool {
	for _, a := range s.Addresses {
		if a.ID == id {
			return true
		}
	}
	return false
}
