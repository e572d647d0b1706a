package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Command is a cart mutation. The set of commands is closed: only types in
// this package implement it, and Apply switches over all of them.
type Command interface {
	isCommand()
}

type AddItem struct {
	Item                domain.MenuItem
	Quantity            int
	Customizations      []domain.Customization
	SpecialInstructions string
}

type RemoveItem struct {
	CartID string
}

type UpdateQuantity struct {
	CartID   string
	Quantity int
}

type ClearCart struct{}

// RemoveOrdered takes the quantities of a placed order out of the cart.
// Lines added after the order was built are kept.
type RemoveOrdered struct {
	Lines []domain.CartLine
}

type SetDeliveryFee struct {
	Fee decimal.Decimal
}

type SetTax struct {
	Tax decimal.Decimal
}

type SetDiscount struct {
	Discount decimal.Decimal
}

type ToggleCart struct{}

type OpenCart struct{}

type CloseCart struct{}

// LoadCart replaces the persisted part of the state with a stored snapshot.
type LoadCart struct {
	Snapshot Snapshot
}

func (AddItem) isCommand()        {}
func (RemoveItem) isCommand()     {}
func (UpdateQuantity) isCommand() {}
func (ClearCart) isCommand()      {}
func (RemoveOrdered) isCommand()  {}
func (SetDeliveryFee) isCommand() {}
func (SetTax) isCommand()         {}
func (SetDiscount) isCommand()    {}
func (ToggleCart) isCommand()     {}
func (OpenCart) isCommand()       {}
func (CloseCart) isCommand()      {}
func (LoadCart) isCommand()       {}

// persists reports whether the command changes snapshot fields.
func persists(cmd Command) bool {
	switch cmd.(type) {
	case ToggleCart, OpenCart, CloseCart, LoadCart:
		return false
	default:
		return true
	}
}

func commandName(cmd Command) string {
	switch cmd.(type) {
	case AddItem:
		return "ADD_ITEM"
	case RemoveItem:
		return "REMOVE_ITEM"
	case UpdateQuantity:
		return "UPDATE_QUANTITY"
	case ClearCart:
		return "CLEAR_CART"
	case RemoveOrdered:
		return "REMOVE_ORDERED"
	case SetDeliveryFee:
		return "SET_DELIVERY_FEE"
	case SetTax:
		return "SET_TAX"
	case SetDiscount:
		return "SET_DISCOUNT"
	case ToggleCart:
		return "TOGGLE_CART"
	case OpenCart:
		return "OPEN_CART"
	case CloseCart:
		return "CLOSE_CART"
	case LoadCart:
		return "LOAD_CART"
	default:
		return "UNKNOWN"
	}
}
