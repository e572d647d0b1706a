package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

const (
	ErrMsgOtherRestaurant = "cart already holds items from another restaurant"
	ErrMsgItemIDRequired  = "item id is required"
	ErrMsgRestaurantID    = "item restaurant id is required"
)

// Apply is the cart transition function. It never mutates state; the
// returned state shares no slices with the input.
func Apply(state domain.CartState, cmd Command, ids IDGenerator) (domain.CartState, error) {
	next := state.Clone()

	switch c := cmd.(type) {
	case AddItem:
		return addItem(next, c, ids)

	case RemoveItem:
		return removeLine(next, c.CartID), nil

	case UpdateQuantity:
		if c.Quantity <= 0 {
			return removeLine(next, c.CartID), nil
		}
		if idx := next.LineIndex(c.CartID); idx >= 0 {
			next.Lines[idx].Quantity = c.Quantity
		}
		return next, nil

	case ClearCart:
		return domain.CartState{IsOpen: state.IsOpen}, nil

	case RemoveOrdered:
		return removeOrdered(state, next, c.Lines), nil

	case SetDeliveryFee:
		next.DeliveryFee = nonNegative(c.Fee)
		return next, nil

	case SetTax:
		next.Tax = nonNegative(c.Tax)
		return next, nil

	case SetDiscount:
		next.Discount = nonNegative(c.Discount)
		return next, nil

	case ToggleCart:
		next.IsOpen = !next.IsOpen
		return next, nil

	case OpenCart:
		next.IsOpen = true
		return next, nil

	case CloseCart:
		next.IsOpen = false
		return next, nil

	case LoadCart:
		loaded := c.Snapshot.State()
		loaded.IsOpen = state.IsOpen
		return loaded, nil

	default:
		return state, fmt.Errorf("unknown cart command %T", cmd)
	}
}

func addItem(state domain.CartState, c AddItem, ids IDGenerator) (domain.CartState, error) {
	if c.Item.ID == "" {
		return state, apperrors.NewValidationError(ErrMsgItemIDRequired, apperrors.ValidationDetail{
			Field:   "itemId",
			Message: ErrMsgItemIDRequired,
		})
	}
	if c.Item.RestaurantID == "" {
		return state, apperrors.NewValidationError(ErrMsgRestaurantID, apperrors.ValidationDetail{
			Field:   "restaurantId",
			Message: ErrMsgRestaurantID,
		})
	}
	if !state.IsEmpty() && state.RestaurantID != c.Item.RestaurantID {
		return state, apperrors.NewConflictError(ErrMsgOtherRestaurant)
	}

	quantity := c.Quantity
	if quantity < 1 {
		quantity = 1
	}

	for i, line := range state.Lines {
		if line.Matches(c.Item.ID, c.Customizations) {
			state.Lines[i].Quantity += quantity
			if line.SpecialInstructions == "" {
				state.Lines[i].SpecialInstructions = c.SpecialInstructions
			}
			return state, nil
		}
	}

	state.Lines = append(state.Lines, domain.CartLine{
		CartID:              ids.NewID(),
		ItemID:              c.Item.ID,
		Name:                c.Item.Name,
		UnitPrice:           c.Item.Price,
		Quantity:            quantity,
		Customizations:      append([]domain.Customization(nil), c.Customizations...),
		SpecialInstructions: c.SpecialInstructions,
	})
	state.RestaurantID = c.Item.RestaurantID
	return state, nil
}

func removeOrdered(state, next domain.CartState, ordered []domain.CartLine) domain.CartState {
	for _, o := range ordered {
		idx := next.LineIndex(o.CartID)
		if idx < 0 {
			continue
		}
		if remaining := next.Lines[idx].Quantity - o.Quantity; remaining > 0 {
			next.Lines[idx].Quantity = remaining
			continue
		}
		next = removeLine(next, o.CartID)
	}
	if next.IsEmpty() {
		return domain.CartState{IsOpen: state.IsOpen}
	}
	// the discount was spent on the order
	next.Discount = decimal.Zero
	return next
}

func removeLine(state domain.CartState, cartID string) domain.CartState {
	idx := state.LineIndex(cartID)
	if idx < 0 {
		return state
	}
	state.Lines = append(state.Lines[:idx], state.Lines[idx+1:]...)
	if state.IsEmpty() {
		state.RestaurantID = ""
	}
	return state
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
