package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// Snapshot is the durable form of a cart. The UI visibility flag is not part
// of it.
type Snapshot struct {
	Lines        []domain.CartLine `json:"lines"`
	RestaurantID *string           `json:"restaurantId"`
	DeliveryFee  decimal.Decimal   `json:"deliveryFee"`
	Tax          decimal.Decimal   `json:"tax"`
	Discount     decimal.Decimal   `json:"discount"`
}

func SnapshotOf(state domain.CartState) Snapshot {
	snap := Snapshot{
		Lines:       state.Clone().Lines,
		DeliveryFee: state.DeliveryFee,
		Tax:         state.Tax,
		Discount:    state.Discount,
	}
	if snap.Lines == nil {
		snap.Lines = []domain.CartLine{}
	}
	if state.RestaurantID != "" {
		id := state.RestaurantID
		snap.RestaurantID = &id
	}
	return snap
}

func (s Snapshot) State() domain.CartState {
	state := domain.CartState{
		Lines:       s.Lines,
		DeliveryFee: s.DeliveryFee,
		Tax:         s.Tax,
		Discount:    s.Discount,
	}
	if s.RestaurantID != nil {
		state.RestaurantID = *s.RestaurantID
	}
	return state.Clone()
}

// Validate checks the invariants a loaded snapshot must hold before it may
// replace the in-memory cart.
func (s Snapshot) Validate() error {
	hasRestaurant := s.RestaurantID != nil && *s.RestaurantID != ""
	if hasRestaurant != (len(s.Lines) > 0) {
		return fmt.Errorf("%w: restaurantId does not match lines", ErrMalformedSnapshot)
	}
	if s.DeliveryFee.IsNegative() || s.Tax.IsNegative() || s.Discount.IsNegative() {
		return fmt.Errorf("%w: negative pricing field", ErrMalformedSnapshot)
	}

	seen := make(map[string]struct{}, len(s.Lines))
	for i, l := range s.Lines {
		if l.CartID == "" || l.ItemID == "" {
			return fmt.Errorf("%w: line %d has no id", ErrMalformedSnapshot, i)
		}
		if _, dup := seen[l.CartID]; dup {
			return fmt.Errorf("%w: duplicate cartId %q", ErrMalformedSnapshot, l.CartID)
		}
		seen[l.CartID] = struct{}{}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: line %q has quantity %d", ErrMalformedSnapshot, l.CartID, l.Quantity)
		}
	}
	return nil
}

func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding cart snapshot: %w", err)
	}
	return data, nil
}

func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
