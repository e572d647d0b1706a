package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

var (
	pizza  = domain.MenuItem{ID: "pizza", RestaurantID: "r1", Name: "Margherita Pizza", Price: domain.Money("18.99")}
	coffee = domain.MenuItem{ID: "coffee", RestaurantID: "r1", Name: "Coffee", Price: domain.Money("3.99")}
	sushi  = domain.MenuItem{ID: "sushi", RestaurantID: "r2", Name: "Salmon Roll", Price: domain.Money("12.50")}

	extraCheese = domain.Customization{ID: "cheese", Name: "Extra cheese", Price: domain.Money("1.50")}
	olives      = domain.Customization{ID: "olives", Name: "Olives", Price: domain.Money("0.75")}
)

// Helper to apply a sequence of commands, failing the test on any error
func applyAll(t *testing.T, ids IDGenerator, cmds ...Command) domain.CartState {
	t.Helper()
	state := domain.CartState{}
	for _, cmd := range cmds {
		var err error
		state, err = Apply(state, cmd, ids)
		require.NoError(t, err)
	}
	return state
}

func TestApply_AddItem_NewLine(t *testing.T) {
	state := applyAll(t, &CounterGenerator{}, AddItem{Item: pizza, Quantity: 2})

	require.Len(t, state.Lines, 1)
	assert.Equal(t, "1", state.Lines[0].CartID)
	assert.Equal(t, "pizza", state.Lines[0].ItemID)
	assert.Equal(t, 2, state.Lines[0].Quantity)
	assert.Equal(t, "r1", state.RestaurantID)
}

func TestApply_AddItem_SameItemSameCustomizationsMerges(t *testing.T) {
	state := applyAll(t, &CounterGenerator{},
		AddItem{Item: pizza, Quantity: 1, Customizations: []domain.Customization{extraCheese, olives}},
		AddItem{Item: pizza, Quantity: 2, Customizations: []domain.Customization{olives, extraCheese}},
	)

	require.Len(t, state.Lines, 1)
	assert.Equal(t, 3, state.Lines[0].Quantity)
}

func TestApply_AddItem_DifferentCustomizationsAreDistinct(t *testing.T) {
	state := applyAll(t, &CounterGenerator{},
		AddItem{Item: pizza, Quantity: 1},
		AddItem{Item: pizza, Quantity: 1, Customizations: []domain.Customization{extraCheese}},
	)

	require.Len(t, state.Lines, 2)
	assert.NotEqual(t, state.Lines[0].CartID, state.Lines[1].CartID)
	assert.Equal(t, "39.48", state.Subtotal().String())
}

func TestApply_AddItem_QuantityClampedToOne(t *testing.T) {
	state := applyAll(t, &CounterGenerator{}, AddItem{Item: coffee, Quantity: 0})

	assert.Equal(t, 1, state.Lines[0].Quantity)
}

func TestApply_AddItem_OtherRestaurantRejected(t *testing.T) {
	ids := &CounterGenerator{}
	state := applyAll(t, ids, AddItem{Item: pizza, Quantity: 1})

	next, err := Apply(state, AddItem{Item: sushi, Quantity: 1}, ids)

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, state, next)
}

func TestApply_AddItem_OtherRestaurantAllowedAfterEmptying(t *testing.T) {
	state := applyAll(t, &CounterGenerator{},
		AddItem{Item: pizza, Quantity: 1},
		RemoveItem{CartID: "1"},
		AddItem{Item: sushi, Quantity: 1},
	)

	assert.Equal(t, "r2", state.RestaurantID)
	assert.Len(t, state.Lines, 1)
}

func TestApply_AddItem_MissingIDs(t *testing.T) {
	_, err := Apply(domain.CartState{}, AddItem{Item: domain.MenuItem{RestaurantID: "r1"}}, &CounterGenerator{})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)

	_, err = Apply(domain.CartState{}, AddItem{Item: domain.MenuItem{ID: "x"}}, &CounterGenerator{})
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestApply_UpdateQuantity(t *testing.T) {
	state := applyAll(t, &CounterGenerator{},
		AddItem{Item: pizza, Quantity: 1},
		UpdateQuantity{CartID: "1", Quantity: 5},
	)

	assert.Equal(t, 5, state.Lines[0].Quantity)
	assert.Equal(t, 5, state.ItemCount())
}

func TestApply_UpdateQuantityZeroEqualsRemove(t *testing.T) {
	ids := &CounterGenerator{}
	base := applyAll(t, ids, AddItem{Item: pizza, Quantity: 1}, AddItem{Item: coffee, Quantity: 2})

	viaUpdate, err := Apply(base, UpdateQuantity{CartID: "2", Quantity: 0}, ids)
	require.NoError(t, err)
	viaRemove, err := Apply(base, RemoveItem{CartID: "2"}, ids)
	require.NoError(t, err)

	assert.Equal(t, viaRemove, viaUpdate)
	assert.Len(t, viaUpdate.Lines, 1)
}

func TestApply_UpdateQuantityUnknownCartIDIsNoop(t *testing.T) {
	ids := &CounterGenerator{}
	base := applyAll(t, ids, AddItem{Item: pizza, Quantity: 2})

	next, err := Apply(base, UpdateQuantity{CartID: "missing", Quantity: 7}, ids)
	require.NoError(t, err)
	assert.Equal(t, base, next)

	next, err = Apply(base, UpdateQuantity{CartID: "missing", Quantity: 0}, ids)
	require.NoError(t, err)
	assert.Equal(t, base, next)
}

func TestApply_RemoveLastLineResetsRestaurant(t *testing.T) {
	state := applyAll(t, &CounterGenerator{},
		AddItem{Item: pizza, Quantity: 1},
		AddItem{Item: coffee, Quantity: 1},
		RemoveItem{CartID: "1"},
	)
	assert.Equal(t, "r1", state.RestaurantID)

	state, err := Apply(state, RemoveItem{CartID: "2"}, &CounterGenerator{})
	require.NoError(t, err)
	assert.Empty(t, state.Lines)
	assert.Equal(t, "", state.RestaurantID)
}

func TestApply_ClearCartKeepsOnlyVisibility(t *testing.T) {
	state := applyAll(t, &CounterGenerator{},
		AddItem{Item: pizza, Quantity: 1},
		SetDeliveryFee{Fee: domain.Money("2")},
		SetTax{Tax: domain.Money("1.5")},
		SetDiscount{Discount: domain.Money("1")},
		OpenCart{},
		ClearCart{},
	)

	assert.Equal(t, domain.CartState{IsOpen: true}, state)
}

func TestApply_PricingScenario(t *testing.T) {
	state := applyAll(t, &CounterGenerator{},
		AddItem{Item: pizza, Quantity: 2},
		AddItem{Item: coffee, Quantity: 1},
		SetDeliveryFee{Fee: domain.Money("2.00")},
		SetTax{Tax: domain.Money("1.50")},
		SetDiscount{Discount: decimal.Zero},
	)

	assert.Equal(t, "41.97", state.Subtotal().String())
	assert.Equal(t, "45.47", state.Total().String())
}

func TestApply_NegativePricingClamped(t *testing.T) {
	state := applyAll(t, &CounterGenerator{}, SetDeliveryFee{Fee: domain.Money("-3")}, SetTax{Tax: domain.Money("-1")}, SetDiscount{Discount: domain.Money("-2")})

	assert.True(t, state.DeliveryFee.IsZero())
	assert.True(t, state.Tax.IsZero())
	assert.True(t, state.Discount.IsZero())
}

func TestApply_VisibilityCommands(t *testing.T) {
	ids := &CounterGenerator{}
	base := applyAll(t, ids, AddItem{Item: pizza, Quantity: 1})

	tests := []struct {
		name   string
		start  bool
		cmd    Command
		isOpen bool
	}{
		{"toggle closed", false, ToggleCart{}, true},
		{"toggle open", true, ToggleCart{}, false},
		{"open", false, OpenCart{}, true},
		{"close", true, CloseCart{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := base.Clone()
			start.IsOpen = tt.start

			next, err := Apply(start, tt.cmd, ids)
			require.NoError(t, err)
			assert.Equal(t, tt.isOpen, next.IsOpen)
			assert.Equal(t, start.Total(), next.Total())
			assert.Equal(t, start.Lines, next.Lines)
		})
	}
}

func TestApply_LoadCartKeepsVisibility(t *testing.T) {
	restaurant := "r1"
	snap := Snapshot{
		Lines:        []domain.CartLine{{CartID: "a", ItemID: "pizza", UnitPrice: domain.Money("18.99"), Quantity: 1}},
		RestaurantID: &restaurant,
		DeliveryFee:  domain.Money("2"),
	}

	next, err := Apply(domain.CartState{IsOpen: true}, LoadCart{Snapshot: snap}, &CounterGenerator{})
	require.NoError(t, err)
	assert.True(t, next.IsOpen)
	assert.Equal(t, "r1", next.RestaurantID)
	assert.Equal(t, "2", next.DeliveryFee.String())
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	ids := &CounterGenerator{}
	base := applyAll(t, ids, AddItem{Item: pizza, Quantity: 1}, AddItem{Item: coffee, Quantity: 1})
	before := base.Clone()

	_, err := Apply(base, UpdateQuantity{CartID: "1", Quantity: 9}, ids)
	require.NoError(t, err)
	_, err = Apply(base, RemoveItem{CartID: "1"}, ids)
	require.NoError(t, err)

	assert.Equal(t, before, base)
}

func TestApply_RandomSequencesKeepDerivedTotalsConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := &CounterGenerator{}
	items := []domain.MenuItem{pizza, coffee}
	custom := [][]domain.Customization{nil, {extraCheese}, {olives, extraCheese}}

	state := domain.CartState{}
	for i := 0; i < 500; i++ {
		var cmd Command
		switch rng.Intn(4) {
		case 0, 1:
			cmd = AddItem{Item: items[rng.Intn(len(items))], Quantity: 1 + rng.Intn(3), Customizations: custom[rng.Intn(len(custom))]}
		case 2:
			cmd = UpdateQuantity{CartID: pickCartID(rng, state), Quantity: rng.Intn(4)}
		case 3:
			cmd = RemoveItem{CartID: pickCartID(rng, state)}
		}

		var err error
		state, err = Apply(state, cmd, ids)
		require.NoError(t, err)

		sumQty := 0
		subtotal := decimal.Zero
		for _, l := range state.Lines {
			assert.GreaterOrEqual(t, l.Quantity, 1)
			sumQty += l.Quantity
			subtotal = subtotal.Add(l.LineTotal())
		}
		assert.Equal(t, sumQty, state.ItemCount())
		assert.True(t, subtotal.Equal(state.Subtotal()))
		assert.Equal(t, state.IsEmpty(), state.RestaurantID == "")
	}
}

func pickCartID(rng *rand.Rand, state domain.CartState) string {
	if len(state.Lines) == 0 || rng.Intn(5) == 0 {
		return "unknown"
	}
	return state.Lines[rng.Intn(len(state.Lines))].CartID
}

func TestApply_RemoveOrdered(t *testing.T) {
	ids := &CounterGenerator{}
	ordered := applyAll(t, ids,
		AddItem{Item: pizza, Quantity: 2},
		AddItem{Item: coffee, Quantity: 1},
		SetDeliveryFee{Fee: domain.Money("2")},
		SetDiscount{Discount: domain.Money("5")},
	)

	tests := []struct {
		name     string
		current  []Command
		expected map[string]int
	}{
		{"nothing changed", nil, map[string]int{}},
		{"new line kept", []Command{AddItem{Item: domain.MenuItem{ID: "water", RestaurantID: "r1", Price: domain.Money("1")}, Quantity: 1}}, map[string]int{"water": 1}},
		{"extra quantity kept", []Command{UpdateQuantity{CartID: "2", Quantity: 3}}, map[string]int{"coffee": 2}},
		{"lowered quantity removed", []Command{UpdateQuantity{CartID: "1", Quantity: 1}}, map[string]int{}},
		{"removed line ignored", []Command{RemoveItem{CartID: "1"}}, map[string]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := ordered.Clone()
			for _, cmd := range tt.current {
				var err error
				current, err = Apply(current, cmd, ids)
				require.NoError(t, err)
			}

			next, err := Apply(current, RemoveOrdered{Lines: ordered.Lines}, ids)
			require.NoError(t, err)

			remaining := map[string]int{}
			for _, l := range next.Lines {
				remaining[l.ItemID] = l.Quantity
			}
			assert.Equal(t, tt.expected, remaining)
			if next.IsEmpty() {
				assert.Equal(t, domain.CartState{}, next)
			} else {
				assert.Equal(t, "r1", next.RestaurantID)
				assert.True(t, next.Discount.IsZero())
				assert.Equal(t, "2", next.DeliveryFee.String())
			}
		})
	}
}
