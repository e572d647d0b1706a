package domain

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"
)

type Customization struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// MenuItem is the catalogue entry a cart line is created from. Customizations
// lists the options the shopper may pick from.
type MenuItem struct {
	ID             string          `json:"id"`
	RestaurantID   string          `json:"restaurantId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	IsAvailable    bool            `json:"isAvailable"`
	Customizations []Customization `json:"customizations,omitempty"`
}

type CartLine struct {
	CartID              string          `json:"cartId"`
	ItemID              string          `json:"itemId"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	Quantity            int             `json:"quantity"`
	Customizations      []Customization `json:"customizations"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

// UnitTotal is the unit price plus every selected customization.
func (l CartLine) UnitTotal() decimal.Decimal {
	total := l.UnitPrice
	for _, c := range l.Customizations {
		total = total.Add(c.Price)
	}
	return total
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitTotal().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Matches reports whether the line has the given identity: same item and the
// same customization set, order and duplicates ignored.
func (l CartLine) Matches(itemID string, customizations []Customization) bool {
	return l.ItemID == itemID && SameCustomizations(l.Customizations, customizations)
}

func SameCustomizations(a, b []Customization) bool {
	return customizationSet(a).Equal(customizationSet(b))
}

func customizationSet(cs []Customization) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSetWithSize[string](len(cs))
	for _, c := range cs {
		set.Add(c.ID)
	}
	return set
}

// CartState is the full cart. RestaurantID is empty iff Lines is empty.
type CartState struct {
	Lines        []CartLine
	RestaurantID string
	DeliveryFee  decimal.Decimal
	Tax          decimal.Decimal
	Discount     decimal.Decimal
	IsOpen       bool
}

func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s CartState) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range s.Lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	return subtotal
}

func (s CartState) Total() decimal.Decimal {
	total := s.Subtotal().Add(s.DeliveryFee).Add(s.Tax).Sub(s.Discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (s CartState) ItemCount() int {
	count := 0
	for _, l := range s.Lines {
		count += l.Quantity
	}
	return count
}

// LineIndex returns the position of the line with cartID, or -1.
func (s CartState) LineIndex(cartID string) int {
	for i, l := range s.Lines {
		if l.CartID == cartID {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no slices with s.
func (s CartState) Clone() CartState {
	out := s
	if s.Lines == nil {
		return out
	}
	out.Lines = make([]CartLine, len(s.Lines))
	for i, l := range s.Lines {
		if l.Customizations != nil {
			l.Customizations = append(make([]Customization, 0, len(l.Customizations)), l.Customizations...)
		}
		out.Lines[i] = l
	}
	return out
}
