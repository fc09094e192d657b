package types

import (
	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// AddonSelection is the frozen choice of one add-on option inside a cart
// line. Quantity is per unit of the parent line; the sum of quantities in a
// group is bounded by the group's max selections.
type AddonSelection struct {
	GroupID    uuid.UUID   `json:"group_id"`
	GroupName  string      `json:"group_name"`
	OptionID   uuid.UUID   `json:"option_id"`
	OptionName string      `json:"option_name"`
	UnitPrice  money.Cents `json:"unit_price_cents"`
	Quantity   int         `json:"quantity"`
}

// AddonSelections is stored as a JSONB snapshot on cart lines and order line
// items so later catalog edits never alter history.
type AddonSelections []AddonSelection

// UnitPriceSum returns the add-on price added to one unit of the parent line.
func (s AddonSelections) UnitPriceSum() money.Cents {
	var sum money.Cents
	for _, sel := range s {
		sum += sel.UnitPrice.Mul(sel.Quantity)
	}
	return sum
}
