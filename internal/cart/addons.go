package cart

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/types"
)

// OptionPick is the raw customer choice for one add-on option.
type OptionPick struct {
	OptionID uuid.UUID
	Quantity int
}

// BuildSelections resolves the customer's picks against the product's add-on
// groups, enforcing every group rule:
//   - options must exist and be active
//   - a group with MaxSelections == 1 is single-choice: the last pick wins
//   - otherwise the sum of quantities in the group is capped at MaxSelections
//   - required groups (or MinSelections > 0) must be satisfied
func BuildSelections(groups []models.AddonGroup, picks []OptionPick) (types.AddonSelections, error) {
	byOption := make(map[uuid.UUID]int, len(picks))
	for _, pick := range picks {
		if pick.Quantity <= 0 {
			continue
		}
		byOption[pick.OptionID] += pick.Quantity
	}

	var selections types.AddonSelections
	for _, group := range groups {
		groupSelections, err := resolveGroup(group, byOption)
		if err != nil {
			return nil, err
		}
		selections = append(selections, groupSelections...)
	}

	// Anything left over references an option outside this product.
	for _, pick := range picks {
		if pick.Quantity <= 0 {
			continue
		}
		if _, unconsumed := byOption[pick.OptionID]; unconsumed {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "add-on option does not belong to this product")
		}
	}

	return selections, nil
}

func resolveGroup(group models.AddonGroup, byOption map[uuid.UUID]int) (types.AddonSelections, error) {
	var selections types.AddonSelections
	total := 0

	for _, option := range group.Options {
		qty, picked := byOption[option.ID]
		if !picked {
			continue
		}
		delete(byOption, option.ID)
		if !option.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("opção %q não está disponível", option.Name))
		}
		if group.MaxSelections == 1 {
			// Single-choice group: the newest pick replaces any prior one.
			qty = 1
			selections = selections[:0]
			total = 0
		}
		selections = append(selections, types.AddonSelection{
			GroupID:    group.ID,
			GroupName:  group.Name,
			OptionID:   option.ID,
			OptionName: option.Name,
			UnitPrice:  option.PriceCents,
			Quantity:   qty,
		})
		total += qty
	}

	if group.MaxSelections > 1 && total > group.MaxSelections {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("escolha no máximo %d em %q", group.MaxSelections, group.Name)).
			WithDetails(map[string]any{"group_id": group.ID, "max_selections": group.MaxSelections})
	}

	minRequired := group.MinSelections
	if group.IsRequired && minRequired < 1 {
		minRequired = 1
	}
	if total < minRequired {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("escolha pelo menos %d em %q", minRequired, group.Name)).
			WithDetails(map[string]any{"group_id": group.ID, "min_selections": minRequired})
	}

	return selections, nil
}
