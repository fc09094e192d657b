package checkout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// Step names one screen of the checkout flow.
type Step string

const (
	StepChooseMode    Step = "choose_mode"
	StepChooseAddress Step = "choose_address"
	StepChoosePayment Step = "choose_payment"
	StepConfirm       Step = "confirm"
)

// StepsFor returns the step sequence for a delivery mode. Pickup skips the
// address step.
func StepsFor(mode enums.DeliveryMode) []Step {
	if mode == enums.DeliveryModePickup {
		return []Step{StepChooseMode, StepChoosePayment, StepConfirm}
	}
	return []Step{StepChooseMode, StepChooseAddress, StepChoosePayment, StepConfirm}
}

// State is the serializable wizard position plus the per-step answers. It
// round-trips through the session store between requests.
type State struct {
	StepIndex     int                 `json:"step_index"`
	DeliveryMode  enums.DeliveryMode  `json:"delivery_mode"`
	AddressID     *uuid.UUID          `json:"address_id,omitempty"`
	AddressText   *string             `json:"address_text,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"payment_method,omitempty"`
	ChangeFor     *money.Cents        `json:"change_for_cents,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
}

// Wizard walks the checkout steps, validating each answer before the flow
// may advance. It holds no I/O; the service layer persists State and feeds
// in current totals.
type Wizard struct {
	state State
}

// NewWizard starts a fresh flow in delivery mode at the first step.
func NewWizard() *Wizard {
	return &Wizard{state: State{DeliveryMode: enums.DeliveryModeDelivery}}
}

// Restore rebuilds a wizard from persisted state, clamping the index into
// the valid range for the stored mode.
func Restore(state State) *Wizard {
	if !state.DeliveryMode.IsValid() {
		state.DeliveryMode = enums.DeliveryModeDelivery
	}
	steps := StepsFor(state.DeliveryMode)
	if state.StepIndex < 0 {
		state.StepIndex = 0
	}
	if state.StepIndex >= len(steps) {
		state.StepIndex = len(steps) - 1
	}
	return &Wizard{state: state}
}

// State returns a copy for persistence.
func (w *Wizard) State() State { return w.state }

// Steps returns the sequence for the current mode.
func (w *Wizard) Steps() []Step { return StepsFor(w.state.DeliveryMode) }

// Current returns the step the user is on.
func (w *Wizard) Current() Step {
	return w.Steps()[w.state.StepIndex]
}

// IsTerminal reports whether the flow sits on the confirm step.
func (w *Wizard) IsTerminal() bool {
	return w.Current() == StepConfirm
}

// SetDeliveryMode switches the mode in place. Later-step answers survive;
// the wizard stays on the same named step when it still exists, otherwise
// the index clamps to the shortened sequence.
func (w *Wizard) SetDeliveryMode(mode enums.DeliveryMode) error {
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery mode")
	}
	current := w.Current()
	w.state.DeliveryMode = mode
	steps := w.Steps()
	for i, step := range steps {
		if step == current {
			w.state.StepIndex = i
			return nil
		}
	}
	if w.state.StepIndex >= len(steps) {
		w.state.StepIndex = len(steps) - 1
	}
	return nil
}

// SetAddress records the chosen delivery address and its display text.
func (w *Wizard) SetAddress(id uuid.UUID, displayText string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "escolha um endereço de entrega")
	}
	w.state.AddressID = &id
	w.state.AddressText = &displayText
	return nil
}

// SetPayment records the payment answer. ChangeFor only makes sense for
// cash and is validated against the total on Next.
func (w *Wizard) SetPayment(method enums.PaymentMethod, changeFor *money.Cents) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "forma de pagamento inválida")
	}
	w.state.PaymentMethod = method
	if method != enums.PaymentMethodCash {
		changeFor = nil
	}
	w.state.ChangeFor = changeFor
	return nil
}

// SetNotes attaches free-form order notes.
func (w *Wizard) SetNotes(notes string) {
	if notes == "" {
		w.state.Notes = nil
		return
	}
	w.state.Notes = &notes
}

// NextInput carries the context the per-step validation needs.
type NextInput struct {
	// Total is the current cart total, checked against ChangeFor on the
	// payment step.
	Total money.Cents
	// HasAddresses is false when the user has no saved address yet; the
	// address step then blocks until one is created.
	HasAddresses bool
}

// Next validates the current step's answer and advances. Calling Next on
// the confirm step is a programmer error: the terminal action is Commit.
func (w *Wizard) Next(input NextInput) error {
	switch w.Current() {
	case StepChooseMode:
		// The mode always holds a valid value.
	case StepChooseAddress:
		if !input.HasAddresses {
			return pkgerrors.New(pkgerrors.CodeValidation, "cadastre um endereço para continuar")
		}
		if w.state.AddressID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "escolha um endereço de entrega")
		}
	case StepChoosePayment:
		if err := w.validatePayment(input.Total); err != nil {
			return err
		}
	case StepConfirm:
		return pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("next called on terminal step %q", StepConfirm))
	}
	w.state.StepIndex++
	return nil
}

// Back moves one step towards the cart. Returns true when the flow left
// checkout entirely (back from the first step).
func (w *Wizard) Back() bool {
	if w.state.StepIndex == 0 {
		return true
	}
	w.state.StepIndex--
	return false
}

func (w *Wizard) validatePayment(total money.Cents) error {
	if !w.state.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "escolha uma forma de pagamento")
	}
	if w.state.PaymentMethod == enums.PaymentMethodCash && w.state.ChangeFor != nil && *w.state.ChangeFor < total {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("troco para %s é menor que o total %s", w.state.ChangeFor, total)).
			WithDetails(map[string]any{"change_for_cents": *w.state.ChangeFor, "total_cents": total})
	}
	return nil
}
