package checkout

import (
	"testing"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

func centsPtr(v money.Cents) *money.Cents { return &v }

func TestStepSequencePerMode(t *testing.T) {
	t.Parallel()

	delivery := StepsFor(enums.DeliveryModeDelivery)
	if len(delivery) != 4 || delivery[1] != StepChooseAddress {
		t.Fatalf("delivery steps = %v", delivery)
	}
	pickup := StepsFor(enums.DeliveryModePickup)
	if len(pickup) != 3 {
		t.Fatalf("pickup steps = %v", pickup)
	}
	for _, step := range pickup {
		if step == StepChooseAddress {
			t.Fatal("pickup sequence must not contain the address step")
		}
	}
}

func TestDeliveryFlowHappyPath(t *testing.T) {
	t.Parallel()

	w := NewWizard()
	if w.Current() != StepChooseMode {
		t.Fatalf("start step = %s", w.Current())
	}

	if err := w.Next(NextInput{}); err != nil {
		t.Fatalf("next from mode: %v", err)
	}
	if err := w.SetAddress(uuid.New(), "Rua das Flores, 123"); err != nil {
		t.Fatalf("SetAddress: %v", err)
	}
	if err := w.Next(NextInput{HasAddresses: true}); err != nil {
		t.Fatalf("next from address: %v", err)
	}
	if err := w.SetPayment(enums.PaymentMethodPix, nil); err != nil {
		t.Fatalf("SetPayment: %v", err)
	}
	if err := w.Next(NextInput{Total: 5000}); err != nil {
		t.Fatalf("next from payment: %v", err)
	}
	if !w.IsTerminal() {
		t.Fatalf("expected confirm step, on %s", w.Current())
	}
}

func TestAddressStepBlocksWithoutSelection(t *testing.T) {
	t.Parallel()

	w := NewWizard()
	w.Next(NextInput{})

	if err := w.Next(NextInput{HasAddresses: true}); err == nil {
		t.Fatal("address step must require a selection")
	}
	if err := w.Next(NextInput{HasAddresses: false}); err == nil {
		t.Fatal("address step must block when no addresses exist")
	}
	if w.Current() != StepChooseAddress {
		t.Fatalf("rejection must not advance, on %s", w.Current())
	}
}

func TestCashChangeForBelowTotal(t *testing.T) {
	t.Parallel()

	w := NewWizard()
	w.SetDeliveryMode(enums.DeliveryModePickup)
	w.Next(NextInput{})
	w.SetPayment(enums.PaymentMethodCash, centsPtr(3000))

	err := w.Next(NextInput{Total: 5000})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation rejection, got %v", err)
	}
	if w.Current() != StepChoosePayment {
		t.Fatal("rejection must not advance")
	}

	w.SetPayment(enums.PaymentMethodCash, centsPtr(10000))
	if err := w.Next(NextInput{Total: 5000}); err != nil {
		t.Fatalf("sufficient change must pass: %v", err)
	}
}

func TestCashWithoutChangeForPasses(t *testing.T) {
	t.Parallel()

	w := NewWizard()
	w.SetDeliveryMode(enums.DeliveryModePickup)
	w.Next(NextInput{})
	w.SetPayment(enums.PaymentMethodCash, nil)

	if err := w.Next(NextInput{Total: 5000}); err != nil {
		t.Fatalf("change-for is optional for cash: %v", err)
	}
}

func TestNonCashDropsChangeFor(t *testing.T) {
	t.Parallel()

	w := NewWizard()
	w.SetPayment(enums.PaymentMethodCard, centsPtr(10000))
	if w.State().ChangeFor != nil {
		t.Fatal("change-for only applies to cash")
	}
}

func TestModeSwitchPreservesLaterAnswers(t *testing.T) {
	t.Parallel()

	w := NewWizard()
	w.Next(NextInput{})
	w.SetAddress(uuid.New(), "Av. Paulista, 1000")
	w.SetPayment(enums.PaymentMethodCard, nil)
	w.SetNotes("sem cebola")

	// On the address step; switching to pickup removes that step but keeps
	// the payment and notes answers.
	if err := w.SetDeliveryMode(enums.DeliveryModePickup); err != nil {
		t.Fatalf("SetDeliveryMode: %v", err)
	}
	state := w.State()
	if state.PaymentMethod != enums.PaymentMethodCard {
		t.Fatal("payment answer must survive the mode switch")
	}
	if state.Notes == nil || *state.Notes != "sem cebola" {
		t.Fatal("notes must survive the mode switch")
	}
	if w.Current() == StepChooseAddress {
		t.Fatal("pickup flow has no address step")
	}
}

func TestModeSwitchKeepsNamedStep(t *testing.T) {
	t.Parallel()

	w := NewWizard()
	w.SetDeliveryMode(enums.DeliveryModePickup)
	w.Next(NextInput{})
	w.SetPayment(enums.PaymentMethodPix, nil)
	w.Next(NextInput{Total: 100})
	if !w.IsTerminal() {
		t.Fatalf("expected confirm, on %s", w.Current())
	}

	// Switching back to delivery keeps the wizard on confirm even though
	// the sequence grew.
	w.SetDeliveryMode(enums.DeliveryModeDelivery)
	if !w.IsTerminal() {
		t.Fatalf("expected to stay on confirm, on %s", w.Current())
	}
}

func TestBackFromFirstStepLeavesCheckout(t *testing.T) {
	t.Parallel()

	w := NewWizard()
	if !w.Back() {
		t.Fatal("back on the first step must signal leaving checkout")
	}

	w.Next(NextInput{})
	if w.Back() {
		t.Fatal("back mid-flow must stay inside checkout")
	}
	if w.Current() != StepChooseMode {
		t.Fatalf("expected first step, on %s", w.Current())
	}
}

func TestNextOnConfirmIsProgrammerError(t *testing.T) {
	t.Parallel()

	w := Restore(State{DeliveryMode: enums.DeliveryModePickup, StepIndex: 2, PaymentMethod: enums.PaymentMethodPix})
	if !w.IsTerminal() {
		t.Fatalf("expected confirm, on %s", w.Current())
	}
	err := w.Next(NextInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRestoreClampsCorruptIndex(t *testing.T) {
	t.Parallel()

	w := Restore(State{DeliveryMode: enums.DeliveryModePickup, StepIndex: 99})
	if !w.IsTerminal() {
		t.Fatalf("oversized index must clamp to the last step, on %s", w.Current())
	}
	w = Restore(State{StepIndex: -3})
	if w.Current() != StepChooseMode {
		t.Fatalf("negative index must clamp to the first step, on %s", w.Current())
	}
}
