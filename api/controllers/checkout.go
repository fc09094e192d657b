package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/api/responses"
	"github.com/saborlabs/cardapio-backend/api/validators"
	"github.com/saborlabs/cardapio-backend/internal/addresses"
	"github.com/saborlabs/cardapio-backend/internal/checkout"
	"github.com/saborlabs/cardapio-backend/internal/tenants"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// CheckoutDeps bundles the checkout wizard endpoints' dependencies. The cart
// deps are embedded because every wizard answer re-prices the cart before
// validating the step.
type CheckoutDeps struct {
	Cart      CartDeps
	Wizards   *checkout.Sessions
	Addresses addresses.Service
	Commit    checkout.Service
	Tenants   tenants.Service
	Logger    *logger.Logger
}

// wizardResponse is the flow state the client renders: the current step, the
// full sequence for the chosen mode, and the answers collected so far.
type wizardResponse struct {
	Step     checkout.Step   `json:"step"`
	Steps    []checkout.Step `json:"steps"`
	Terminal bool            `json:"terminal"`
	State    checkout.State  `json:"state"`
}

func newWizardResponse(w *checkout.Wizard) wizardResponse {
	return wizardResponse{
		Step:     w.Current(),
		Steps:    w.Steps(),
		Terminal: w.IsTerminal(),
		State:    w.State(),
	}
}

func (d CheckoutDeps) writeWizard(w http.ResponseWriter, r *http.Request, userID uuid.UUID, wizard *checkout.Wizard) {
	if err := d.Wizards.Save(r.Context(), userID, wizard); err != nil {
		responses.WriteError(r.Context(), d.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, newWizardResponse(wizard))
}

func CheckoutState(d CheckoutDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		wizard, err := d.Wizards.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, newWizardResponse(wizard))
	}
}

// checkoutAnswerPayload carries the answer for the wizard's current step.
// Only the fields for that step are read.
type checkoutAnswerPayload struct {
	DeliveryMode  *string    `json:"delivery_mode,omitempty"`
	AddressID     *uuid.UUID `json:"address_id,omitempty"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	ChangeFor     *string    `json:"change_for,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// CheckoutAnswer records the answer for the wizard's current step without
// advancing the flow.
func CheckoutAnswer(d CheckoutDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		var payload checkoutAnswerPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		wizard, err := d.Wizards.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		if err := d.applyAnswer(r, userID, wizard, payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		d.writeWizard(w, r, userID, wizard)
	}
}

func (d CheckoutDeps) applyAnswer(r *http.Request, userID uuid.UUID, wizard *checkout.Wizard, payload checkoutAnswerPayload) error {
	ctx := r.Context()

	switch wizard.Current() {
	case checkout.StepChooseMode:
		if payload.DeliveryMode == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "escolha entrega ou retirada")
		}
		mode, err := enums.ParseDeliveryMode(*payload.DeliveryMode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "modo de entrega inválido")
		}
		return wizard.SetDeliveryMode(mode)

	case checkout.StepChooseAddress:
		if payload.AddressID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "escolha um endereço de entrega")
		}
		address, err := d.Addresses.Get(ctx, userID, *payload.AddressID)
		if err != nil {
			return err
		}
		return wizard.SetAddress(address.ID, address.DisplayText())

	case checkout.StepChoosePayment:
		if payload.PaymentMethod == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "escolha a forma de pagamento")
		}
		method, err := enums.ParsePaymentMethod(*payload.PaymentMethod)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "forma de pagamento inválida")
		}
		var changeFor *money.Cents
		if payload.ChangeFor != nil {
			amount, parseErr := money.Parse(*payload.ChangeFor)
			if parseErr != nil {
				return parseErr
			}
			changeFor = &amount
		}
		return wizard.SetPayment(method, changeFor)

	case checkout.StepConfirm:
		if payload.Notes != nil {
			wizard.SetNotes(*payload.Notes)
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "nada a alterar nesta etapa")
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "unknown checkout step")
}

// CheckoutNext validates the current step against the live cart and advances.
func CheckoutNext(d CheckoutDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.Cart.resolve(w, r)
		if !ok {
			return
		}

		wizard, err := d.Wizards.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		store, err := d.Cart.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		// Keep the cart's fee in sync with the wizard's mode before pricing.
		if err := store.SetDeliveryMode(wizard.State().DeliveryMode); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		saved, err := d.Addresses.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		if err := wizard.Next(checkout.NextInput{
			Total:        store.Totals().Total,
			HasAddresses: len(saved) > 0,
		}); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		if err := d.Cart.Sessions.Save(r.Context(), userID, store.Snapshot()); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		d.writeWizard(w, r, userID, wizard)
	}
}

func CheckoutBack(d CheckoutDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		wizard, err := d.Wizards.Load(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		wizard.Back()
		d.writeWizard(w, r, userID, wizard)
	}
}

// CheckoutCommit turns the confirmed cart into an order. The commit service
// recomputes every total server-side; the idempotency middleware upstream
// absorbs double-submits.
func CheckoutCommit(d CheckoutDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.Cart.resolve(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		wizard, err := d.Wizards.Load(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, d.Logger, w, err)
			return
		}
		if !wizard.IsTerminal() {
			responses.WriteError(ctx, d.Logger, w, pkgerrors.New(pkgerrors.CodeValidation, "finalize as etapas do checkout antes de confirmar"))
			return
		}

		store, err := d.Cart.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(ctx, d.Logger, w, err)
			return
		}
		if err := store.SetDeliveryMode(wizard.State().DeliveryMode); err != nil {
			responses.WriteError(ctx, d.Logger, w, err)
			return
		}

		order, err := d.Commit.Commit(ctx, checkout.CommitInput{
			TenantID:   tenantID,
			UserID:     userID,
			Cart:       store.Snapshot(),
			Wizard:     wizard.State(),
			Settings:   d.Tenants.DeliverySettings(ctx, tenantID),
			PointValue: d.Tenants.PointValue(),
		})
		if err != nil {
			responses.WriteError(ctx, d.Logger, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
