package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/api/responses"
	"github.com/saborlabs/cardapio-backend/api/validators"
	"github.com/saborlabs/cardapio-backend/internal/cart"
	"github.com/saborlabs/cardapio-backend/internal/catalog"
	"github.com/saborlabs/cardapio-backend/internal/coupons"
	"github.com/saborlabs/cardapio-backend/internal/points"
	"github.com/saborlabs/cardapio-backend/internal/tenants"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
)

// CartDeps bundles everything the session-cart endpoints need. A cart store
// is rebuilt per request from the persisted snapshot so that totals always
// reflect the tenant's current settings and the user's current balance.
type CartDeps struct {
	Sessions  *cart.Service
	Tenants   tenants.Service
	Catalog   catalog.Service
	Validator coupons.Validator
	Points    points.Service
	Logger    *logger.Logger
}

// loadStore assembles a cart store for the request's tenant and user and
// restores the persisted snapshot into it.
func (d CartDeps) loadStore(r *http.Request, userID, tenantID uuid.UUID) (*cart.Store, error) {
	ctx := r.Context()

	balance, err := d.Points.Balance(ctx, userID)
	if err != nil {
		// Fail closed: without a trusted balance we cannot price points.
		return nil, err
	}

	store, err := cart.NewStore(cart.Options{
		Validator:  d.Validator,
		Settings:   d.Tenants.DeliverySettings(ctx, tenantID),
		PointValue: d.Tenants.PointValue(),
		Balance:    balance,
		TenantID:   tenantID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart")
	}
	if _, err := d.Sessions.Load(ctx, userID, store); err != nil {
		return nil, err
	}
	return store, nil
}

// save persists the snapshot and writes it back as the response.
func (d CartDeps) save(w http.ResponseWriter, r *http.Request, userID uuid.UUID, store *cart.Store) {
	snap := store.Snapshot()
	if err := d.Sessions.Save(r.Context(), userID, snap); err != nil {
		responses.WriteError(r.Context(), d.Logger, w, err)
		return
	}
	responses.WriteSuccess(w, snap)
}

func (d CartDeps) resolve(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, err := currentUserID(r)
	if err != nil {
		responses.WriteError(r.Context(), d.Logger, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	tenant, err := resolveTenant(r, d.Tenants)
	if err != nil {
		responses.WriteError(r.Context(), d.Logger, w, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, tenant.ID, true
}

func CartFetch(d CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.resolve(w, r)
		if !ok {
			return
		}
		store, err := d.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, store.Snapshot())
	}
}

type addItemPayload struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity"`
	Addons    []addonPickInput `json:"addons"`
}

type addonPickInput struct {
	OptionID uuid.UUID `json:"option_id" validate:"required"`
	Quantity int       `json:"quantity"`
}

func CartAddItem(d CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.resolve(w, r)
		if !ok {
			return
		}

		var payload addItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		product, err := d.Catalog.GetProduct(r.Context(), tenantID, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		picks := make([]cart.OptionPick, 0, len(payload.Addons))
		for _, pick := range payload.Addons {
			qty := pick.Quantity
			if qty == 0 {
				qty = 1
			}
			picks = append(picks, cart.OptionPick{OptionID: pick.OptionID, Quantity: qty})
		}
		selections, err := cart.BuildSelections(product.AddonGroups, picks)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		store, err := d.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		line, err := store.AddLine(cart.AddLineInput{Product: product, Addons: selections})
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		if payload.Quantity > 1 {
			// line.Quantity already counts this add, so grow from there:
			// a repeated add must never shrink an existing line.
			if err := store.SetQuantity(line.LineID, line.Quantity+payload.Quantity-1); err != nil {
				responses.WriteError(r.Context(), d.Logger, w, err)
				return
			}
		}

		d.save(w, r, userID, store)
	}
}

type setQuantityPayload struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

func CartSetQuantity(d CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.resolve(w, r)
		if !ok {
			return
		}
		lineID, err := parseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		var payload setQuantityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		store, err := d.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		if err := store.SetQuantity(lineID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		d.save(w, r, userID, store)
	}
}

func CartRemoveLine(d CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.resolve(w, r)
		if !ok {
			return
		}
		lineID, err := parseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		store, err := d.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		store.RemoveLine(lineID)
		d.save(w, r, userID, store)
	}
}

type deliveryModePayload struct {
	Mode string `json:"mode" validate:"required"`
}

func CartSetDeliveryMode(d CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.resolve(w, r)
		if !ok {
			return
		}

		var payload deliveryModePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		mode, err := enums.ParseDeliveryMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "modo de entrega inválido"))
			return
		}

		store, err := d.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		if err := store.SetDeliveryMode(mode); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		d.save(w, r, userID, store)
	}
}

type couponPayload struct {
	Code string `json:"code" validate:"required"`
}

func CartApplyCoupon(d CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.resolve(w, r)
		if !ok {
			return
		}

		var payload couponPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		store, err := d.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		if _, err := store.ApplyCoupon(r.Context(), payload.Code); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		d.save(w, r, userID, store)
	}
}

func CartRemoveCoupon(d CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.resolve(w, r)
		if !ok {
			return
		}
		store, err := d.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		store.RemoveCoupon()
		d.save(w, r, userID, store)
	}
}

type pointsPayload struct {
	Points int `json:"points" validate:"min=0"`
}

func CartSetPoints(d CartDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, tenantID, ok := d.resolve(w, r)
		if !ok {
			return
		}

		var payload pointsPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		store, err := d.loadStore(r, userID, tenantID)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		store.SetPointsToRedeem(payload.Points)
		d.save(w, r, userID, store)
	}
}
