package controllers

import (
	"net/http"

	"github.com/saborlabs/cardapio-backend/api/responses"
	"github.com/saborlabs/cardapio-backend/api/validators"
	"github.com/saborlabs/cardapio-backend/internal/tenants"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
)

func AdminSettingsGet(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := adminTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"delivery":      svc.DeliverySettings(r.Context(), tenantID),
			"store_address": svc.StoreAddress(r.Context(), tenantID),
		})
	}
}

func AdminSettingsUpdateDelivery(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := adminTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tenants.DeliverySettingsInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateDeliverySettings(r.Context(), tenantID, payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, svc.DeliverySettings(r.Context(), tenantID))
	}
}

type storeAddressPayload struct {
	Address string `json:"address" validate:"required,max=300"`
}

func AdminSettingsUpdateStoreAddress(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := adminTenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload storeAddressPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateStoreAddress(r.Context(), tenantID, payload.Address); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"store_address": svc.StoreAddress(r.Context(), tenantID)})
	}
}
