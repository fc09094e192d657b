package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/api/responses"
	"github.com/saborlabs/cardapio-backend/internal/catalog"
	"github.com/saborlabs/cardapio-backend/internal/tenants"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
)

// storefrontResponse is the public tenant card rendered at the top of the
// menu page.
type storefrontResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	StoreAddress string    `json:"store_address"`
}

// resolveTenant loads the active tenant behind the {slug} URL segment.
func resolveTenant(r *http.Request, svc tenants.Service) (*models.Tenant, error) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "informe a loja")
	}
	return svc.GetBySlug(r.Context(), slug)
}

func StorefrontInfo(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := resolveTenant(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, storefrontResponse{
			ID:           tenant.ID,
			Name:         tenant.Name,
			Slug:         tenant.Slug,
			StoreAddress: svc.StoreAddress(r.Context(), tenant.ID),
		})
	}
}

func StorefrontMenu(tenantsSvc tenants.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := resolveTenant(r, tenantsSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		menu, err := catalogSvc.Menu(r.Context(), tenant.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, menu)
	}
}

func StorefrontProduct(tenantsSvc tenants.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := resolveTenant(r, tenantsSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := catalogSvc.GetProduct(r.Context(), tenant.ID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
