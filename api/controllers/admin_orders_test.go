package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/api/middleware"
	"github.com/saborlabs/cardapio-backend/internal/orders"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
)

type stubOrdersService struct {
	orders.Service
	advanced   *enums.OrderStatus
	advanceErr error
	listFilter *orders.ListFilter
}

func (s *stubOrdersService) AdvanceStatus(_ context.Context, _, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if s.advanceErr != nil {
		return nil, s.advanceErr
	}
	s.advanced = &next
	return &models.Order{ID: orderID, Status: next}, nil
}

func (s *stubOrdersService) List(_ context.Context, _ uuid.UUID, filter orders.ListFilter) ([]models.Order, error) {
	s.listFilter = &filter
	return []models.Order{}, nil
}

func adminRouter(svc orders.Service, tenantID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithTenantID(req.Context(), tenantID.String())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/api/admin/v1/orders", AdminOrdersList(svc, testControllerLogger()))
	r.Post("/api/admin/v1/orders/{orderId}/status", AdminOrdersAdvanceStatus(svc, testControllerLogger()))
	return r
}

func TestAdminAdvanceStatusForwardsParsedStatus(t *testing.T) {
	t.Parallel()

	svc := &stubOrdersService{}
	router := adminRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"confirmed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.advanced == nil || *svc.advanced != enums.OrderStatusConfirmed {
		t.Fatalf("advanced = %v, want confirmed", svc.advanced)
	}
}

func TestAdminAdvanceStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	router := adminRouter(&stubOrdersService{}, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"teleported"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAdminAdvanceStatusSurfacesIllegalTransition(t *testing.T) {
	t.Parallel()

	svc := &stubOrdersService{
		advanceErr: pkgerrors.New(pkgerrors.CodeStateConflict, "transição de status inválida"),
	}
	router := adminRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"delivered"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestAdminOrdersListParsesStatusFilter(t *testing.T) {
	t.Parallel()

	svc := &stubOrdersService{}
	router := adminRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=preparing&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if svc.listFilter == nil || svc.listFilter.Status == nil || *svc.listFilter.Status != enums.OrderStatusPreparing {
		t.Fatalf("filter = %+v, want preparing", svc.listFilter)
	}
	if svc.listFilter.Limit != 10 {
		t.Fatalf("limit = %d, want 10", svc.listFilter.Limit)
	}
}

func TestAdminOrdersListRejectsBogusStatus(t *testing.T) {
	t.Parallel()

	router := adminRouter(&stubOrdersService{}, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=flying", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAdminEndpointsRequireTenantContext(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Get("/api/admin/v1/orders", AdminOrdersList(&stubOrdersService{}, testControllerLogger()))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
