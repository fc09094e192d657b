package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
)

type stubRepo struct {
	Repository
	order    *models.Order
	updated  []enums.OrderStatus
	findErr  error
	listErr  error
	listFrom []models.Order
}

func (s *stubRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.order == nil || s.order.TenantID != tenantID || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Order, error) {
	return s.listFrom, s.listErr
}

func (s *stubRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	return s.listFrom, s.listErr
}

func (s *stubRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status enums.OrderStatus) error {
	s.updated = append(s.updated, status)
	s.order.Status = status
	return nil
}

type stubNotifier struct {
	orders []*models.Order
	err    error
}

func (s *stubNotifier) OrderStatusChanged(ctx context.Context, order *models.Order) error {
	s.orders = append(s.orders, order)
	return s.err
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Status:   enums.OrderStatusPending,
	}
}

func TestAdvanceStatusHappyPath(t *testing.T) {
	t.Parallel()

	order := pendingOrder()
	repo := &stubRepo{order: order}
	notifier := &stubNotifier{}
	svc, err := NewService(repo, notifier)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	updated, err := svc.AdvanceStatus(context.Background(), order.TenantID, order.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}
	if updated.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status = %s", updated.Status)
	}
	if len(repo.updated) != 1 || repo.updated[0] != enums.OrderStatusConfirmed {
		t.Fatalf("repo updates = %v", repo.updated)
	}
	if len(notifier.orders) != 1 {
		t.Fatal("expected a realtime push")
	}
}

func TestAdvanceStatusRejectsIllegalTransition(t *testing.T) {
	t.Parallel()

	order := pendingOrder()
	order.Status = enums.OrderStatusDelivered
	repo := &stubRepo{order: order}
	svc, _ := NewService(repo, nil)

	_, err := svc.AdvanceStatus(context.Background(), order.TenantID, order.ID, enums.OrderStatusPreparing)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatal("illegal transition must not touch the repository")
	}
}

func TestAdvanceStatusSurvivesNotifierFailure(t *testing.T) {
	t.Parallel()

	order := pendingOrder()
	repo := &stubRepo{order: order}
	notifier := &stubNotifier{err: context.DeadlineExceeded}
	svc, _ := NewService(repo, notifier)

	updated, err := svc.AdvanceStatus(context.Background(), order.TenantID, order.ID, enums.OrderStatusCanceled)
	if err != nil {
		t.Fatalf("notifier failure must not fail the transition: %v", err)
	}
	if updated.Status != enums.OrderStatusCanceled {
		t.Fatalf("status = %s", updated.Status)
	}
}

func TestGetForUserHidesForeignOrders(t *testing.T) {
	t.Parallel()

	order := pendingOrder()
	svc, _ := NewService(&stubRepo{order: order}, nil)

	_, err := svc.GetForUser(context.Background(), order.TenantID, uuid.New(), order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for another user's order, got %v", err)
	}

	got, err := svc.GetForUser(context.Background(), order.TenantID, order.UserID, order.ID)
	if err != nil {
		t.Fatalf("GetForUser: %v", err)
	}
	if got.ID != order.ID {
		t.Fatal("expected the owner to read their order")
	}
}

func TestGetMapsRecordNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{}, nil)
	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListRejectsInvalidStatusFilter(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{}, nil)
	bad := enums.OrderStatus("shipped")
	_, err := svc.List(context.Background(), uuid.New(), ListFilter{Status: &bad})
	if err == nil {
		t.Fatal("unknown status filter must be rejected")
	}
}
