package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
)

// StatusNotifier pushes order status changes to connected storefront
// clients. The realtime package provides the production implementation.
type StatusNotifier interface {
	OrderStatusChanged(ctx context.Context, order *models.Order) error
}

// Service exposes order reads and the admin status lifecycle.
type Service interface {
	GetForUser(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Order, error)
	Get(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Order, error)
	AdvanceStatus(ctx context.Context, tenantID, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo     Repository
	notifier StatusNotifier
}

// NewService wires an order service. The notifier is optional; a nil
// notifier disables realtime pushes.
func NewService(repo Repository, notifier StatusNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo, notifier: notifier}, nil
}

func (s *service) GetForUser(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
	}
	return order, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *service) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and order ids are required")
	}
	order, err := s.repo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	return s.repo.ListByTenant(ctx, tenantID, filter)
}

func (s *service) AdvanceStatus(ctx context.Context, tenantID, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("pedido %s não pode mudar para %s", order.Status, next)).
			WithDetails(map[string]any{"current": order.Status, "requested": next})
	}
	if err := s.repo.UpdateStatus(ctx, tenantID, orderID, next); err != nil {
		return nil, err
	}
	order.Status = next

	if s.notifier != nil {
		// Best effort: the status change is already persisted.
		_ = s.notifier.OrderStatusChanged(ctx, order)
	}
	return order, nil
}
