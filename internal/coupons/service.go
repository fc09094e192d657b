package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// Input is the admin payload for creating or updating a coupon. Monetary
// values arrive as decimal strings to keep the JSON surface float-free.
type Input struct {
	Code          string     `json:"code" validate:"required,max=40"`
	DiscountType  string     `json:"discount_type" validate:"required"`
	DiscountValue string     `json:"discount_value" validate:"required"`
	MinOrderValue string     `json:"min_order_value,omitempty"`
	MaxUses       *int       `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
}

// Service is the admin management surface. Storefront validation lives on
// Validator; usage accounting lives in the checkout transaction.
type Service interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Coupon, error)
	Create(ctx context.Context, tenantID uuid.UUID, input Input) (*models.Coupon, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input Input) (*models.Coupon, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires the coupon admin service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]models.Coupon, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input Input) (*models.Coupon, error) {
	coupon := &models.Coupon{TenantID: tenantID, IsActive: true}
	if err := applyInput(coupon, input); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "já existe um cupom com este código")
		}
		return nil, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, input Input) (*models.Coupon, error) {
	coupon, err := s.findOwned(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := applyInput(coupon, input); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "já existe um cupom com este código")
		}
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, tenantID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, tenantID, id)
}

func (s *service) findOwned(ctx context.Context, tenantID, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cupom não encontrado")
		}
		return nil, err
	}
	if coupon.TenantID != tenantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cupom não encontrado")
	}
	return coupon, nil
}

func applyInput(coupon *models.Coupon, input Input) error {
	code := CanonicalCode(input.Code)
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "informe o código do cupom")
	}

	discountType, err := enums.ParseDiscountType(input.DiscountType)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "tipo de desconto inválido")
	}

	value, err := decimal.NewFromString(input.DiscountValue)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "valor de desconto inválido")
	}
	if value.IsNegative() || value.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "o desconto deve ser maior que zero")
	}
	if discountType == enums.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "desconto percentual não pode passar de 100%")
	}

	var minOrder money.Cents
	if input.MinOrderValue != "" {
		minOrder, err = money.Parse(input.MinOrderValue)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "pedido mínimo inválido")
		}
		if minOrder < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "pedido mínimo não pode ser negativo")
		}
	}

	coupon.Code = code
	coupon.DiscountType = discountType
	coupon.DiscountValue = value
	coupon.MinOrderValueCents = minOrder
	coupon.MaxUses = input.MaxUses
	coupon.ExpiresAt = input.ExpiresAt
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	return nil
}
