package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// Rejection reasons, surfaced in validation error details. Checks run in
// this order and short-circuit on the first failure.
const (
	ReasonInvalidOrExpired = "invalid_or_expired"
	ReasonExpired          = "expired"
	ReasonExhausted        = "exhausted"
	ReasonBelowMinimum     = "below_minimum"
)

// Validator decides whether a coupon code applies to the current subtotal.
// It never increments usage; that happens only at order commit.
type Validator interface {
	Validate(ctx context.Context, tenantID uuid.UUID, code string, subtotal money.Cents, now time.Time) (*models.Coupon, error)
}

type validator struct {
	repo Repository
}

// NewValidator wires a validator backed by the coupon repository.
func NewValidator(repo Repository) (Validator, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &validator{repo: repo}, nil
}

func (v *validator) Validate(ctx context.Context, tenantID uuid.UUID, code string, subtotal money.Cents, now time.Time) (*models.Coupon, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if CanonicalCode(code) == "" {
		return nil, rejection(ReasonInvalidOrExpired, "informe um cupom válido")
	}

	coupon, err := v.repo.FindActiveByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rejection(ReasonInvalidOrExpired, "cupom inválido ou expirado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now) {
		return nil, rejection(ReasonExpired, "este cupom expirou")
	}
	if coupon.MaxUses != nil && coupon.CurrentUses >= *coupon.MaxUses {
		return nil, rejection(ReasonExhausted, "este cupom atingiu o limite de usos")
	}
	if coupon.MinOrderValueCents > 0 && subtotal < coupon.MinOrderValueCents {
		return nil, rejection(
			ReasonBelowMinimum,
			fmt.Sprintf("pedido mínimo de R$ %s para usar este cupom", coupon.MinOrderValueCents),
		).WithDetails(map[string]any{
			"reason":          ReasonBelowMinimum,
			"min_order_value": coupon.MinOrderValueCents.String(),
		})
	}

	return coupon, nil
}

func rejection(reason, message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"reason": reason})
}

// RejectionReason extracts the typed reason from a validation error, or ""
// when the error is not a coupon rejection.
func RejectionReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		return ""
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return ""
	}
	reason, _ := details["reason"].(string)
	return reason
}
