package coupons

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

type stubValidatorRepo struct {
	Repository
	coupon  *models.Coupon
	findErr error
}

func (s *stubValidatorRepo) FindActiveByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Coupon, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.coupon == nil || CanonicalCode(code) != s.coupon.Code {
		return nil, gorm.ErrRecordNotFound
	}
	return s.coupon, nil
}

func newTestValidator(t *testing.T, repo Repository) Validator {
	t.Helper()
	v, err := NewValidator(repo)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func intPtr(v int) *int { return &v }

func baseCoupon() *models.Coupon {
	return &models.Coupon{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		Code:          "DESCONTO10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true,
	}
}

func TestValidateAcceptsCaseInsensitiveCode(t *testing.T) {
	t.Parallel()

	coupon := baseCoupon()
	v := newTestValidator(t, &stubValidatorRepo{coupon: coupon})

	got, err := v.Validate(context.Background(), coupon.TenantID, "  desconto10 ", 10000, time.Now())
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if got.ID != coupon.ID {
		t.Fatal("expected the stored coupon back")
	}
}

func TestValidateUnknownCode(t *testing.T) {
	t.Parallel()

	v := newTestValidator(t, &stubValidatorRepo{})
	_, err := v.Validate(context.Background(), uuid.New(), "NOPE", 10000, time.Now())
	if RejectionReason(err) != ReasonInvalidOrExpired {
		t.Fatalf("expected invalid_or_expired, got %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	t.Parallel()

	coupon := baseCoupon()
	past := time.Now().Add(-time.Hour)
	coupon.ExpiresAt = &past
	v := newTestValidator(t, &stubValidatorRepo{coupon: coupon})

	_, err := v.Validate(context.Background(), coupon.TenantID, coupon.Code, 10000, time.Now())
	if RejectionReason(err) != ReasonExpired {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestValidateExhausted(t *testing.T) {
	t.Parallel()

	coupon := baseCoupon()
	coupon.MaxUses = intPtr(5)
	coupon.CurrentUses = 5
	v := newTestValidator(t, &stubValidatorRepo{coupon: coupon})

	_, err := v.Validate(context.Background(), coupon.TenantID, coupon.Code, 10000, time.Now())
	if RejectionReason(err) != ReasonExhausted {
		t.Fatalf("expected exhausted, got %v", err)
	}
}

func TestValidateBelowMinimumIncludesThreshold(t *testing.T) {
	t.Parallel()

	coupon := baseCoupon()
	coupon.MinOrderValueCents = money.Cents(20000)
	v := newTestValidator(t, &stubValidatorRepo{coupon: coupon})

	_, err := v.Validate(context.Background(), coupon.TenantID, coupon.Code, 10000, time.Now())
	if RejectionReason(err) != ReasonBelowMinimum {
		t.Fatalf("expected below_minimum, got %v", err)
	}
	if !strings.Contains(err.Error(), "200.00") {
		t.Fatalf("message should carry the minimum, got %v", err)
	}
}

func TestValidateCheckOrderShortCircuits(t *testing.T) {
	t.Parallel()

	// Expired AND exhausted AND below minimum: expiry must win.
	coupon := baseCoupon()
	past := time.Now().Add(-time.Hour)
	coupon.ExpiresAt = &past
	coupon.MaxUses = intPtr(1)
	coupon.CurrentUses = 1
	coupon.MinOrderValueCents = money.Cents(99999)
	v := newTestValidator(t, &stubValidatorRepo{coupon: coupon})

	_, err := v.Validate(context.Background(), coupon.TenantID, coupon.Code, 100, time.Now())
	if RejectionReason(err) != ReasonExpired {
		t.Fatalf("expected expired to short-circuit, got %v", err)
	}
}
