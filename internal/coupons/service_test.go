package coupons

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
)

type stubRepo struct {
	Repository
	byID    map[uuid.UUID]*models.Coupon
	created *models.Coupon
	updated *models.Coupon
	deleted bool
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return coupon, nil
}

func (s *stubRepo) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	coupon.ID = uuid.New()
	s.created = coupon
	return coupon, nil
}

func (s *stubRepo) Update(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	s.updated = coupon
	return coupon, nil
}

func (s *stubRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func TestCreateCanonicalizesCode(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	coupon, err := svc.Create(context.Background(), uuid.New(), Input{
		Code:          "  bemvindo10 ",
		DiscountType:  "percentage",
		DiscountValue: "10",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if coupon.Code != "BEMVINDO10" {
		t.Fatalf("code = %q", coupon.Code)
	}
	if !coupon.IsActive {
		t.Fatal("new coupons default to active")
	}
}

func TestCreateRejectsPercentageOverHundred(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{})
	_, err := svc.Create(context.Background(), uuid.New(), Input{
		Code:          "DEMAIS",
		DiscountType:  "percentage",
		DiscountValue: "120",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsZeroDiscount(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubRepo{})
	_, err := svc.Create(context.Background(), uuid.New(), Input{
		Code:          "NADA",
		DiscountType:  "fixed",
		DiscountValue: "0",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateForeignTenantIsNotFound(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	repo := &stubRepo{byID: map[uuid.UUID]*models.Coupon{
		id: {ID: id, TenantID: uuid.New(), Code: "OUTRA"},
	}}
	svc, _ := NewService(repo)

	_, err := svc.Update(context.Background(), uuid.New(), id, Input{
		Code:          "OUTRA",
		DiscountType:  "fixed",
		DiscountValue: "5.00",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.updated != nil {
		t.Fatal("update must not reach the repository")
	}
}

func TestDeleteChecksOwnership(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	id := uuid.New()
	repo := &stubRepo{byID: map[uuid.UUID]*models.Coupon{
		id: {ID: id, TenantID: tenantID, Code: "FRETEGRATIS"},
	}}
	svc, _ := NewService(repo)

	if err := svc.Delete(context.Background(), tenantID, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !repo.deleted {
		t.Fatal("delete must reach the repository")
	}
}
