package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/internal/cart"
	"github.com/saborlabs/cardapio-backend/internal/coupons"
	"github.com/saborlabs/cardapio-backend/internal/orders"
	"github.com/saborlabs/cardapio-backend/internal/points"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
	"github.com/saborlabs/cardapio-backend/pkg/types"
)

type stubTx struct{ calls int }

func (s *stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubOrdersRepo struct {
	orders.Repository
	created *models.Order
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	s.created = order
	return order, nil
}

type stubCouponRepo struct {
	coupons.Repository
	increments int
	exhausted  bool
}

func (s *stubCouponRepo) WithTx(tx *gorm.DB) coupons.Repository { return s }

func (s *stubCouponRepo) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.exhausted {
		return false, nil
	}
	s.increments++
	return true, nil
}

type stubPoints struct {
	movements []points.OrderMovementsInput
	err       error
}

func (s *stubPoints) Balance(ctx context.Context, userID uuid.UUID) (int, error) { return 0, nil }

func (s *stubPoints) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.PointsLedgerEntry, error) {
	return nil, nil
}

func (s *stubPoints) RecordOrderMovements(ctx context.Context, tx *gorm.DB, input points.OrderMovementsInput) error {
	if s.err != nil {
		return s.err
	}
	s.movements = append(s.movements, input)
	return nil
}

type stubCleaner struct{ cleared []uuid.UUID }

func (s *stubCleaner) Clear(ctx context.Context, userID uuid.UUID) error {
	s.cleared = append(s.cleared, userID)
	return nil
}

type stubPublisher struct{ published []*models.Order }

func (s *stubPublisher) OrderCreated(ctx context.Context, order *models.Order) error {
	s.published = append(s.published, order)
	return nil
}

type commitFixture struct {
	svc        Service
	tx         *stubTx
	ordersRepo *stubOrdersRepo
	couponRepo *stubCouponRepo
	pointsSvc  *stubPoints
	cleaner    *stubCleaner
	publisher  *stubPublisher
}

func newCommitFixture(t *testing.T) *commitFixture {
	t.Helper()
	f := &commitFixture{
		tx:         &stubTx{},
		ordersRepo: &stubOrdersRepo{},
		couponRepo: &stubCouponRepo{},
		pointsSvc:  &stubPoints{},
		cleaner:    &stubCleaner{},
		publisher:  &stubPublisher{},
	}
	svc, err := NewService(f.tx, f.ordersRepo, f.couponRepo, f.pointsSvc, f.cleaner, f.publisher, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func terminalState(mode enums.DeliveryMode, payment enums.PaymentMethod) State {
	state := State{DeliveryMode: mode, PaymentMethod: payment}
	state.StepIndex = len(StepsFor(mode)) - 1
	if mode == enums.DeliveryModeDelivery {
		id := uuid.New()
		text := "Rua das Flores, 123"
		state.AddressID = &id
		state.AddressText = &text
	}
	return state
}

func commitCart(lines ...cart.Line) cart.Snapshot {
	return cart.Snapshot{Lines: lines}
}

func line(unit money.Cents, qty int) cart.Line {
	return cart.Line{
		LineID:      uuid.New(),
		ProductID:   uuid.New(),
		ProductName: "Marmita",
		UnitPrice:   unit,
		Quantity:    qty,
	}
}

var commitSettings = types.DeliverySettings{FlatFee: 1199, FreeAboveThreshold: 15000}

func TestCommitFreezesPricingSnapshot(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	coupon := &models.Coupon{
		ID:            uuid.New(),
		Code:          "DEZ",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true,
	}
	snap := commitCart(line(5000, 2))
	snap.Coupon = coupon
	snap.PointsToRedeem = 50

	order, err := f.svc.Commit(context.Background(), CommitInput{
		TenantID:   uuid.New(),
		UserID:     uuid.New(),
		Cart:       snap,
		Wizard:     terminalState(enums.DeliveryModeDelivery, enums.PaymentMethodPix),
		Settings:   commitSettings,
		PointValue: 10,
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// subtotal 100.00, fee 11.99, coupon 10.00, points 50*0.10 = 5.00
	if order.SubtotalCents != 10000 || order.DeliveryFeeCents != 1199 {
		t.Fatalf("subtotal/fee = %s/%s", order.SubtotalCents, order.DeliveryFeeCents)
	}
	if order.CouponDiscountCents != 1000 || order.CouponCode == nil || *order.CouponCode != "DEZ" {
		t.Fatalf("coupon snapshot = %s %v", order.CouponDiscountCents, order.CouponCode)
	}
	if order.PointsUsed != 50 || order.PointsDiscountCents != 500 {
		t.Fatalf("points = %d / %s", order.PointsUsed, order.PointsDiscountCents)
	}
	if order.TotalCents != 9699 {
		t.Fatalf("total = %s, want 96.99", order.TotalCents)
	}
	// earned from post-coupon subtotal: floor(90.00) = 90
	if order.PointsEarned != 90 {
		t.Fatalf("earned = %d", order.PointsEarned)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s", order.Status)
	}
	if order.AddressText == nil {
		t.Fatal("delivery order must freeze the address text")
	}
	if len(order.Items) != 1 || order.Items[0].LineTotalCents != 10000 {
		t.Fatalf("items = %+v", order.Items)
	}

	if f.tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", f.tx.calls)
	}
	if f.couponRepo.increments != 1 {
		t.Fatalf("coupon increments = %d", f.couponRepo.increments)
	}
	if len(f.pointsSvc.movements) != 1 || f.pointsSvc.movements[0].Used != 50 || f.pointsSvc.movements[0].Earned != 90 {
		t.Fatalf("movements = %+v", f.pointsSvc.movements)
	}
	if len(f.cleaner.cleared) != 1 {
		t.Fatal("commit must clear the cart session")
	}
	if len(f.publisher.published) != 1 {
		t.Fatal("commit must publish the order-created event")
	}
}

func TestCommitRecomputesIgnoringClientTotals(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	snap := commitCart(line(2000, 1))
	// A tampered snapshot claims a free order.
	snap.Totals = cart.Totals{Total: 0}

	order, err := f.svc.Commit(context.Background(), CommitInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Cart:     snap,
		Wizard:   terminalState(enums.DeliveryModePickup, enums.PaymentMethodCard),
		Settings: commitSettings,
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if order.TotalCents != 2000 {
		t.Fatalf("total = %s, want the recomputed 20.00", order.TotalCents)
	}
}

func TestCommitReclampsStalePoints(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	snap := commitCart(line(2000, 1))
	snap.PointsToRedeem = 100000

	order, err := f.svc.Commit(context.Background(), CommitInput{
		TenantID:   uuid.New(),
		UserID:     uuid.New(),
		Cart:       snap,
		Wizard:     terminalState(enums.DeliveryModePickup, enums.PaymentMethodCard),
		Settings:   commitSettings,
		PointValue: 10,
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	// Order value 20.00 at 0.10/point caps redemption at 200.
	if order.PointsUsed != 200 || order.TotalCents != 0 {
		t.Fatalf("points used = %d, total = %s", order.PointsUsed, order.TotalCents)
	}
}

func TestCommitOffTerminalStepIsProgrammerError(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	state := terminalState(enums.DeliveryModePickup, enums.PaymentMethodCard)
	state.StepIndex = 0

	_, err := f.svc.Commit(context.Background(), CommitInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Cart:     commitCart(line(2000, 1)),
		Wizard:   state,
		Settings: commitSettings,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if f.tx.calls != 0 {
		t.Fatal("no transaction may start off the terminal step")
	}
}

func TestCommitEmptyCart(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	_, err := f.svc.Commit(context.Background(), CommitInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Wizard:   terminalState(enums.DeliveryModePickup, enums.PaymentMethodCard),
		Settings: commitSettings,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation rejection, got %v", err)
	}
}

func TestCommitDeliveryRequiresAddress(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	state := terminalState(enums.DeliveryModeDelivery, enums.PaymentMethodCard)
	state.AddressID = nil
	state.AddressText = nil

	_, err := f.svc.Commit(context.Background(), CommitInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Cart:     commitCart(line(2000, 1)),
		Wizard:   state,
		Settings: commitSettings,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation rejection, got %v", err)
	}
}

func TestCommitCashChangeBelowRecomputedTotal(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	state := terminalState(enums.DeliveryModePickup, enums.PaymentMethodCash)
	change := money.Cents(1000)
	state.ChangeFor = &change

	_, err := f.svc.Commit(context.Background(), CommitInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Cart:     commitCart(line(2000, 1)),
		Wizard:   state,
		Settings: commitSettings,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation rejection, got %v", err)
	}
	if f.tx.calls != 0 {
		t.Fatal("rejection must happen before the transaction")
	}
}

func TestCommitExhaustedCouponRollsBack(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	f.couponRepo.exhausted = true
	snap := commitCart(line(5000, 1))
	snap.Coupon = &models.Coupon{
		ID: uuid.New(), Code: "RARO",
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(5),
		IsActive:      true,
	}

	_, err := f.svc.Commit(context.Background(), CommitInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Cart:     snap,
		Wizard:   terminalState(enums.DeliveryModePickup, enums.PaymentMethodCard),
		Settings: commitSettings,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.cleaner.cleared) != 0 || len(f.publisher.published) != 0 {
		t.Fatal("failed commit must not clear the session or publish")
	}
}

func TestCommitObserverRecordsOutcome(t *testing.T) {
	t.Parallel()

	f := newCommitFixture(t)
	observer := &stubObserver{}
	svc, err := NewService(f.tx, f.ordersRepo, f.couponRepo, f.pointsSvc, f.cleaner, nil, observer)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	svc.Commit(context.Background(), CommitInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Cart:     commitCart(line(2000, 1)),
		Wizard:   terminalState(enums.DeliveryModePickup, enums.PaymentMethodCard),
		Settings: commitSettings,
	})
	svc.Commit(context.Background(), CommitInput{})

	if len(observer.outcomes) != 2 || observer.outcomes[0] != "committed" || observer.outcomes[1] != "failed" {
		t.Fatalf("outcomes = %v", observer.outcomes)
	}
}

type stubObserver struct{ outcomes []string }

func (s *stubObserver) ObserveOrderCommit(outcome string, duration time.Duration) {
	s.outcomes = append(s.outcomes, outcome)
}
