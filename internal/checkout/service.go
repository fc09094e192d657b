package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saborlabs/cardapio-backend/internal/cart"
	"github.com/saborlabs/cardapio-backend/internal/coupons"
	"github.com/saborlabs/cardapio-backend/internal/orders"
	"github.com/saborlabs/cardapio-backend/internal/points"
	"github.com/saborlabs/cardapio-backend/internal/pricing"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
	"github.com/saborlabs/cardapio-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionCleaner interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

type orderPublisher interface {
	OrderCreated(ctx context.Context, order *models.Order) error
}

type commitObserver interface {
	ObserveOrderCommit(outcome string, duration time.Duration)
}

// Service turns a confirmed cart into a persisted order.
type Service interface {
	Commit(ctx context.Context, input CommitInput) (*models.Order, error)
}

// CommitInput is the final snapshot of cart plus wizard state.
type CommitInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Cart     cart.Snapshot
	Wizard   State
	// Settings and PointValue are the tenant values used to recompute the
	// totals server-side; the client snapshot is never trusted.
	Settings   types.DeliverySettings
	PointValue money.Cents
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	couponRepo coupons.Repository
	pointsSvc  points.Service
	sessions   sessionCleaner
	publisher  orderPublisher
	observer   commitObserver
}

// NewService wires the commit service. Publisher and observer are optional.
func NewService(
	tx txRunner,
	ordersRepo orders.Repository,
	couponRepo coupons.Repository,
	pointsSvc points.Service,
	sessions sessionCleaner,
	publisher orderPublisher,
	observer commitObserver,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if pointsSvc == nil {
		return nil, fmt.Errorf("points service required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session cleaner required")
	}
	return &service{
		tx:         tx,
		ordersRepo: ordersRepo,
		couponRepo: couponRepo,
		pointsSvc:  pointsSvc,
		sessions:   sessions,
		publisher:  publisher,
		observer:   observer,
	}, nil
}

// Commit runs the whole write sequence in one transaction: order header and
// line items, points balance and ledger, coupon usage. Either everything
// lands or nothing does.
func (s *service) Commit(ctx context.Context, input CommitInput) (*models.Order, error) {
	started := time.Now()
	order, err := s.commit(ctx, input)
	if s.observer != nil {
		outcome := "committed"
		if err != nil {
			outcome = "failed"
		}
		s.observer.ObserveOrderCommit(outcome, time.Since(started))
	}
	return order, err
}

func (s *service) commit(ctx context.Context, input CommitInput) (*models.Order, error) {
	if input.TenantID == uuid.Nil || input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and user ids are required")
	}
	if len(input.Cart.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "o carrinho está vazio")
	}

	wizard := Restore(input.Wizard)
	if !wizard.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal,
			fmt.Sprintf("commit called from step %q", wizard.Current()))
	}
	state := wizard.State()
	if state.DeliveryMode == enums.DeliveryModeDelivery && state.AddressText == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "escolha um endereço de entrega")
	}

	totals := s.recompute(input, state)
	if err := wizard.validatePayment(totals.Total); err != nil {
		return nil, err
	}

	order := buildOrder(input, state, totals)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.ordersRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		if err := s.pointsSvc.RecordOrderMovements(ctx, tx, points.OrderMovementsInput{
			UserID:  input.UserID,
			OrderID: order.ID,
			Used:    order.PointsUsed,
			Earned:  order.PointsEarned,
		}); err != nil {
			return err
		}

		if input.Cart.Coupon != nil {
			ok, err := s.couponRepo.WithTx(tx).IncrementUsage(ctx, input.Cart.Coupon.ID)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "este cupom atingiu o limite de usos").
					WithDetails(map[string]any{"reason": coupons.ReasonExhausted})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit work is best effort: the order is already durable.
	_ = s.sessions.Clear(ctx, input.UserID)
	if s.publisher != nil {
		_ = s.publisher.OrderCreated(ctx, order)
	}
	return order, nil
}

// recompute derives the frozen pricing fields from the raw cart state. The
// points selection is re-clamped one last time so a stale snapshot can
// never redeem beyond the order value.
func (s *service) recompute(input CommitInput, state State) cart.Totals {
	lines := make([]pricing.Line, len(input.Cart.Lines))
	for i, line := range input.Cart.Lines {
		lines[i] = pricing.Line{
			UnitPrice:       line.UnitPrice,
			AddonsUnitPrice: line.AddonsUnitPrice,
			Quantity:        line.Quantity,
		}
	}
	subtotal := pricing.Subtotal(lines)
	fee := pricing.DeliveryFee(subtotal, state.DeliveryMode, input.Settings)
	couponDiscount := pricing.CouponDiscount(subtotal, input.Cart.Coupon)

	// Clamp against the order value; the balance side of the bound is
	// enforced in-transaction by the guarded debit.
	beforePoints := pricing.Total(subtotal, fee, couponDiscount, 0)
	pointsToRedeem := pricing.ClampPointsToRedeem(
		input.Cart.PointsToRedeem, input.Cart.PointsToRedeem, beforePoints, input.PointValue)
	pointsDiscount := pricing.PointsDiscount(pointsToRedeem, input.PointValue)

	return cart.Totals{
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		CouponDiscount: couponDiscount,
		PointsDiscount: pointsDiscount,
		Total:          pricing.Total(subtotal, fee, couponDiscount, pointsDiscount),
		EarnedPoints:   pricing.EarnedPoints(subtotal, couponDiscount),
	}
}

func buildOrder(input CommitInput, state State, totals cart.Totals) *models.Order {
	pointsUsed := 0
	if totals.PointsDiscount > 0 && input.PointValue > 0 {
		pointsUsed = int(int64(totals.PointsDiscount) / int64(input.PointValue))
	}

	var couponCode *string
	if input.Cart.Coupon != nil {
		code := input.Cart.Coupon.Code
		couponCode = &code
	}

	var addressText *string
	if state.DeliveryMode == enums.DeliveryModeDelivery {
		addressText = state.AddressText
	}

	items := make([]models.OrderLineItem, len(input.Cart.Lines))
	for i, line := range input.Cart.Lines {
		productID := line.ProductID
		items[i] = models.OrderLineItem{
			ProductID:            &productID,
			ProductName:          line.ProductName,
			UnitPriceCents:       line.UnitPrice,
			AddonsUnitPriceCents: line.AddonsUnitPrice,
			Quantity:             line.Quantity,
			LineTotalCents:       (line.UnitPrice + line.AddonsUnitPrice).Mul(line.Quantity),
			Addons:               line.Addons,
		}
	}

	return &models.Order{
		TenantID:            input.TenantID,
		UserID:              input.UserID,
		Status:              enums.OrderStatusPending,
		DeliveryMode:        state.DeliveryMode,
		AddressText:         addressText,
		PaymentMethod:       state.PaymentMethod,
		ChangeForCents:      state.ChangeFor,
		Notes:               state.Notes,
		SubtotalCents:       totals.Subtotal,
		DeliveryFeeCents:    totals.DeliveryFee,
		CouponCode:          couponCode,
		CouponDiscountCents: totals.CouponDiscount,
		PointsUsed:          pointsUsed,
		PointsDiscountCents: totals.PointsDiscount,
		PointsEarned:        totals.EarnedPoints,
		TotalCents:          totals.Total,
		Items:               items,
	}
}
