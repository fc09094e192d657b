package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/internal/coupons"
	"github.com/saborlabs/cardapio-backend/internal/pricing"
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	pkgerrors "github.com/saborlabs/cardapio-backend/pkg/errors"
	"github.com/saborlabs/cardapio-backend/pkg/money"
	"github.com/saborlabs/cardapio-backend/pkg/types"
)

// Line is one cart entry. LineID is generated when the line is created and
// stays stable across quantity edits.
type Line struct {
	LineID          uuid.UUID             `json:"line_id"`
	ProductID       uuid.UUID             `json:"product_id"`
	TenantID        uuid.UUID             `json:"tenant_id"`
	ProductName     string                `json:"product_name"`
	UnitPrice       money.Cents           `json:"unit_price_cents"`
	Addons          types.AddonSelections `json:"addons,omitempty"`
	AddonsUnitPrice money.Cents           `json:"addons_unit_price_cents"`
	Quantity        int                   `json:"quantity"`
}

// Totals are the derived pricing values, recomputed from scratch on every
// read so they can never go stale.
type Totals struct {
	Subtotal       money.Cents `json:"subtotal_cents"`
	DeliveryFee    money.Cents `json:"delivery_fee_cents"`
	CouponDiscount money.Cents `json:"coupon_discount_cents"`
	PointsDiscount money.Cents `json:"points_discount_cents"`
	Total          money.Cents `json:"total_cents"`
	EarnedPoints   int         `json:"earned_points"`
}

// Snapshot is an immutable copy of the cart handed to subscribers and to the
// checkout flow.
type Snapshot struct {
	Lines          []Line             `json:"lines"`
	DeliveryMode   enums.DeliveryMode `json:"delivery_mode"`
	Coupon         *models.Coupon     `json:"coupon,omitempty"`
	PointsToRedeem int                `json:"points_to_redeem"`
	ActiveTenantID uuid.UUID          `json:"active_tenant_id"`
	Totals         Totals             `json:"totals"`
}

// EventKind tells subscribers what happened. The UI opens the cart panel on
// EventLineAdded; everything else is a plain refresh signal.
type EventKind string

const (
	EventLineAdded EventKind = "line_added"
	EventChanged   EventKind = "changed"
	EventCleared   EventKind = "cleared"
)

// Event is delivered to subscribers after every mutation.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Options wires a Store. Each test or session constructs its own instance;
// there is no package-level singleton.
type Options struct {
	Validator  coupons.Validator
	Settings   types.DeliverySettings
	PointValue money.Cents
	// Balance is the user's current points balance, refreshed by the caller
	// after commits.
	Balance int
	// TenantID fixes the restaurant for a single-tenant storefront. Leave
	// zero and set Marketplace for the multi-restaurant variant.
	TenantID    uuid.UUID
	Marketplace bool
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Store owns the cart state: lines, delivery mode, at most one applied
// coupon and the points selection. All mutations re-clamp the points bound.
type Store struct {
	mu sync.Mutex

	validator   coupons.Validator
	settings    types.DeliverySettings
	pointValue  money.Cents
	balance     int
	tenantID    uuid.UUID
	marketplace bool
	now         func() time.Time

	lines          []Line
	deliveryMode   enums.DeliveryMode
	coupon         *models.Coupon
	pointsToRedeem int
	activeTenantID uuid.UUID

	subscribers map[int]func(Event)
	nextSubID   int
}

// NewStore builds an empty cart.
func NewStore(opts Options) (*Store, error) {
	if opts.Validator == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if !opts.Marketplace && opts.TenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id required for single-tenant cart")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		validator:      opts.Validator,
		settings:       opts.Settings,
		pointValue:     opts.PointValue,
		balance:        opts.Balance,
		tenantID:       opts.TenantID,
		marketplace:    opts.Marketplace,
		now:            opts.Now,
		deliveryMode:   enums.DeliveryModeDelivery,
		activeTenantID: opts.TenantID,
		subscribers:    map[int]func(Event){},
	}, nil
}

// Subscribe registers fn for change events and returns an unsubscribe
// function. fn runs synchronously while the store lock is held, so it must
// not call back into the store.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// AddLineInput carries everything needed to create a cart line.
type AddLineInput struct {
	Product *models.Product
	Addons  types.AddonSelections
}

// AddLine puts a product in the cart. Lines without add-ons coalesce into an
// existing no-addon line for the same product; any add-on selection always
// creates a distinct line. On the marketplace variant, adding from another
// restaurant silently discards the current cart first.
func (s *Store) AddLine(input AddLineInput) (Line, error) {
	if input.Product == nil {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.marketplace {
		if s.activeTenantID != uuid.Nil && s.activeTenantID != input.Product.TenantID {
			s.lines = nil
			s.coupon = nil
		}
		s.activeTenantID = input.Product.TenantID
	} else if input.Product.TenantID != s.tenantID {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "product belongs to another restaurant")
	}

	if len(input.Addons) == 0 {
		for i := range s.lines {
			if s.lines[i].ProductID == input.Product.ID && len(s.lines[i].Addons) == 0 {
				s.lines[i].Quantity++
				line := s.lines[i]
				s.reclampPointsLocked()
				s.notifyLocked(EventLineAdded)
				return line, nil
			}
		}
	}

	line := Line{
		LineID:          uuid.New(),
		ProductID:       input.Product.ID,
		TenantID:        input.Product.TenantID,
		ProductName:     input.Product.Name,
		UnitPrice:       input.Product.PriceCents,
		Addons:          input.Addons,
		AddonsUnitPrice: input.Addons.UnitPriceSum(),
		Quantity:        1,
	}
	s.lines = append(s.lines, line)
	s.reclampPointsLocked()
	s.notifyLocked(EventLineAdded)
	return line, nil
}

// RemoveLine drops a line. The coupon and points selection survive (the
// bound is re-clamped); the marketplace variant clears the restaurant
// association once the cart is empty.
func (s *Store) RemoveLine(lineID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLineLocked(lineID)
	s.notifyLocked(EventChanged)
}

func (s *Store) removeLineLocked(lineID uuid.UUID) {
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.LineID != lineID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	if s.marketplace && len(s.lines) == 0 {
		s.activeTenantID = uuid.Nil
	}
	s.reclampPointsLocked()
}

// SetQuantity replaces the quantity in place; zero or less removes the line.
// An unknown line with a positive quantity is a not-found rejection.
func (s *Store) SetQuantity(lineID uuid.UUID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if qty <= 0 {
		s.removeLineLocked(lineID)
		s.notifyLocked(EventChanged)
		return nil
	}
	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			s.lines[i].Quantity = qty
			s.reclampPointsLocked()
			s.notifyLocked(EventChanged)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "item não encontrado no carrinho")
}

// SetDeliveryMode switches between delivery and pickup.
func (s *Store) SetDeliveryMode(mode enums.DeliveryMode) error {
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery mode")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveryMode = mode
	s.reclampPointsLocked()
	s.notifyLocked(EventChanged)
	return nil
}

// ApplyCoupon validates the code against the current subtotal. On success
// the coupon replaces any previously applied one; on rejection the cart is
// left untouched and the typed rejection is returned.
func (s *Store) ApplyCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	s.mu.Lock()
	tenantID := s.couponTenantLocked()
	subtotal := pricing.Subtotal(s.pricingLinesLocked())
	s.mu.Unlock()

	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adicione itens antes de aplicar um cupom")
	}

	coupon, err := s.validator.Validate(ctx, tenantID, code, subtotal, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.coupon = coupon
	s.reclampPointsLocked()
	s.notifyLocked(EventChanged)
	s.mu.Unlock()
	return coupon, nil
}

// RemoveCoupon clears the applied coupon; the points bound is recomputed as
// with every other mutation.
func (s *Store) RemoveCoupon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupon = nil
	s.reclampPointsLocked()
	s.notifyLocked(EventChanged)
}

// SetPointsToRedeem stores the clamped redemption request.
func (s *Store) SetPointsToRedeem(points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointsToRedeem = points
	s.reclampPointsLocked()
	s.notifyLocked(EventChanged)
}

// SetBalance refreshes the known points balance (e.g. after a commit) and
// re-clamps the selection against it.
func (s *Store) SetBalance(balance int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if balance < 0 {
		balance = 0
	}
	s.balance = balance
	s.reclampPointsLocked()
	s.notifyLocked(EventChanged)
}

// Clear empties lines, coupon and points selection. Called after a
// successful order commit.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.coupon = nil
	s.pointsToRedeem = 0
	if s.marketplace {
		s.activeTenantID = uuid.Nil
	}
	s.notifyLocked(EventCleared)
}

// Snapshot returns a copy of the full cart state with derived totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Totals recomputes the derived values from the current state.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

// ActiveTenantID reports which restaurant the cart belongs to right now.
func (s *Store) ActiveTenantID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.couponTenantLocked()
}

// restore loads a persisted snapshot back into the store.
func (s *Store) restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]Line(nil), snap.Lines...)
	if snap.DeliveryMode.IsValid() {
		s.deliveryMode = snap.DeliveryMode
	}
	s.coupon = snap.Coupon
	s.pointsToRedeem = snap.PointsToRedeem
	if s.marketplace {
		s.activeTenantID = snap.ActiveTenantID
	}
	s.reclampPointsLocked()
}

func (s *Store) couponTenantLocked() uuid.UUID {
	if s.marketplace {
		return s.activeTenantID
	}
	return s.tenantID
}

func (s *Store) pricingLinesLocked() []pricing.Line {
	out := make([]pricing.Line, len(s.lines))
	for i, line := range s.lines {
		out[i] = pricing.Line{
			UnitPrice:       line.UnitPrice,
			AddonsUnitPrice: line.AddonsUnitPrice,
			Quantity:        line.Quantity,
		}
	}
	return out
}

func (s *Store) totalsLocked() Totals {
	subtotal := pricing.Subtotal(s.pricingLinesLocked())
	fee := pricing.DeliveryFee(subtotal, s.deliveryMode, s.settings)
	couponDiscount := pricing.CouponDiscount(subtotal, s.coupon)
	pointsDiscount := pricing.PointsDiscount(s.pointsToRedeem, s.pointValue)
	return Totals{
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		CouponDiscount: couponDiscount,
		PointsDiscount: pointsDiscount,
		Total:          pricing.Total(subtotal, fee, couponDiscount, pointsDiscount),
		EarnedPoints:   pricing.EarnedPoints(subtotal, couponDiscount),
	}
}

// reclampPointsLocked enforces the redemption bound after every mutation
// that can move the subtotal, fee or coupon discount. An empty cart has no
// redeemable value: points never offset the delivery fee alone.
func (s *Store) reclampPointsLocked() {
	if len(s.lines) == 0 {
		s.pointsToRedeem = 0
		return
	}
	subtotal := pricing.Subtotal(s.pricingLinesLocked())
	fee := pricing.DeliveryFee(subtotal, s.deliveryMode, s.settings)
	couponDiscount := pricing.CouponDiscount(subtotal, s.coupon)
	beforePoints := pricing.Total(subtotal, fee, couponDiscount, 0)
	s.pointsToRedeem = pricing.ClampPointsToRedeem(s.pointsToRedeem, s.balance, beforePoints, s.pointValue)
}

func (s *Store) snapshotLocked() Snapshot {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{
		Lines:          lines,
		DeliveryMode:   s.deliveryMode,
		Coupon:         s.coupon,
		PointsToRedeem: s.pointsToRedeem,
		ActiveTenantID: s.couponTenantLocked(),
		Totals:         s.totalsLocked(),
	}
}

func (s *Store) notifyLocked(kind EventKind) {
	if len(s.subscribers) == 0 {
		return
	}
	event := Event{Kind: kind, Snapshot: s.snapshotLocked()}
	for _, fn := range s.subscribers {
		fn(event)
	}
}
