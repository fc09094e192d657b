package pricing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	"github.com/saborlabs/cardapio-backend/pkg/money"
	"github.com/saborlabs/cardapio-backend/pkg/types"
)

var testSettings = types.DeliverySettings{
	FlatFee:            1199,
	FreeAboveThreshold: 15000,
}

func percentCoupon(value int64, minOrder money.Cents) *models.Coupon {
	return &models.Coupon{
		DiscountType:       enums.DiscountTypePercentage,
		DiscountValue:      decimal.NewFromInt(value),
		MinOrderValueCents: minOrder,
		IsActive:           true,
	}
}

func TestSubtotalDeliveryScenario(t *testing.T) {
	t.Parallel()

	// One line of 50.00 x2, delivery mode, flat fee 11.99, free above 150.
	lines := []Line{{UnitPrice: 5000, Quantity: 2}}
	subtotal := Subtotal(lines)
	if subtotal != 10000 {
		t.Fatalf("subtotal = %s, want 100.00", subtotal)
	}
	fee := DeliveryFee(subtotal, enums.DeliveryModeDelivery, testSettings)
	if fee != 1199 {
		t.Fatalf("fee = %s, want 11.99", fee)
	}
	if total := Total(subtotal, fee, 0, 0); total != 11199 {
		t.Fatalf("total = %s, want 111.99", total)
	}
}

func TestCouponScenario(t *testing.T) {
	t.Parallel()

	subtotal := money.Cents(10000)
	discount := CouponDiscount(subtotal, percentCoupon(10, 5000))
	if discount != 1000 {
		t.Fatalf("discount = %s, want 10.00", discount)
	}
	fee := DeliveryFee(subtotal, enums.DeliveryModeDelivery, testSettings)
	if total := Total(subtotal, fee, discount, 0); total != 10199 {
		t.Fatalf("total = %s, want 101.99", total)
	}
}

func TestPointsScenario(t *testing.T) {
	t.Parallel()

	// 300 points at 0.10 on a 101.99-after-coupon order.
	subtotal := money.Cents(10000)
	couponDiscount := money.Cents(1000)
	fee := money.Cents(1199)
	pointValue := money.Cents(10)

	orderBeforePoints := Total(subtotal, fee, couponDiscount, 0)
	redeem := ClampPointsToRedeem(300, 500, orderBeforePoints, pointValue)
	if redeem != 300 {
		t.Fatalf("redeem = %d, want 300", redeem)
	}
	pointsDiscount := PointsDiscount(redeem, pointValue)
	if pointsDiscount != 3000 {
		t.Fatalf("points discount = %s, want 30.00", pointsDiscount)
	}
	if total := Total(subtotal, fee, couponDiscount, pointsDiscount); total != 7199 {
		t.Fatalf("total = %s, want 71.99", total)
	}
	if earned := EarnedPoints(subtotal, couponDiscount); earned != 90 {
		t.Fatalf("earned = %d, want 90", earned)
	}
}

func TestPointsClampedByBalance(t *testing.T) {
	t.Parallel()

	// Requested 10000 but balance 500; order bound would be 1019.
	orderBeforePoints := money.Cents(10199)
	if got := ClampPointsToRedeem(10000, 500, orderBeforePoints, 10); got != 500 {
		t.Fatalf("clamped = %d, want 500", got)
	}
	if got := MaxRedeemablePoints(2000, orderBeforePoints, 10); got != 1019 {
		t.Fatalf("order bound = %d, want 1019", got)
	}
	if got := ClampPointsToRedeem(-5, 500, orderBeforePoints, 10); got != 0 {
		t.Fatalf("negative request must clamp to 0, got %d", got)
	}
}

func TestPickupAlwaysFreeDelivery(t *testing.T) {
	t.Parallel()

	for _, subtotal := range []money.Cents{0, 100, 14999, 15000, 99999} {
		if fee := DeliveryFee(subtotal, enums.DeliveryModePickup, testSettings); fee != 0 {
			t.Fatalf("pickup fee for subtotal %s = %s", subtotal, fee)
		}
	}
	if fee := DeliveryFee(15000, enums.DeliveryModeDelivery, testSettings); fee != 0 {
		t.Fatal("subtotal at threshold must be free")
	}
	if fee := DeliveryFee(14999, enums.DeliveryModeDelivery, testSettings); fee != 1199 {
		t.Fatalf("subtotal below threshold must pay flat fee, got %s", fee)
	}
}

func TestZeroThresholdMeansAlwaysFreeDelivery(t *testing.T) {
	t.Parallel()

	settings := types.DeliverySettings{FlatFee: 1199, FreeAboveThreshold: 0}
	for _, subtotal := range []money.Cents{0, 100, 99999} {
		if fee := DeliveryFee(subtotal, enums.DeliveryModeDelivery, settings); fee != 0 {
			t.Fatalf("threshold 0: fee for subtotal %s = %s, want 0", subtotal, fee)
		}
	}
}

func TestTotalNeverNegative(t *testing.T) {
	t.Parallel()

	if total := Total(1000, 0, 5000, 5000); total != 0 {
		t.Fatalf("total floored at zero, got %s", total)
	}
	if earned := EarnedPoints(500, 10000); earned != 0 {
		t.Fatalf("earned points never negative, got %d", earned)
	}
}

func TestFixedCouponClampedToSubtotal(t *testing.T) {
	t.Parallel()

	coupon := &models.Coupon{
		DiscountType:  enums.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(200),
		IsActive:      true,
	}
	if discount := CouponDiscount(10000, coupon); discount != 10000 {
		t.Fatalf("fixed discount must clamp to subtotal, got %s", discount)
	}
	if discount := CouponDiscount(0, coupon); discount != 0 {
		t.Fatalf("empty cart discount must be zero, got %s", discount)
	}
}

func TestSubtotalFormulaProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := rng.Intn(8)
		lines := make([]Line, 0, n)
		var want money.Cents
		for j := 0; j < n; j++ {
			line := Line{
				UnitPrice:       money.Cents(rng.Intn(10000)),
				AddonsUnitPrice: money.Cents(rng.Intn(2000)),
				Quantity:        1 + rng.Intn(9),
			}
			lines = append(lines, line)
			want += (line.UnitPrice + line.AddonsUnitPrice) * money.Cents(line.Quantity)
		}
		if got := Subtotal(lines); got != want {
			t.Fatalf("iteration %d: subtotal = %d, want %d", i, got, want)
		}
	}
}

func TestSubtotalMonotonicity(t *testing.T) {
	t.Parallel()

	lines := []Line{{UnitPrice: 1500, Quantity: 1}}
	before := Subtotal(lines)
	lines = append(lines, Line{UnitPrice: 700, AddonsUnitPrice: 300, Quantity: 2})
	after := Subtotal(lines)
	if after < before {
		t.Fatalf("adding a line decreased subtotal: %d -> %d", before, after)
	}
	if Subtotal(lines[:1]) > after {
		t.Fatal("removing a line increased subtotal")
	}
}
