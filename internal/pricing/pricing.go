// Package pricing holds the pure cart math. Nothing here mutates state or
// performs I/O; callers recompute on every read instead of caching.
package pricing

import (
	"github.com/saborlabs/cardapio-backend/pkg/db/models"
	"github.com/saborlabs/cardapio-backend/pkg/enums"
	"github.com/saborlabs/cardapio-backend/pkg/money"
	"github.com/saborlabs/cardapio-backend/pkg/types"
)

// Line is the minimal view of a cart line the pricing math needs.
type Line struct {
	UnitPrice       money.Cents
	AddonsUnitPrice money.Cents
	Quantity        int
}

// Subtotal is the sum of (unitPrice + addonsUnitPrice) * quantity.
func Subtotal(lines []Line) money.Cents {
	var sum money.Cents
	for _, line := range lines {
		sum += (line.UnitPrice + line.AddonsUnitPrice).Mul(line.Quantity)
	}
	return sum
}

// DeliveryFee is zero for pickup and for subtotals at or above the
// free-delivery threshold; otherwise the tenant's flat fee. A threshold of
// zero means every order qualifies for free delivery.
func DeliveryFee(subtotal money.Cents, mode enums.DeliveryMode, settings types.DeliverySettings) money.Cents {
	if mode == enums.DeliveryModePickup {
		return money.Zero
	}
	if subtotal >= settings.FreeAboveThreshold {
		return money.Zero
	}
	return settings.FlatFee
}

// CouponDiscount evaluates the coupon against the subtotal. The discount is
// clamped so it never exceeds the subtotal on its own.
func CouponDiscount(subtotal money.Cents, coupon *models.Coupon) money.Cents {
	if coupon == nil {
		return money.Zero
	}
	var discount money.Cents
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = subtotal.Percent(coupon.DiscountValue)
	case enums.DiscountTypeFixed:
		discount = money.FromDecimal(coupon.DiscountValue)
	default:
		return money.Zero
	}
	if discount > subtotal {
		return subtotal
	}
	return discount.ClampFloor()
}

// PointsDiscount converts redeemed points into a monetary discount.
func PointsDiscount(pointsToRedeem int, pointValue money.Cents) money.Cents {
	if pointsToRedeem <= 0 || pointValue <= 0 {
		return money.Zero
	}
	return pointValue.Mul(pointsToRedeem)
}

// Total combines the components and floors the result at zero.
func Total(subtotal, deliveryFee, couponDiscount, pointsDiscount money.Cents) money.Cents {
	return (subtotal + deliveryFee - couponDiscount - pointsDiscount).ClampFloor()
}

// EarnedPoints is the floor of the post-coupon subtotal in whole currency
// units, computed before the points discount applies. Never negative.
func EarnedPoints(subtotal, couponDiscount money.Cents) int {
	return int((subtotal - couponDiscount).WholeUnits())
}

// MaxRedeemablePoints bounds pointsToRedeem: the user cannot spend points
// they do not have, nor redeem beyond the order value before the points
// discount.
func MaxRedeemablePoints(balance int, orderValueBeforePoints money.Cents, pointValue money.Cents) int {
	if balance <= 0 || pointValue <= 0 || orderValueBeforePoints <= 0 {
		return 0
	}
	byOrder := int(int64(orderValueBeforePoints) / int64(pointValue))
	if balance < byOrder {
		return balance
	}
	return byOrder
}

// ClampPointsToRedeem forces a requested redemption into the valid range.
func ClampPointsToRedeem(requested, balance int, orderValueBeforePoints, pointValue money.Cents) int {
	if requested <= 0 {
		return 0
	}
	max := MaxRedeemablePoints(balance, orderValueBeforePoints, pointValue)
	if requested > max {
		return max
	}
	return requested
}
