package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saborlabs/cardapio-backend/pkg/enums"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// Coupon is a tenant-scoped discount code. Code is stored in canonical
// uppercase form. CurrentUses is only incremented at order commit, never at
// apply time.
type Coupon struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID           uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_coupons_tenant_code" json:"tenant_id"`
	Code               string             `gorm:"column:code;not null;uniqueIndex:idx_coupons_tenant_code" json:"code"`
	DiscountType       enums.DiscountType `gorm:"column:discount_type;type:text;not null" json:"discount_type"`
	DiscountValue      decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null" json:"discount_value"`
	MinOrderValueCents money.Cents        `gorm:"column:min_order_value_cents;not null;default:0" json:"min_order_value_cents"`
	MaxUses            *int               `gorm:"column:max_uses" json:"max_uses,omitempty"`
	CurrentUses        int                `gorm:"column:current_uses;not null;default:0" json:"current_uses"`
	ExpiresAt          *time.Time         `gorm:"column:expires_at" json:"expires_at,omitempty"`
	IsActive           bool               `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
