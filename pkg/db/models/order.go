package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/enums"
	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// Order is the persisted result of a confirmed checkout. Every pricing field
// is a frozen snapshot; only Status moves after creation.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID            uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Status              enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	DeliveryMode        enums.DeliveryMode  `gorm:"column:delivery_mode;type:text;not null" json:"delivery_mode"`
	AddressText         *string             `gorm:"column:address_text" json:"address_text,omitempty"`
	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;type:text;not null" json:"payment_method"`
	ChangeForCents      *money.Cents        `gorm:"column:change_for_cents" json:"change_for_cents,omitempty"`
	Notes               *string             `gorm:"column:notes" json:"notes,omitempty"`
	SubtotalCents       money.Cents         `gorm:"column:subtotal_cents;not null" json:"subtotal_cents"`
	DeliveryFeeCents    money.Cents         `gorm:"column:delivery_fee_cents;not null;default:0" json:"delivery_fee_cents"`
	CouponCode          *string             `gorm:"column:coupon_code" json:"coupon_code,omitempty"`
	CouponDiscountCents money.Cents         `gorm:"column:coupon_discount_cents;not null;default:0" json:"coupon_discount_cents"`
	PointsUsed          int                 `gorm:"column:points_used;not null;default:0" json:"points_used"`
	PointsDiscountCents money.Cents         `gorm:"column:points_discount_cents;not null;default:0" json:"points_discount_cents"`
	PointsEarned        int                 `gorm:"column:points_earned;not null;default:0" json:"points_earned"`
	TotalCents          money.Cents         `gorm:"column:total_cents;not null" json:"total_cents"`
	Items               []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
