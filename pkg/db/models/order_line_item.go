package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/money"
	"github.com/saborlabs/cardapio-backend/pkg/types"
)

// OrderLineItem snapshots one cart line at commit time. ProductID is kept
// for reference only, not as a live foreign key, so catalog edits never
// alter historical orders.
type OrderLineItem struct {
	ID                   uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID              uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ProductID            *uuid.UUID            `gorm:"column:product_id;type:uuid" json:"product_id,omitempty"`
	ProductName          string                `gorm:"column:product_name;not null" json:"product_name"`
	UnitPriceCents       money.Cents           `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	AddonsUnitPriceCents money.Cents           `gorm:"column:addons_unit_price_cents;not null;default:0" json:"addons_unit_price_cents"`
	Quantity             int                   `gorm:"column:quantity;not null" json:"quantity"`
	LineTotalCents       money.Cents           `gorm:"column:line_total_cents;not null" json:"line_total_cents"`
	Addons               types.AddonSelections `gorm:"column:addons;type:jsonb;serializer:json" json:"addons,omitempty"`
	CreatedAt            time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
