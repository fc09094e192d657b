package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// Product is a menu item. AddonGroups carries the related add-on rows for
// the included-items/add-ons lookup.
type Product struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    uuid.UUID    `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	CategoryID  *uuid.UUID   `gorm:"column:category_id;type:uuid" json:"category_id,omitempty"`
	Name        string       `gorm:"column:name;not null" json:"name"`
	Description *string      `gorm:"column:description" json:"description,omitempty"`
	PriceCents  money.Cents  `gorm:"column:price_cents;not null" json:"price_cents"`
	ImageURL    *string      `gorm:"column:image_url" json:"image_url,omitempty"`
	IsActive    bool         `gorm:"column:is_active;not null;default:true" json:"is_active"`
	AddonGroups []AddonGroup `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"addon_groups,omitempty"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
