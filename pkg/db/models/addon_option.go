package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/money"
)

// AddonOption is one selectable option inside an add-on group.
type AddonOption struct {
	ID         uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GroupID    uuid.UUID   `gorm:"column:group_id;type:uuid;not null;index" json:"group_id"`
	Name       string      `gorm:"column:name;not null" json:"name"`
	PriceCents money.Cents `gorm:"column:price_cents;not null;default:0" json:"price_cents"`
	IsActive   bool        `gorm:"column:is_active;not null;default:true" json:"is_active"`
	SortOrder  int         `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt  time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
