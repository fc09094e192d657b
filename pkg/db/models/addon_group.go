package models

import (
	"time"

	"github.com/google/uuid"
)

// AddonGroup bounds a set of selectable options on a product. A group with
// MaxSelections == 1 behaves as single-choice.
type AddonGroup struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID     uuid.UUID     `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Name          string        `gorm:"column:name;not null" json:"name"`
	MinSelections int           `gorm:"column:min_selections;not null;default:0" json:"min_selections"`
	MaxSelections int           `gorm:"column:max_selections;not null;default:1" json:"max_selections"`
	IsRequired    bool          `gorm:"column:is_required;not null;default:false" json:"is_required"`
	SortOrder     int           `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	Options       []AddonOption `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
