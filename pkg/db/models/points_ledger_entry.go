package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/enums"
)

// PointsLedgerEntry is an append-only loyalty movement. Amount is signed:
// negative for used entries, positive for earned ones.
type PointsLedgerEntry struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	OrderID     *uuid.UUID            `gorm:"column:order_id;type:uuid" json:"order_id,omitempty"`
	Type        enums.PointsEntryType `gorm:"column:type;type:text;not null" json:"type"`
	Amount      int                   `gorm:"column:amount;not null" json:"amount"`
	Description string                `gorm:"column:description;not null" json:"description"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
