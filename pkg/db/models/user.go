package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/saborlabs/cardapio-backend/pkg/enums"
)

// User is the canonical identity entity. PointsBalance is the loyalty
// balance mirrored by the points ledger; it never goes negative.
type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email         string         `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash  string         `gorm:"column:password_hash;not null" json:"-"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	Phone         *string        `gorm:"column:phone" json:"phone,omitempty"`
	Role          enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'" json:"role"`
	TenantID      *uuid.UUID     `gorm:"column:tenant_id;type:uuid" json:"tenant_id,omitempty"`
	PointsBalance int            `gorm:"column:points_balance;not null;default:0" json:"points_balance"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	LastLoginAt   *time.Time     `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
