package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TenantSetting is a tenant-scoped key/value configuration row
// (delivery_settings, store_address).
type TenantSetting struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_tenant_settings_key" json:"tenant_id"`
	Key       string          `gorm:"column:key;not null;uniqueIndex:idx_tenant_settings_key" json:"key"`
	Value     json.RawMessage `gorm:"column:value;type:jsonb;not null" json:"value"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
