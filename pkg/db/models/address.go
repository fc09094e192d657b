package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is one entry in a user's address book.
type Address struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Label        string    `gorm:"column:label;not null" json:"label"`
	Street       string    `gorm:"column:street;not null" json:"street"`
	Number       string    `gorm:"column:number;not null" json:"number"`
	Complement   *string   `gorm:"column:complement" json:"complement,omitempty"`
	Neighborhood string    `gorm:"column:neighborhood;not null" json:"neighborhood"`
	City         string    `gorm:"column:city;not null" json:"city"`
	State        string    `gorm:"column:state;not null" json:"state"`
	PostalCode   string    `gorm:"column:postal_code;not null" json:"postal_code"`
	IsDefault    bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// DisplayText renders the single-line form frozen onto orders.
func (a Address) DisplayText() string {
	parts := []string{fmt.Sprintf("%s, %s", a.Street, a.Number)}
	if a.Complement != nil && strings.TrimSpace(*a.Complement) != "" {
		parts = append(parts, *a.Complement)
	}
	parts = append(parts, a.Neighborhood, fmt.Sprintf("%s/%s", a.City, a.State), a.PostalCode)
	return strings.Join(parts, " - ")
}
